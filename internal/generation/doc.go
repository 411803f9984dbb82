// Package generation provides the interface for interacting with external
// AI/LLM services for content generation. It abstracts the details of LLM API
// integration (Gemini), allowing the application to generate learning content
// for topics without coupling to specific external services.
package generation
