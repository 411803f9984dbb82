// Package domain contains the core business entities of the learning
// reminder service: customers, topics, topic histories, and the TaskProcess
// work item that drives background content generation and delivery.
package domain
