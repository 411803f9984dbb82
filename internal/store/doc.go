// Package store defines the persistence ports consumed by the task engine.
// Implementations live under internal/platform.
package store
