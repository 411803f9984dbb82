// Package postgres provides PostgreSQL implementations of the store
// interfaces, along with the embedded schema migrations and helpers for
// translating database errors into domain errors.
package postgres
