// Package store defines the persistence interfaces for the application's
// entities along with shared database abstractions (DBTX, transactions)
// and sentinel errors. Concrete implementations live under
// internal/platform/postgres.
package store
