// Package postgres contains the PostgreSQL implementations of the store
// interfaces, built on database/sql with the pgx stdlib driver. Queue,
// log and credential list columns are stored as jsonb.
package postgres
