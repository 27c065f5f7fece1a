// Package api contains the HTTP handlers for the admin surface: operator
// login, per-kind job supervision, glossary management, pipeline settings
// and novel listings. Handlers translate between HTTP and the service
// layer; they hold no business logic of their own.
package api
