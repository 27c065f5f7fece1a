// Package config defines the application configuration structure and
// loading logic. Configuration is sourced from environment variables
// (RIWAYA_ prefix) and an optional config.yaml, then validated before use.
package config
