// Package redact provides utilities for redacting sensitive information from
// strings before they are logged or returned in error responses. It helps
// prevent the accidental leakage of credentials, connection strings and API
// keys that might be embedded in error messages from lower layers.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
)

// Precompiled regex patterns
var (
	// Database connection strings
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|mysql|mongodb|db|database|connection)://[^@\s]+@`)

	// Credentials and tokens
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	apiKeyRegex   = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// JWT token pattern - matches the standard three-part base64url format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Gemini-style API keys
	googleKeyRegex = regexp.MustCompile(`AIza[A-Za-z0-9_-]{30,}`)
)

// String redacts sensitive patterns from the given string.
func String(s string) string {
	if s == "" {
		return s
	}

	s = dbConnRegex.ReplaceAllString(s, "$1://"+RedactedCredentialPlaceholder+"@")
	s = passwordRegex.ReplaceAllString(s, "$1$2"+RedactedCredentialPlaceholder)
	s = apiKeyRegex.ReplaceAllString(s, "$1$2"+RedactedCredentialPlaceholder)
	s = jwtTokenRegex.ReplaceAllString(s, RedactionPlaceholder)
	s = googleKeyRegex.ReplaceAllString(s, RedactedCredentialPlaceholder)

	return s
}

// Error redacts sensitive patterns from an error's message.
// Returns an empty string for nil errors.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
