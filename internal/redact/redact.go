// Package redact strips sensitive fragments from strings before they
// are logged or persisted onto user-visible task rows. Error messages
// from the database driver or the AI provider can embed connection
// strings, API keys or server file paths; task error detail is returned
// verbatim to polling clients, so it must be scrubbed first.
package redact

import "regexp"

// Redaction placeholders.
const (
	PathPlaceholder       = "[REDACTED_PATH]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
)

var (
	// Database connection strings with embedded credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@[^\s]+`)

	// API keys and tokens following a key-ish label.
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Absolute unix file paths (two or more segments).
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
)

// String returns s with connection strings, credentials and file paths
// replaced by placeholders.
func String(s string) string {
	if s == "" {
		return s
	}

	s = dbConnRegex.ReplaceAllString(s, CredentialPlaceholder)
	s = apiKeyRegex.ReplaceAllString(s, "${1}${2}"+KeyPlaceholder)
	s = unixPathRegex.ReplaceAllString(s, PathPlaceholder)
	return s
}

// Error returns the redacted message of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
