// Package normalize holds the small canonicalization helpers used by the
// stores so that lookups and uniqueness checks behave predictably.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are the correlation
// key with the identity provider, so every read and write goes through this.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name collapses surrounding whitespace on a display name.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role value for comparison.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
