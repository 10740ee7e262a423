// Package security holds the input sanitization and injection heuristics
// shared by every write path. The server-side copy is authoritative: all
// untrusted text passes through here before it is persisted or echoed back.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	jsURIRe        = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=`)

	sqlKeywordRe = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|UNION|EXEC|ALTER|CREATE|TRUNCATE)\b`)
	sqlSpecialRe = regexp.MustCompile(`(?i)('|"|;|--|/\*|\*/|@@|@|char|nchar|varchar|nvarchar)`)

	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	lowerRe  = regexp.MustCompile(`[a-z]`)
	upperRe  = regexp.MustCompile(`[A-Z]`)
	digitRe  = regexp.MustCompile(`\d`)
	symbolRe = regexp.MustCompile(`[@$!%*?&]`)
)

// htmlEscaper rewrites the five HTML metacharacters to entities. The
// ampersand is deliberately left alone, so Sanitize must be applied at
// most once per raw value.
var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// StripDangerous removes script-tag blocks, javascript: URI prefixes and
// inline event-handler attribute patterns.
func StripDangerous(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = jsURIRe.ReplaceAllString(s, "")
	s = eventHandlerRe.ReplaceAllString(s, "")
	return s
}

// EscapeHTML escapes < > " ' / to their entity forms.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Sanitize neutralizes untrusted text: strips dangerous patterns, escapes
// HTML metacharacters and trims surrounding whitespace.
func Sanitize(s string) string {
	return strings.TrimSpace(EscapeHTML(StripDangerous(s)))
}

// HasSQLInjection reports whether s matches a SQL keyword or
// special-character pattern. It is a heuristic defense-in-depth check, not
// a parser; false positives on legitimate text are expected. Callers must
// reject with a generic message rather than reveal the rule.
func HasSQLInjection(s string) bool {
	return sqlKeywordRe.MatchString(s) || sqlSpecialRe.MatchString(s)
}

// IsValidEmail performs a light syntactic email check.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// NormalizeEmail lowercases and trims an address for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsStrongPassword requires at least 8 characters with one lowercase, one
// uppercase, one digit and one symbol from @$!%*?&.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		digitRe.MatchString(password) &&
		symbolRe.MatchString(password)
}

// GenerateSecureToken returns length random bytes hex-encoded.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
