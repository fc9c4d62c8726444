// Package redact scrubs secrets from text before it is logged or returned in
// an error response: ciphertext envelopes, encryption keys, connection string
// credentials, passwords, bearer tokens, file paths and SQL fragments.
package redact

import (
	"regexp"
	"strings"

	"github.com/phrazzld/paramstore/internal/envelope"
)

// Placeholders written in place of redacted content.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedCiphertextPlaceholder = "[REDACTED_CIPHERTEXT]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// encodedKeyLength is the length of a key in its exchange encoding.
const encodedKeyLength = 43

var (
	ciphertextRegex = regexp.MustCompile(regexp.QuoteMeta(envelope.Prefix) + `[A-Za-z0-9_-]+`)
	jwtTokenRegex   = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
	dbConnRegex     = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`)
	passwordRegex   = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	secretKVRegex   = regexp.MustCompile(
		`(?i)[\w-]*(key|token|secret|auth)\s*[:=]\s*['"]?[A-Za-z0-9_\-.~+/=]{8,}['"]?`,
	)
	stackTraceRegex = regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`)
	unixPathRegex   = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex    = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)
	sqlRegex        = regexp.MustCompile(
		`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b[\s\w,*()]+\b(FROM|INTO|SET|TABLE)\b(?:[\s\w,*()='"$]+)?`,
	)

	// candidateKeyRegex finds runs that may be a bare encoded key; looksLikeKey
	// decides.
	candidateKeyRegex = regexp.MustCompile(`[A-Za-z0-9_-]{43,}`)

	rules = []rule{
		{ciphertextRegex, RedactedCiphertextPlaceholder},
		{jwtTokenRegex, RedactedJWTPlaceholder},
		{dbConnRegex, RedactedCredentialPlaceholder},
		{passwordRegex, RedactedCredentialPlaceholder},
		{secretKVRegex, RedactedKeyPlaceholder},
		{stackTraceRegex, RedactedStackPlaceholder},
		{unixPathRegex, RedactedPathPlaceholder},
		{winPathRegex, RedactedPathPlaceholder},
		{sqlRegex, RedactedSQLPlaceholder},
	}
)

// String redacts sensitive information from input.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return candidateKeyRegex.ReplaceAllStringFunc(result, func(s string) string {
		if looksLikeKey(s) {
			return RedactedKeyPlaceholder
		}
		return s
	})
}

// Error redacts sensitive information from err's message.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// looksLikeKey reports whether s has the shape of an encoded key. Slugs are
// upper case, so a run without lower case letters is left alone.
func looksLikeKey(s string) bool {
	return len(s) == encodedKeyLength && strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz")
}
