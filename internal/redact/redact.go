// Package redact keeps submitter contact details out of logs.
package redact

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// A phone must stand alone: not preceded by a letter or digit, and ending on
	// a word boundary, so order numbers and timestamps are left intact.
	phoneRe = regexp.MustCompile(`(^|[^0-9A-Za-z])\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
)

// Fingerprint returns a short stable hash of a contact value so log lines for
// the same submitter can be correlated. Case and surrounding space are ignored.
func Fingerprint(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	h := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%x", h[:6])
}

// Text replaces emails with [EMAIL] and phone numbers with [PHONE].
func Text(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = phoneRe.ReplaceAllString(text, "${1}[PHONE]")
	return text
}

// Preview strips markup from an HTML body, redacts it, and cuts it to max runes.
func Preview(html string, max int) string {
	text := tagRe.ReplaceAllString(html, " ")
	text = strings.Join(strings.Fields(text), " ")
	text = Text(text)
	if max > 0 {
		if r := []rune(text); len(r) > max {
			return string(r[:max]) + "..."
		}
	}
	return text
}
