package sanitization

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxFieldLength is the hard ceiling applied to every string field,
	// independent of the per-field limits enforced by validation.
	MaxFieldLength = 5000

	// MaxUserAgentLength bounds the stored user agent.
	MaxUserAgentLength = 500
)

var markupStripper = strings.NewReplacer("<", "", ">", "")

// SanitizeString trims the input, strips '<' and '>' and truncates it to
// MaxFieldLength characters. The result is a fixed point:
// SanitizeString(SanitizeString(s)) == SanitizeString(s).
func SanitizeString(input string) string {
	safe := strings.TrimSpace(input)
	safe = markupStripper.Replace(safe)
	// Stripping can expose whitespace that sat next to a bracket
	safe = strings.TrimSpace(safe)
	safe = truncate(safe, MaxFieldLength)
	return strings.TrimRightFunc(safe, unicode.IsSpace)
}

// Sanitize applies SanitizeString to every string value. Other values pass
// through unchanged. The input map is not modified.
func Sanitize(raw map[string]any) map[string]any {
	sanitized := make(map[string]any, len(raw))
	for key, value := range raw {
		if s, ok := value.(string); ok {
			sanitized[key] = SanitizeString(s)
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

// SanitizeUserAgent bounds and strips a user agent for storage.
func SanitizeUserAgent(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "unknown"
	}
	return markupStripper.Replace(truncate(ua, MaxUserAgentLength))
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
