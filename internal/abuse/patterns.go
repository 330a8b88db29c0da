package abuse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// PatternKind names a content heuristic.
type PatternKind string

const (
	PatternSQL          PatternKind = "sql"
	PatternXSS          PatternKind = "xss"
	PatternSpecialChars PatternKind = "special_chars"
	PatternRepeated     PatternKind = "repeated_values"
)

// PatternAction decides what a match on a field does.
type PatternAction int

const (
	// Reject fails the submission.
	Reject PatternAction = iota
	// LogOnly records the match without failing the submission.
	LogOnly
)

// FieldPolicy overrides the action per field and pattern. Anything not
// listed rejects.
type FieldPolicy map[string]map[PatternKind]PatternAction

// DefaultFieldPolicy lets free-text notes mention SQL verbs and use
// punctuation without being rejected. Name-like fields only log the
// special-character ratio, which every non-Latin script trips. Matches are
// still logged.
func DefaultFieldPolicy() FieldPolicy {
	logSpecialChars := map[PatternKind]PatternAction{PatternSpecialChars: LogOnly}
	return FieldPolicy{
		"notes": {
			PatternSQL:          LogOnly,
			PatternSpecialChars: LogOnly,
		},
		"firstName": logSpecialChars,
		"lastName":  logSpecialChars,
		"org":       logSpecialChars,
		"title":     logSpecialChars,
		"country":   logSpecialChars,
	}
}

func (p FieldPolicy) action(field string, kind PatternKind) PatternAction {
	if byKind, ok := p[field]; ok {
		if a, ok := byKind[kind]; ok {
			return a
		}
	}
	return Reject
}

var (
	sqlPattern = regexp.MustCompile(`(?i)\b(UNION|SELECT|DROP|INSERT|UPDATE|DELETE)\b`)
	xssPattern = regexp.MustCompile(`(?i)<script|javascript:|onerror=|onclick=`)
)

// specialCharThreshold is the share of characters outside the plain set
// above which a value counts as suspicious.
const specialCharThreshold = 0.3

// Finding is a single content heuristic match.
type Finding struct {
	Kind   PatternKind
	Field  string
	Reason string
	Action PatternAction
}

// DetectSuspicious runs the content heuristics over fields. Findings are
// ordered by field name so results are deterministic.
func DetectSuspicious(fields map[string]any, policy FieldPolicy) []Finding {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var findings []Finding
	add := func(kind PatternKind, field, reason string) {
		findings = append(findings, Finding{
			Kind:   kind,
			Field:  field,
			Reason: reason,
			Action: policy.action(field, kind),
		})
	}

	for _, k := range keys {
		s, ok := fields[k].(string)
		if !ok {
			continue
		}
		if sqlPattern.MatchString(s) {
			add(PatternSQL, k, fmt.Sprintf("SQL injection attempt detected in %s", k))
		}
		if xssPattern.MatchString(s) {
			add(PatternXSS, k, fmt.Sprintf("XSS attempt detected in %s", k))
		}
		if excessiveSpecialChars(s) {
			add(PatternSpecialChars, k, fmt.Sprintf("Excessive special characters in %s", k))
		}
	}

	if repeatedValues(fields) {
		findings = append(findings, Finding{
			Kind:   PatternRepeated,
			Reason: "Suspicious repeated values",
			Action: Reject,
		})
	}

	return findings
}

func isPlainChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
		return true
	}
	return strings.ContainsRune(".,!?@-", r)
}

func excessiveSpecialChars(s string) bool {
	total := utf8.RuneCountInString(s)
	if total == 0 {
		return false
	}
	special := 0
	for _, r := range s {
		if !isPlainChar(r) {
			special++
		}
	}
	return float64(special) > float64(total)*specialCharThreshold
}

// repeatedValues flags a submission with more than three supplied fields
// whose non-trivial string values are all the same.
func repeatedValues(fields map[string]any) bool {
	supplied := 0
	unique := make(map[string]struct{})
	for _, v := range fields {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
			supplied++
			if utf8.RuneCountInString(val) > 2 {
				unique[val] = struct{}{}
			}
		default:
			supplied++
		}
	}
	return supplied > 3 && len(unique) == 1
}
