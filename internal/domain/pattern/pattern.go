// Package pattern evaluates stored account-matching rules against
// transaction names.
//
// A rule has one of three kinds:
//   - substring: case-insensitive containment, wildcard markers stripped
//   - exact: case-insensitive equality
//   - regex: case-insensitive regular expression test
package pattern

import (
	"regexp"
	"strings"
)

// Kind is the closed set of pattern kinds.
type Kind string

const (
	KindSubstring Kind = "substring"
	KindExact     Kind = "exact"
	KindRegex     Kind = "regex"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSubstring, KindExact, KindRegex:
		return true
	}
	return false
}

// Kinds returns all valid kinds, for validation messages.
func Kinds() []Kind {
	return []Kind{KindSubstring, KindExact, KindRegex}
}

// StripWildcards removes SQL-style and glob-style wildcard markers so that
// rules like "%COFFEE%" or "*coffee*" test plain containment.
func StripWildcards(text string) string {
	return strings.Trim(text, "%*")
}

// Matches tests transactionName against a rule of the given kind.
// All kinds are case-insensitive. An invalid regex never matches.
func Matches(kind Kind, text, transactionName string) bool {
	switch kind {
	case KindSubstring:
		needle := strings.ToLower(StripWildcards(text))
		return needle != "" && strings.Contains(strings.ToLower(transactionName), needle)
	case KindExact:
		return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(transactionName))
	case KindRegex:
		re, err := regexp.Compile("(?i)" + text)
		if err != nil {
			return false
		}
		return re.MatchString(transactionName)
	}
	return false
}
