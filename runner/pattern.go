package runner

import "strings"

// Pattern is either a literal word or a `%` wildcard pattern. The first
// `%` splits the word into a prefix and a suffix; the stem is whatever a
// candidate word carries between the two.
type Pattern struct {
	prefix, suffix string
	hasWildcard    bool
}

func NewPattern(s string) Pattern {
	if i := strings.IndexByte(s, '%'); i >= 0 {
		return Pattern{prefix: s[:i], suffix: s[i+1:], hasWildcard: true}
	}
	return Pattern{prefix: s}
}

func (p Pattern) IsPattern() bool {
	return p.hasWildcard
}

// MatchAny reports whether the pattern is a bare `%`.
func (p Pattern) MatchAny() bool {
	return p.hasWildcard && p.prefix == "" && p.suffix == ""
}

// Target returns the literal word of a non-pattern.
func (p Pattern) Target() string {
	return p.prefix
}

// Match extracts the stem of word against the pattern. A non-pattern
// matches only its own literal word, with the whole word as stem.
func (p Pattern) Match(word string) (string, bool) {
	if !p.hasWildcard {
		if word == p.prefix {
			return word, true
		}
		return "", false
	}

	if len(word) < len(p.prefix)+len(p.suffix) {
		return "", false
	}
	if !strings.HasPrefix(word, p.prefix) || !strings.HasSuffix(word, p.suffix) {
		return "", false
	}

	return word[len(p.prefix) : len(word)-len(p.suffix)], true
}

// Subst instantiates the pattern template with a stem.
func (p Pattern) Subst(stem string) string {
	if !p.hasWildcard {
		return p.prefix
	}
	return p.prefix + stem + p.suffix
}

func (p Pattern) String() string {
	if p.hasWildcard {
		return p.prefix + "%" + p.suffix
	}
	return p.prefix
}
