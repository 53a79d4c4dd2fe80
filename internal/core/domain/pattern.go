package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// KeyMatcher matches fast-tier keys against a key or a glob pattern.
// '*' matches any run of characters including ':' and '/', '?' matches one character.
type KeyMatcher struct {
	raw    string
	prefix string
	re     *regexp.Regexp
}

// NewKeyMatcher compiles keyOrPattern.
func NewKeyMatcher(keyOrPattern string) (*KeyMatcher, error) {
	m := &KeyMatcher{raw: keyOrPattern}
	if !IsPattern(keyOrPattern) {
		return m, nil
	}

	m.prefix = keyOrPattern[:strings.IndexAny(keyOrPattern, "*?")]

	var b strings.Builder
	b.WriteString("^")
	for _, r := range keyOrPattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrInvalidPattern.Error()), "pattern", keyOrPattern)
	}
	m.re = re
	return m, nil
}

// Exact reports whether the matcher is a plain key.
func (m *KeyMatcher) Exact() bool {
	return m.re == nil
}

// Prefix returns the literal part before the first metacharacter.
// For an exact key it returns the key.
func (m *KeyMatcher) Prefix() string {
	if m.re == nil {
		return m.raw
	}
	return m.prefix
}

// Match reports whether key matches.
func (m *KeyMatcher) Match(key string) bool {
	if m.re == nil {
		return key == m.raw
	}
	return strings.HasPrefix(key, m.prefix) && m.re.MatchString(key)
}
