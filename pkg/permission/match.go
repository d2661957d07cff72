package permission

import (
	"regexp"
	"strings"
)

// MatchPattern reports whether a tool name matches a permission pattern.
// Patterns are globs: '*' is the sole wildcard and every other character,
// including regex metacharacters, is literal. Exact equality is a fast path.
func MatchPattern(name, pattern string) bool {
	if pattern == name {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	// A pattern made only of '*' matches anything. Checked directly, not
	// via the regex translation: a regex derived from such a pattern can
	// degenerate into one that matches the empty string.
	if allStars(pattern) {
		return true
	}

	var b strings.Builder
	b.WriteByte('^')
	for i, part := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

// MatchAny reports whether the name matches any of the patterns.
func MatchAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if MatchPattern(name, pattern) {
			return true
		}
	}
	return false
}

func allStars(pattern string) bool {
	if pattern == "" {
		return false
	}
	for _, c := range pattern {
		if c != '*' {
			return false
		}
	}
	return true
}
