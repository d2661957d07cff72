package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		pattern string
		want    bool
	}{
		{"exact match", "mcp__files__read", "mcp__files__read", true},
		{"exact mismatch", "mcp__files__read", "mcp__files__write", false},
		{"trailing wildcard", "mcp__files__read", "mcp__files__*", true},
		{"leading wildcard", "mcp__files__read", "*__read", true},
		{"middle wildcard", "mcp__files__read", "mcp__*__read", true},
		{"multiple wildcards", "mcp__files__read_file", "mcp__*__read_*", true},
		{"wildcard matches empty", "mcp__files__read", "mcp__files__read*", true},
		{"no wildcard no match", "mcp__files__read", "mcp__files", false},
		{"prefix without wildcard", "mcp__files__read", "mcp__", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPattern(tt.tool, tt.pattern))
		})
	}
}

func TestMatchPattern_AllStars(t *testing.T) {
	assert.True(t, MatchPattern("anything", "*"))
	assert.True(t, MatchPattern("anything", "***"))
	assert.True(t, MatchPattern("", "*"))
	assert.False(t, MatchPattern("anything", ""))
}

func TestMatchPattern_MetacharactersAreLiteral(t *testing.T) {
	// A '.' in the pattern is a literal dot, never a regex any-char.
	assert.True(t, MatchPattern("foo.bar", "foo.*"))
	assert.False(t, MatchPattern("fooXbar", "foo.*"))

	assert.True(t, MatchPattern("a[b]c", "a[b]c"))
	assert.True(t, MatchPattern("a[b]c", "a[*]c"))
	assert.False(t, MatchPattern("abc", "a[b]c"))

	assert.True(t, MatchPattern("a+b", "a+*"))
	assert.False(t, MatchPattern("aab", "a+*"))
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"mcp__files__*", "shell_exec"}

	assert.True(t, MatchAny("mcp__files__read", patterns))
	assert.True(t, MatchAny("shell_exec", patterns))
	assert.False(t, MatchAny("mcp__web__fetch", patterns))
	assert.False(t, MatchAny("anything", nil))
}
