package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRule_Match(t *testing.T) {
	glob, err := GlobRule("sub/**/*.kt")
	require.NoError(t, err)
	excluding, err := SuffixRule(".kt").WithExclude(`\.decompiled\.kt$`)
	require.NoError(t, err)

	tests := []struct {
		name     string
		rule     MatchRule
		path     string
		expected bool
	}{
		{"regex matches name", MustRegexRule(`^(.+)\.kt$`), "sub/c.kt", true},
		{"regex rejects other suffix", MustRegexRule(`^(.+)\.kt$`), "c.kts", false},
		{"suffix matches", SuffixRule(".kt"), "a.kt", true},
		{"suffix rejects", SuffixRule(".kt"), "a.java", false},
		{"glob matches nested", glob, "sub/x/y/c.kt", true},
		{"glob rejects outside", glob, "c.kt", false},
		{"exclude wins", excluding, "a.decompiled.kt", false},
		{"exclude keeps others", excluding, "a.kt", true},
		{"zero rule matches all", MatchRule{}, "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.Match(tt.path))
		})
	}
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule(`^(.+)\.kt$`)
	require.NoError(t, err)
	assert.Equal(t, `regex ^(.+)\.kt$`, r.String())

	r, err = ParseRule("**/*.kt")
	require.NoError(t, err)
	assert.Equal(t, "glob **/*.kt", r.String())

	r, err = ParseRule(".kt")
	require.NoError(t, err)
	assert.Equal(t, "suffix .kt", r.String())

	_, err = ParseRule(`^(unclosed$`)
	assert.Error(t, err)

	_, err = GlobRule("[")
	assert.Error(t, err)
}
