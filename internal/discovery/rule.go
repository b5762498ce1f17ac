package discovery

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchRule decides which files under a fixture root are fixtures.
// Suffix and regex rules look at the file name, glob rules at the path
// relative to the root. The zero value matches every file.
type MatchRule struct {
	suffix  string
	re      *regexp.Regexp
	glob    string
	exclude *regexp.Regexp
}

// SuffixRule matches file names ending in suffix
func SuffixRule(suffix string) MatchRule {
	return MatchRule{suffix: suffix}
}

// RegexRule matches file names against expr, e.g. `^(.+)\.kt$`
func RegexRule(expr string) (MatchRule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return MatchRule{}, fmt.Errorf("invalid fixture pattern %q: %w", expr, err)
	}
	return MatchRule{re: re}, nil
}

// MustRegexRule is like RegexRule but panics on an invalid expression
func MustRegexRule(expr string) MatchRule {
	r, err := RegexRule(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// GlobRule matches relative paths against a doublestar pattern, e.g. "**/*.kt"
func GlobRule(pattern string) (MatchRule, error) {
	if !doublestar.ValidatePattern(pattern) {
		return MatchRule{}, fmt.Errorf("invalid fixture glob %q", pattern)
	}
	return MatchRule{glob: pattern}, nil
}

// ParseRule builds a rule from a manifest or flag value. Values starting
// with '^' or ending with '$' are regular expressions, values containing
// '*' or '?' are globs and anything else is a suffix.
func ParseRule(value string) (MatchRule, error) {
	switch {
	case value == "":
		return MatchRule{}, nil
	case strings.HasPrefix(value, "^") || strings.HasSuffix(value, "$"):
		return RegexRule(value)
	case strings.ContainsAny(value, "*?"):
		return GlobRule(value)
	default:
		return SuffixRule(value), nil
	}
}

// WithExclude returns a copy of the rule that rejects file names matching expr
func (r MatchRule) WithExclude(expr string) (MatchRule, error) {
	if expr == "" {
		r.exclude = nil
		return r, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return r, fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
	}
	r.exclude = re
	return r, nil
}

// Match reports whether the file at relPath (slash separated) is a fixture
func (r MatchRule) Match(relPath string) bool {
	name := path.Base(relPath)
	if r.exclude != nil && r.exclude.MatchString(name) {
		return false
	}
	switch {
	case r.re != nil:
		return r.re.MatchString(name)
	case r.glob != "":
		ok, err := doublestar.Match(r.glob, relPath)
		return err == nil && ok
	case r.suffix != "":
		return strings.HasSuffix(name, r.suffix)
	}
	return true
}

// Source returns the rule in the syntax accepted by ParseRule
func (r MatchRule) Source() string {
	switch {
	case r.re != nil:
		expr := r.re.String()
		if !strings.HasPrefix(expr, "^") && !strings.HasSuffix(expr, "$") {
			return "^.*(?:" + expr + ")"
		}
		return expr
	case r.glob != "":
		return r.glob
	}
	return r.suffix
}

// ExcludeSource returns the exclusion expression, empty when there is none
func (r MatchRule) ExcludeSource() string {
	if r.exclude == nil {
		return ""
	}
	return r.exclude.String()
}

func (r MatchRule) String() string {
	var s string
	switch {
	case r.re != nil:
		s = "regex " + r.re.String()
	case r.glob != "":
		s = "glob " + r.glob
	case r.suffix != "":
		s = "suffix " + r.suffix
	default:
		s = "any file"
	}
	if r.exclude != nil {
		s += " excluding " + r.exclude.String()
	}
	return s
}
