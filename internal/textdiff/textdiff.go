// Package textdiff renders line diffs between expected and actual outputs
// in unified format.
package textdiff

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// DefaultContext is the number of unchanged lines shown around a change
const DefaultContext = 3

// Unified returns a unified diff turning expected into actual, or "" when
// they are equal line by line.
func Unified(expectedName, actualName, expected, actual string) string {
	a := splitLines(expected)
	b := splitLines(actual)

	groups := difflib.NewMatcher(a, b).GetGroupedOpCodes(DefaultContext)
	if len(groups) == 0 {
		return ""
	}

	hunks := make([]*diff.Hunk, 0, len(groups))
	for _, group := range groups {
		hunks = append(hunks, hunk(group, a, b))
	}

	fd := &diff.FileDiff{
		OrigName: expectedName,
		NewName:  actualName,
		Hunks:    hunks,
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return ""
	}
	return string(out)
}

// hunk turns one group of opcodes into a hunk with 1-based line ranges;
// an empty range starts at the line before it, as in diff -u.
func hunk(group []difflib.OpCode, a, b []string) *diff.Hunk {
	first, last := group[0], group[len(group)-1]

	var body bytes.Buffer
	write := func(prefix byte, lines []string) {
		for _, l := range lines {
			body.WriteByte(prefix)
			body.WriteString(l)
			body.WriteByte('\n')
		}
	}
	for _, c := range group {
		switch c.Tag {
		case 'e':
			write(' ', a[c.I1:c.I2])
		case 'd':
			write('-', a[c.I1:c.I2])
		case 'i':
			write('+', b[c.J1:c.J2])
		case 'r':
			write('-', a[c.I1:c.I2])
			write('+', b[c.J1:c.J2])
		}
	}

	origLines := int32(last.I2 - first.I1)
	newLines := int32(last.J2 - first.J1)
	origStart := int32(first.I1) + 1
	newStart := int32(first.J1) + 1
	if origLines == 0 {
		origStart--
	}
	if newLines == 0 {
		newStart--
	}

	return &diff.Hunk{
		OrigStartLine: origStart,
		OrigLines:     origLines,
		NewStartLine:  newStart,
		NewLines:      newLines,
		Body:          body.Bytes(),
	}
}

// Normalize unifies line endings and drops trailing whitespace on every
// line and trailing blank lines, so outputs differing only there compare equal.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
