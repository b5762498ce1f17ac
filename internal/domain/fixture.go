package domain

import (
	"strings"
	"unicode"
)

// Fixture represents one discovered fixture file
type Fixture struct {
	Path    string // Path relative to the fixture root, slash separated
	AbsPath string // Full path on disk
	Name    string // Just the filename
}

// DispatchEntry is a named test case statically bound to one fixture path
type DispatchEntry struct {
	Name string // Test name, e.g. TestSimpleWhen
	Path string // Fixture path relative to the owning group root
}

// Mode selects how a fixture's decompiled output is judged
type Mode string

const (
	// ModeText compares the output with a stored expected-output file
	ModeText Mode = "text"
	// ModeBox expects the output to be exactly "OK"
	ModeBox Mode = "box"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeText || m == ModeBox
}

// TestName derives the test name for a fixture path: "simpleWhen.kt"
// becomes "TestSimpleWhen", "a.b.kt" becomes "TestA_b" and "sub/c.kt"
// becomes "TestSub_C". Only the final extension is dropped; characters that
// cannot appear in an identifier are replaced with '_'.
func TestName(fixturePath string) string {
	segments := strings.Split(strings.Trim(fixturePath, "/"), "/")
	last := segments[len(segments)-1]
	if i := strings.LastIndexByte(last, '.'); i > 0 {
		segments[len(segments)-1] = last[:i]
	}

	var b strings.Builder
	b.WriteString("Test")
	for n, seg := range segments {
		if n > 0 {
			b.WriteByte('_')
		}
		for i, r := range seg {
			switch {
			case i == 0 && unicode.IsLetter(r):
				b.WriteRune(unicode.ToUpper(r))
			case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
				b.WriteRune(r)
			default:
				b.WriteRune('_')
			}
		}
	}
	return b.String()
}

// NewEntry declares a dispatch entry for a fixture path with a derived name
func NewEntry(fixturePath string) DispatchEntry {
	return DispatchEntry{Name: TestName(fixturePath), Path: fixturePath}
}
