package domain

import (
	"fmt"
	"strings"
)

// NotFoundError reports a fixture root or fixture file that does not exist
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// AccessError reports a directory that could not be read during enumeration
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// MissingDispatchEntryError lists every fixture on disk that has no dispatch
// entry, and every declared entry whose fixture is gone.
type MissingDispatchEntryError struct {
	Group   string
	Missing []string
	Stale   []string
}

func (e *MissingDispatchEntryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "group %q is incomplete", e.Group)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; fixtures without dispatch entry: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Stale) > 0 {
		fmt.Fprintf(&b, "; entries without fixture: %s", strings.Join(e.Stale, ", "))
	}
	return b.String()
}

// MismatchError is a decompiler output that differs from the expected output
type MismatchError struct {
	Path     string
	Expected string
	Actual   string
	Diff     string
}

func (e *MismatchError) Error() string {
	if e.Diff != "" {
		return fmt.Sprintf("output mismatch for %s:\n%s", e.Path, e.Diff)
	}
	return fmt.Sprintf("output mismatch for %s: expected %q, got %q", e.Path, e.Expected, e.Actual)
}
