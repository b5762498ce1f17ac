// Package dispatchtest runs dispatch groups as Go subtests: one subtest per
// entry plus one completeness subtest per group.
package dispatchtest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fxd/internal/dispatch"
	"fxd/internal/domain"
)

// Run registers the subtests for g and its nested groups on t
func Run(t *testing.T, d *dispatch.Dispatcher, g *dispatch.Group) {
	t.Helper()

	t.Run("TestAllFilesPresentIn"+exported(g.Name), func(t *testing.T) {
		AssertComplete(t, d, g)
	})

	for _, entry := range g.Entries() {
		entry := entry
		t.Run(entry.Name, func(t *testing.T) {
			AssertPass(t, d.RunSingle(context.Background(), g, entry.Path))
		})
	}

	for _, child := range g.Groups() {
		child := child
		t.Run(exported(child.Name), func(t *testing.T) {
			Run(t, d, child)
		})
	}
}

// AssertComplete fails t with every uncovered and stale fixture of g
func AssertComplete(t testing.TB, d *dispatch.Dispatcher, g *dispatch.Group) {
	t.Helper()

	_, err := d.CheckCompleteness(g)
	if err == nil {
		return
	}
	var mde *domain.MissingDispatchEntryError
	if !errors.As(err, &mde) {
		t.Fatalf("enumerate %s: %v", g.Root, err)
	}
	for _, p := range mde.Missing {
		t.Errorf("%s: fixture %s has no dispatch entry", g.Path(), p)
	}
	for _, p := range mde.Stale {
		t.Errorf("%s: entry for %s has no fixture", g.Path(), p)
	}
}

// AssertPass fails t when o is a failure and skips it when o is ignored
func AssertPass(t testing.TB, o domain.Outcome) {
	t.Helper()

	switch o.Status {
	case domain.StatusFail:
		t.Fatalf("%s: %v", o.Entry.Path, o.Err)
	case domain.StatusIgnored:
		t.Skipf("%s: ignored for this backend", o.Entry.Path)
	}
}

func exported(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
