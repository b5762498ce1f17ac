// Package dispatch binds fixture files to named test cases and verifies
// that every fixture on disk is bound to one.
package dispatch

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"fxd/internal/discovery"
	"fxd/internal/domain"
)

// DefaultExpectedSuffix names the expected-output file of a text fixture:
// "a.kt" is compared against "a.decompiled.kt".
const DefaultExpectedSuffix = ".decompiled.kt"

// Group is a set of dispatch entries rooted at one fixture directory.
// Nested groups own a subdirectory of their parent's root and check their
// own completeness; the parent never counts their fixtures.
type Group struct {
	Name           string
	Root           string
	Dir            string // relative to the parent root, empty for a suite
	Rule           discovery.MatchRule
	Mode           domain.Mode
	Target         string
	ExpectedSuffix string

	parent  *Group
	entries []domain.DispatchEntry
	byName  map[string]int
	byPath  map[string]int
	groups  []*Group
}

// Option configures a Group
type Option func(*Group)

// WithMode sets how outputs are judged
func WithMode(mode domain.Mode) Option {
	return func(g *Group) { g.Mode = mode }
}

// WithTarget sets the backend matched against IGNORE_BACKEND directives
func WithTarget(target string) Option {
	return func(g *Group) { g.Target = target }
}

// WithExpectedSuffix sets the suffix of expected-output files
func WithExpectedSuffix(suffix string) Option {
	return func(g *Group) { g.ExpectedSuffix = suffix }
}

// NewGroup creates a top-level group (a suite)
func NewGroup(name, root string, rule discovery.MatchRule, opts ...Option) *Group {
	g := &Group{
		Name:           name,
		Root:           filepath.Clean(root),
		Rule:           rule,
		Mode:           domain.ModeText,
		Target:         discovery.BackendAny,
		ExpectedSuffix: DefaultExpectedSuffix,
		byName:         make(map[string]int),
		byPath:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Nest adds a child group owning dir (relative to g.Root). The child
// inherits the rule, mode, target and expected suffix.
func (g *Group) Nest(name, dir string, paths ...string) (*Group, error) {
	dir = strings.Trim(path.Clean(filepath.ToSlash(dir)), "/")
	if dir == "" || dir == "." || escapesRoot(dir) {
		return nil, fmt.Errorf("group %q: invalid nested directory %q", g.Path(), dir)
	}
	for _, child := range g.groups {
		if child.Name == name {
			return nil, fmt.Errorf("group %q: duplicate nested group %q", g.Path(), name)
		}
		if overlaps(child.Dir, dir) {
			return nil, fmt.Errorf("group %q: nested directory %q overlaps %q", g.Path(), dir, child.Dir)
		}
	}

	child := NewGroup(name, filepath.Join(g.Root, filepath.FromSlash(dir)), g.Rule,
		WithMode(g.Mode), WithTarget(g.Target), WithExpectedSuffix(g.ExpectedSuffix))
	child.Dir = dir
	child.parent = g
	if err := child.Declare(paths...); err != nil {
		return nil, err
	}
	g.groups = append(g.groups, child)
	return child, nil
}

func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

// Declare adds one entry per fixture path, naming each after its file
func (g *Group) Declare(paths ...string) error {
	for _, p := range paths {
		if err := g.DeclareEntry(domain.DispatchEntry{Path: p}); err != nil {
			return err
		}
	}
	return nil
}

// DeclareEntry adds an entry; names and paths must be unique in the group
func (g *Group) DeclareEntry(entry domain.DispatchEntry) error {
	entry.Path = cleanRel(entry.Path)
	if entry.Path == "" {
		return fmt.Errorf("group %q: entry %q has no fixture path", g.Path(), entry.Name)
	}
	if escapesRoot(entry.Path) {
		return fmt.Errorf("group %q: fixture %s is outside the group root", g.Path(), entry.Path)
	}
	if entry.Name == "" {
		entry.Name = domain.TestName(entry.Path)
	}
	if _, ok := g.byName[entry.Name]; ok {
		return fmt.Errorf("group %q: duplicate test name %s", g.Path(), entry.Name)
	}
	if _, ok := g.byPath[entry.Path]; ok {
		return fmt.Errorf("group %q: fixture %s is declared twice", g.Path(), entry.Path)
	}
	g.byName[entry.Name] = len(g.entries)
	g.byPath[entry.Path] = len(g.entries)
	g.entries = append(g.entries, entry)
	return nil
}

func cleanRel(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}

// escapesRoot reports whether a cleaned relative path leaves its root
func escapesRoot(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../")
}

// Entries returns the entries in declaration order
func (g *Group) Entries() []domain.DispatchEntry {
	out := make([]domain.DispatchEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

// DeclaredPaths returns the fixture paths referenced by the group's own entries
func (g *Group) DeclaredPaths() []string {
	out := make([]string, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.Path
	}
	return out
}

// Groups returns the nested groups
func (g *Group) Groups() []*Group {
	return g.groups
}

// Parent returns the enclosing group, nil for a suite
func (g *Group) Parent() *Group {
	return g.parent
}

// Lookup finds an entry by test name
func (g *Group) Lookup(name string) (domain.DispatchEntry, bool) {
	i, ok := g.byName[name]
	if !ok {
		return domain.DispatchEntry{}, false
	}
	return g.entries[i], true
}

// EntryFor returns the entry declared for a fixture path. Undeclared paths
// get an entry named after the file so they can still be run on their own.
func (g *Group) EntryFor(fixturePath string) (domain.DispatchEntry, bool) {
	fixturePath = cleanRel(fixturePath)
	if i, ok := g.byPath[fixturePath]; ok {
		return g.entries[i], true
	}
	return domain.NewEntry(fixturePath), false
}

// Path is the slash separated chain of group names, e.g. "box/classes"
func (g *Group) Path() string {
	if g.parent == nil {
		return g.Name
	}
	return g.parent.Path() + "/" + g.Name
}

// Walk visits g and every nested group depth first in declaration order
func (g *Group) Walk(fn func(*Group) error) error {
	if err := fn(g); err != nil {
		return err
	}
	for _, child := range g.groups {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the group at a slash separated path relative to g,
// e.g. "classes" under the "box" suite.
func (g *Group) Find(groupPath string) (*Group, bool) {
	if groupPath == "" {
		return g, true
	}
	name, rest, _ := strings.Cut(groupPath, "/")
	for _, child := range g.groups {
		if child.Name == name {
			if rest == "" {
				return child, true
			}
			return child.Find(rest)
		}
	}
	return nil, false
}

// Size counts entries in g and every nested group
func (g *Group) Size() int {
	n := 0
	_ = g.Walk(func(c *Group) error {
		n += len(c.entries)
		return nil
	})
	return n
}

// nestedDirs returns the directories owned by direct children
func (g *Group) nestedDirs() []string {
	dirs := make([]string, len(g.groups))
	for i, child := range g.groups {
		dirs[i] = child.Dir
	}
	return dirs
}
