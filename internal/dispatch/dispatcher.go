package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"fxd/internal/discovery"
	"fxd/internal/domain"
)

// Case is one dispatch entry resolved against its group
type Case struct {
	Group          string // group path, e.g. "box/classes"
	Root           string
	Entry          domain.DispatchEntry
	AbsPath        string
	Mode           domain.Mode
	Target         string
	ExpectedSuffix string
}

// Routine runs the decompiler-under-test on one fixture
type Routine interface {
	Run(ctx context.Context, c Case) domain.Outcome
}

// RoutineFunc adapts a function to Routine
type RoutineFunc func(ctx context.Context, c Case) domain.Outcome

// Run calls f
func (f RoutineFunc) Run(ctx context.Context, c Case) domain.Outcome {
	return f(ctx, c)
}

// Dispatcher runs single entries and checks group completeness
type Dispatcher struct {
	scanner *discovery.Scanner
	routine Routine
}

// NewDispatcher creates a Dispatcher; routine may be nil for check-only use
func NewDispatcher(scanner *discovery.Scanner, routine Routine) *Dispatcher {
	return &Dispatcher{scanner: scanner, routine: routine}
}

// Case resolves a fixture path of g into a runnable case
func (d *Dispatcher) Case(g *Group, fixturePath string) Case {
	entry, _ := g.EntryFor(fixturePath)
	return Case{
		Group:          g.Path(),
		Root:           g.Root,
		Entry:          entry,
		AbsPath:        filepath.Join(g.Root, filepath.FromSlash(entry.Path)),
		Mode:           g.Mode,
		Target:         g.Target,
		ExpectedSuffix: g.ExpectedSuffix,
	}
}

// RunSingle runs the routine on one fixture of g. A fixture that is not on
// disk fails with a NotFoundError and a path leaving the group root fails
// without running; a panicking routine fails with the panic value instead of
// crashing the run.
func (d *Dispatcher) RunSingle(ctx context.Context, g *Group, fixturePath string) domain.Outcome {
	c := d.Case(g, fixturePath)
	if escapesRoot(c.Entry.Path) {
		return domain.Outcome{
			Group:  c.Group,
			Entry:  c.Entry,
			Status: domain.StatusFail,
			Err:    fmt.Errorf("fixture %s is outside the root of group %q", c.Entry.Path, c.Group),
		}
	}
	return d.run(ctx, c)
}

func (d *Dispatcher) run(ctx context.Context, c Case) (outcome domain.Outcome) {
	start := time.Now()
	outcome = domain.Outcome{Group: c.Group, Entry: c.Entry, Status: domain.StatusFail}
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = domain.StatusFail
			outcome.Err = fmt.Errorf("routine panicked: %v\n%s", r, debug.Stack())
		}
		outcome.Group = c.Group
		outcome.Entry = c.Entry
		if outcome.Duration == 0 {
			outcome.Duration = time.Since(start)
		}
	}()

	info, err := os.Stat(c.AbsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			outcome.Err = &domain.NotFoundError{Path: c.AbsPath, Err: err}
		} else {
			outcome.Err = &domain.AccessError{Path: c.AbsPath, Err: err}
		}
		return outcome
	}
	if !info.Mode().IsRegular() {
		outcome.Err = &domain.NotFoundError{Path: c.AbsPath, Err: errors.New("not a regular file")}
		return outcome
	}
	if d.routine == nil {
		outcome.Err = errors.New("no routine configured")
		return outcome
	}
	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	return d.routine.Run(ctx, c)
}

// Cases lists every entry of g and its nested groups as runnable cases
func (d *Dispatcher) Cases(g *Group) []Case {
	var cases []Case
	_ = g.Walk(func(c *Group) error {
		for _, e := range c.entries {
			cases = append(cases, d.Case(c, e.Path))
		}
		return nil
	})
	return cases
}

// RunCase runs a case produced by Case or Cases
func (d *Dispatcher) RunCase(ctx context.Context, c Case) domain.Outcome {
	return d.run(ctx, c)
}

// CheckCompleteness compares the fixtures under g.Root (minus the
// directories owned by nested groups) with g's own declared entries.
func (d *Dispatcher) CheckCompleteness(g *Group) (domain.CoverageResult, error) {
	cov, err := d.Check(g.Root, g.Rule, g.DeclaredPaths(), g.nestedDirs()...)
	cov.Group = g.Path()
	var mde *domain.MissingDispatchEntryError
	if errors.As(err, &mde) {
		mde.Group = cov.Group
	}
	return cov, err
}

// CheckAll checks g and every nested group. Enumeration errors abort the
// walk; incomplete groups are collected and reported together.
func (d *Dispatcher) CheckAll(g *Group) ([]domain.CoverageResult, error) {
	var results []domain.CoverageResult
	var incomplete []error
	err := g.Walk(func(c *Group) error {
		cov, err := d.CheckCompleteness(c)
		var mde *domain.MissingDispatchEntryError
		switch {
		case err == nil:
		case errors.As(err, &mde):
			incomplete = append(incomplete, err)
		default:
			return fmt.Errorf("check group %s: %w", c.Path(), err)
		}
		results = append(results, cov)
		return nil
	})
	if err != nil {
		return results, err
	}
	return results, errors.Join(incomplete...)
}

// Check enumerates root with rule, drops fixtures under excludeDirs and
// compares the rest with declared. The result is complete iff both sets are
// equal; otherwise the error is a MissingDispatchEntryError listing every
// uncovered and every stale path.
func (d *Dispatcher) Check(root string, rule discovery.MatchRule, declared []string, excludeDirs ...string) (domain.CoverageResult, error) {
	cov := domain.CoverageResult{Root: root, Declared: len(declared)}

	fixtures, err := d.scanner.Enumerate(root, rule)
	if err != nil {
		return cov, err
	}

	found := make(map[string]bool, len(fixtures))
	for _, f := range fixtures {
		if underAny(f.Path, excludeDirs) {
			continue
		}
		found[f.Path] = true
	}
	cov.Found = len(found)

	declaredSet := make(map[string]bool, len(declared))
	for _, p := range declared {
		declaredSet[cleanRel(p)] = true
	}

	for p := range found {
		if !declaredSet[p] {
			cov.Missing = append(cov.Missing, p)
		}
	}
	for p := range declaredSet {
		if !found[p] {
			cov.Stale = append(cov.Stale, p)
		}
	}
	sort.Strings(cov.Missing)
	sort.Strings(cov.Stale)

	return cov, cov.Err()
}

func underAny(p string, dirs []string) bool {
	for _, dir := range dirs {
		if dir != "" && strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}
