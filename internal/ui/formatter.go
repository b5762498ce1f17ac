package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	filter *discovery.Filter
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to the color-aware stdout
func NewFormatter(cfg *config.Config, filter *discovery.Filter) *Formatter {
	return &Formatter{
		config: cfg,
		filter: filter,
		out:    color.Output,
	}
}

// SetOutput redirects everything the formatter prints
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	gray   = color.New(color.FgHiBlack)
)

// FailureKey identifies a fixture across runs
func FailureKey(group, fixturePath string) string {
	return group + "::" + fixturePath
}

// PrintFixtureList prints the group tree of g with its entries, narrowed by
// the name filter. Entries whose key is in failed (from the last run) are
// marked with [F]. It returns the number of entries printed.
func (f *Formatter) PrintFixtureList(g *dispatch.Group, nameFilter string, failed map[string]struct{}) int {
	count := 0
	_ = g.Walk(func(c *dispatch.Group) error {
		count += len(f.filter.FilterEntries(c.Entries(), nameFilter))
		return nil
	})

	green.Fprintf(f.out, "Found %d fixture(s) in suite %s:\n", count, g.Name)
	cyan.Fprintf(f.out, "%s [%s, %s]\n", g.Name, g.Mode, g.Root)
	f.printGroup(g, "", nameFilter, failed)
	return count
}

func (f *Formatter) printGroup(g *dispatch.Group, prefix, nameFilter string, failed map[string]struct{}) {
	entries := f.filter.FilterEntries(g.Entries(), nameFilter)
	nested := g.Groups()
	total := len(entries) + len(nested)

	for i, e := range entries {
		connector, _ := branch(prefix, i == total-1)
		marker := ""
		if _, ok := failed[FailureKey(g.Path(), e.Path)]; ok {
			marker = " " + red.Sprint("[F]")
		}
		fmt.Fprintf(f.out, "%s%s %s%s\n", connector, yellow.Sprint(e.Name), gray.Sprint(e.Path), marker)
	}
	for i, child := range nested {
		connector, next := branch(prefix, len(entries)+i == total-1)
		cyan.Fprintf(f.out, "%s%s/\n", connector, child.Dir)
		f.printGroup(child, next, nameFilter, failed)
	}
}

func branch(prefix string, last bool) (connector, next string) {
	if last {
		return prefix + "└── ", prefix + "    "
	}
	return prefix + "├── ", prefix + "│   "
}

// PrintFixtures prints a flat enumeration of fixture files
func (f *Formatter) PrintFixtures(root string, fixtures []domain.Fixture) {
	green.Fprintf(f.out, "Found %d fixture file(s) under %s:\n", len(fixtures), root)
	for i, fx := range fixtures {
		connector, _ := branch("", i == len(fixtures)-1)
		cyan.Fprintf(f.out, "%s%s\n", connector, fx.Path)
	}
}

// PrintCoverage reports every group's completeness, listing each
// undeclared and each stale path. It returns true when all groups are complete.
func (f *Formatter) PrintCoverage(results []domain.CoverageResult) bool {
	complete := true
	for _, cov := range results {
		if cov.Complete() {
			green.Fprintf(f.out, "✓ %s: %d fixture(s), all declared\n", cov.Group, cov.Found)
			continue
		}
		complete = false
		red.Fprintf(f.out, "✗ %s: %d missing, %d stale (%d found, %d declared)\n",
			cov.Group, len(cov.Missing), len(cov.Stale), cov.Found, cov.Declared)
		for _, p := range cov.Missing {
			fmt.Fprintf(f.out, "    %s %s %s\n", red.Sprint("+"), p, gray.Sprint("(not declared)"))
		}
		for _, p := range cov.Stale {
			fmt.Fprintf(f.out, "    %s %s %s\n", yellow.Sprint("-"), p, gray.Sprint("(no such fixture)"))
		}
	}
	return complete
}

// PrintMetaStats displays the statistics of a stored run followed by the
// tree of failed fixtures.
func (f *Formatter) PrintMetaStats(output *domain.RunResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                   Fixture Run Statistics                      ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Total Fixtures", fmt.Sprint(meta.TotalFixtures), color.New(color.FgWhite)},
		{"Passed Fixtures", fmt.Sprint(meta.PassedFixtures), green},
		{"Failed Fixtures", fmt.Sprint(meta.FailedFixtures), red},
		{"Ignored Fixtures", fmt.Sprint(meta.IgnoredFixtures), yellow},
		{"Incomplete Groups", fmt.Sprint(len(meta.IncompleteGroups)), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), color.New(color.FgWhite)},
		{"Workers", fmt.Sprint(meta.Workers), color.New(color.FgWhite)},
		{"Timestamp", meta.Timestamp, color.New(color.FgWhite)},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	if meta.FailedFixtures == 0 && len(meta.IncompleteGroups) == 0 {
		green.Fprintln(f.out, "✓ All fixtures passed!")
		return
	}
	if len(meta.IncompleteGroups) > 0 {
		red.Fprintf(f.out, "✗ incomplete group(s): %s\n", strings.Join(meta.IncompleteGroups, ", "))
	}
	if meta.FailedFixtures > 0 {
		red.Fprintf(f.out, "✗ %d fixture(s) failed\n", meta.FailedFixtures)
		fmt.Fprintln(f.out)
		f.printFailedTree(output.Details)
	}
}

// TreeNode represents a node in the failed fixture tree
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failure  *domain.Failure
}

// printFailedTree prints failed fixtures grouped by suite group and directory
func (f *Formatter) printFailedTree(failures []domain.Failure) {
	if len(failures) == 0 {
		return
	}

	root := &TreeNode{Children: make(map[string]*TreeNode)}
	for i := range failures {
		failure := &failures[i]
		parts := []string{failure.Group}
		parts = append(parts, strings.Split(strings.TrimPrefix(failure.FilePath, "./"), "/")...)

		current := root
		for _, part := range parts {
			if part == "" {
				continue
			}
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{Name: part, Children: make(map[string]*TreeNode)}
			}
			current = current.Children[part]
		}
		current.Failure = failure
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		connector, next := branch(prefix, i == len(keys)-1)
		if child.Failure != nil {
			fmt.Fprintf(f.out, "%s%s %s\n", connector, yellow.Sprint(child.Name), red.Sprintf("(%s)", child.Failure.Kind))
		} else {
			cyan.Fprintf(f.out, "%s%s\n", connector, child.Name)
		}
		f.printTreeNode(child, next)
	}
}
