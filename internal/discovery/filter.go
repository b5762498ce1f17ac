package discovery

import (
	"path/filepath"
	"strings"

	"fxd/internal/domain"
)

// Filter narrows fixtures by a user supplied name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters fixtures by name pattern using wildcard matching.
// Supports patterns like "*When.kt" or "*when*"; a pattern without
// wildcards matches any fixture whose path contains it.
func (f *Filter) FilterByName(fixtures []domain.Fixture, pattern string) []domain.Fixture {
	if pattern == "" {
		return fixtures
	}

	var filtered []domain.Fixture
	for _, fixture := range fixtures {
		if f.matches(fixture.Path, pattern) {
			filtered = append(filtered, fixture)
		}
	}
	return filtered
}

// FilterEntries applies the same matching to dispatch entries
func (f *Filter) FilterEntries(entries []domain.DispatchEntry, pattern string) []domain.DispatchEntry {
	if pattern == "" {
		return entries
	}

	var filtered []domain.DispatchEntry
	for _, entry := range entries {
		if f.matches(entry.Path, pattern) || f.matches(entry.Name, pattern) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func (f *Filter) matches(relPath, pattern string) bool {
	name := filepath.Base(relPath)

	// filepath.Match supports * and ? wildcards
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(relPath, pattern)
	}

	// "*when*" style patterns: every literal part must occur in the name
	if strings.Contains(pattern, "*") {
		hasPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasPart = true
			if !strings.Contains(name, part) {
				return false
			}
		}
		return hasPart
	}
	return false
}
