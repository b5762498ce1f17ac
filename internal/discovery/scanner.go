package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"fxd/internal/domain"
)

// Scanner enumerates fixture files under a root directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner. skipDirs names directories never descended
// into; it is empty unless the user opts in, since every skipped fixture is
// one the completeness check cannot see.
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Enumerate returns every regular file under root accepted by rule, sorted
// lexicographically by relative path. A missing root is a NotFoundError, an
// unreadable directory anywhere in the tree is an AccessError; in both cases
// no partial result is returned.
func (s *Scanner) Enumerate(root string, rule MatchRule) ([]domain.Fixture, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Path: root, Err: err}
		}
		return nil, &domain.AccessError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.NotFoundError{Path: root, Err: errors.New("not a directory")}
	}

	var fixtures []domain.Fixture
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &domain.NotFoundError{Path: path, Err: err}
			}
			return &domain.AccessError{Path: path, Err: err}
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if s.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rule.Match(rel) {
			fixtures = append(fixtures, domain.Fixture{
				Path:    rel,
				AbsPath: path,
				Name:    d.Name(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(fixtures, func(i, j int) bool {
		return fixtures[i].Path < fixtures[j].Path
	})
	return fixtures, nil
}

// Paths returns the relative paths of the given fixtures
func Paths(fixtures []domain.Fixture) []string {
	paths := make([]string, len(fixtures))
	for i, f := range fixtures {
		paths[i] = f.Path
	}
	return paths
}
