package dispatch

import (
	"fmt"
	"path"
	"strings"

	"fxd/internal/discovery"
	"fxd/internal/domain"
)

// Load builds a suite with one entry per fixture currently under root.
// Fixtures in subdirectories become entries of nested groups named after
// the directory, mirroring one test class per fixture directory.
func Load(scanner *discovery.Scanner, name, root string, rule discovery.MatchRule, opts ...Option) (*Group, error) {
	fixtures, err := scanner.Enumerate(root, rule)
	if err != nil {
		return nil, err
	}

	suite := NewGroup(name, root, rule, opts...)
	for _, f := range fixtures {
		g := suite
		dir := path.Dir(f.Path)
		if dir != "." {
			for _, part := range strings.Split(dir, "/") {
				child, ok := g.Find(part)
				if !ok {
					if child, err = g.Nest(part, part); err != nil {
						return nil, err
					}
				}
				g = child
			}
		}
		if err := g.declareGenerated(path.Base(f.Path)); err != nil {
			return nil, err
		}
	}
	return suite, nil
}

// LoadFlat builds a suite whose entries reference every fixture under root
// directly, subdirectories included, without nested groups.
func LoadFlat(scanner *discovery.Scanner, name, root string, rule discovery.MatchRule, opts ...Option) (*Group, error) {
	fixtures, err := scanner.Enumerate(root, rule)
	if err != nil {
		return nil, err
	}

	suite := NewGroup(name, root, rule, opts...)
	for _, f := range fixtures {
		if err := suite.declareGenerated(f.Path); err != nil {
			return nil, err
		}
	}
	return suite, nil
}

// declareGenerated declares p under its derived name. Distinct fixtures can
// derive the same name ("x-y.kt" and "x_y.kt"), so a taken name gets the
// first free numeric suffix: TestX_y, TestX_y_2, TestX_y_3.
func (g *Group) declareGenerated(p string) error {
	base := domain.TestName(p)
	name := base
	for n := 2; ; n++ {
		if _, taken := g.byName[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return g.DeclareEntry(domain.DispatchEntry{Name: name, Path: p})
}
