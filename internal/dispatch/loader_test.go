package dispatch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxd/internal/discovery"
	"fxd/internal/domain"
)

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "dummy.kt", "loops.kt", "classes/classes.kt", "classes/ctor/no_primary_ctor.kt")
	scanner := discovery.NewScanner(nil)

	g, err := Load(scanner, "box", root, ktRule, WithMode(domain.ModeBox))
	require.NoError(t, err)

	assert.Equal(t, []string{"dummy.kt", "loops.kt"}, g.DeclaredPaths())
	classes, ok := g.Find("classes")
	require.True(t, ok)
	assert.Equal(t, []string{"classes.kt"}, classes.DeclaredPaths())
	ctor, ok := g.Find("classes/ctor")
	require.True(t, ok)
	assert.Equal(t, []string{"no_primary_ctor.kt"}, ctor.DeclaredPaths())
	assert.Equal(t, domain.ModeBox, ctor.Mode)
	assert.Equal(t, 4, g.Size())

	results, err := NewDispatcher(scanner, nil).CheckAll(g)
	require.NoError(t, err, "a freshly loaded suite is complete")
	assert.Len(t, results, 3)
}

func TestLoadFlat(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.kt", "b.kt", "sub/c.kt")
	scanner := discovery.NewScanner(nil)

	g, err := LoadFlat(scanner, "box", root, ktRule)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.kt", "b.kt", "sub/c.kt"}, g.DeclaredPaths())
	assert.Empty(t, g.Groups())

	_, err = LoadFlat(scanner, "box", filepath.Join(root, "missing"), ktRule)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLoad_CollidingNames(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.kt", "a.b.kt", "x-y.kt", "x_y.kt")
	scanner := discovery.NewScanner(nil)

	g, err := Load(scanner, "s", root, ktRule)
	require.NoError(t, err)

	names := map[string]string{}
	for _, e := range g.Entries() {
		names[e.Path] = e.Name
	}
	assert.Equal(t, map[string]string{
		"a.b.kt": "TestA_b",
		"a.kt":   "TestA",
		"x-y.kt": "TestX_y",
		"x_y.kt": "TestX_y_2",
	}, names)

	t.Run("suffixed names survive a manifest round trip", func(t *testing.T) {
		data, err := Marshal([]*Group{g})
		require.NoError(t, err)
		m, err := ParseManifest(data, "")
		require.NoError(t, err)
		suites, err := m.Build()
		require.NoError(t, err)
		require.Len(t, suites, 1)
		assert.Equal(t, g.Entries(), suites[0].Entries())
	})

	t.Run("flat load", func(t *testing.T) {
		flat, err := LoadFlat(scanner, "s", root, ktRule)
		require.NoError(t, err)
		entry, ok := flat.EntryFor("x_y.kt")
		require.True(t, ok)
		assert.Equal(t, "TestX_y_2", entry.Name)
	})
}
