package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxd/internal/domain"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, file := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(file))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte("fun box() = \"OK\"\n"), 0o644))
	}
}

func TestScanner_Enumerate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"b.kt",
		"a.kt",
		"a.decompiled.kt",
		"sub/c.kt",
		"sub/deeper/d.kt",
		"notes.txt",
		".idea/e.kt",
		"build/f.kt",
	)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "emptydir.kt"), 0o755))

	scanner := NewScanner([]string{"build"})
	rule, err := MustRegexRule(`^(.+)\.kt$`).WithExclude(`\.decompiled\.kt$`)
	require.NoError(t, err)

	t.Run("finds every matching file once in lexicographic order", func(t *testing.T) {
		fixtures, err := scanner.Enumerate(root, rule)
		require.NoError(t, err)
		assert.Equal(t, []string{".idea/e.kt", "a.kt", "b.kt", "sub/c.kt", "sub/deeper/d.kt"}, Paths(fixtures))
	})

	t.Run("fills absolute path and name", func(t *testing.T) {
		fixtures, err := scanner.Enumerate(root, rule)
		require.NoError(t, err)
		require.NotEmpty(t, fixtures)
		last := fixtures[len(fixtures)-1]
		assert.Equal(t, "d.kt", last.Name)
		assert.Equal(t, filepath.Join(root, "sub", "deeper", "d.kt"), last.AbsPath)
	})

	t.Run("is stable across runs", func(t *testing.T) {
		first, err := scanner.Enumerate(root, rule)
		require.NoError(t, err)
		second, err := scanner.Enumerate(root, rule)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("suffix rule", func(t *testing.T) {
		fixtures, err := scanner.Enumerate(root, SuffixRule(".txt"))
		require.NoError(t, err)
		assert.Equal(t, []string{"notes.txt"}, Paths(fixtures))
	})
}

func TestScanner_Enumerate_HiddenAndBuildDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.kt", ".staging/x.kt", "out/y.kt", "build/z.kt")

	t.Run("descends into every directory by default", func(t *testing.T) {
		fixtures, err := NewScanner(nil).Enumerate(root, SuffixRule(".kt"))
		require.NoError(t, err)
		assert.Equal(t, []string{".staging/x.kt", "a.kt", "build/z.kt", "out/y.kt"}, Paths(fixtures))
	})

	t.Run("skips only directories named explicitly", func(t *testing.T) {
		fixtures, err := NewScanner([]string{"out"}).Enumerate(root, SuffixRule(".kt"))
		require.NoError(t, err)
		assert.Equal(t, []string{".staging/x.kt", "a.kt", "build/z.kt"}, Paths(fixtures))
	})
}

func TestScanner_Enumerate_EmptyRoot(t *testing.T) {
	fixtures, err := NewScanner(nil).Enumerate(t.TempDir(), SuffixRule(".kt"))
	require.NoError(t, err)
	assert.Empty(t, fixtures)
}

func TestScanner_Enumerate_Errors(t *testing.T) {
	scanner := NewScanner(nil)

	t.Run("returns NotFoundError for non-existent directory", func(t *testing.T) {
		_, err := scanner.Enumerate(filepath.Join(t.TempDir(), "missing"), SuffixRule(".kt"))
		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("returns NotFoundError for a file instead of a directory", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "a.kt")
		_, err := scanner.Enumerate(filepath.Join(root, "a.kt"), SuffixRule(".kt"))
		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("returns AccessError for an unreadable subdirectory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}
		root := t.TempDir()
		writeTree(t, root, "a.kt", "locked/b.kt")
		locked := filepath.Join(root, "locked")
		require.NoError(t, os.Chmod(locked, 0o000))
		t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

		fixtures, err := scanner.Enumerate(root, SuffixRule(".kt"))
		var access *domain.AccessError
		require.ErrorAs(t, err, &access)
		assert.Equal(t, locked, access.Path)
		assert.Nil(t, fixtures)
	})
}
