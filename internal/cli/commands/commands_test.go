package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxd/internal/cli"
	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/domain"
	"fxd/internal/execution"
	"fxd/internal/storage"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	color.Output = io.Discard
	os.Exit(m.Run())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// project lays out testData/{a,b,sub/c}.kt with expected outputs "A", "B", "C"
func project(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	data := filepath.Join(cfg.ProjectPath, config.DefaultFixtureRoot)
	for _, name := range []string{"a", "b", "sub/c"} {
		writeFile(t, filepath.Join(data, name+".kt"), "// "+name+"\n")
		writeFile(t, filepath.Join(data, name+".decompiled.kt"), strings.ToUpper(filepath.Base(name))+"\n")
	}
	return cfg
}

func newCommands(cfg *config.Config) *Commands {
	flags := &cli.Flags{Mode: string(domain.ModeText)}
	cmds := NewCommands(cfg, flags, nil)
	cmds.Run.formatter.SetOutput(io.Discard)
	cmds.Run.progress = false
	return cmds
}

// decompileAs returns the upper-cased base name, except for the listed fixtures
func decompileAs(wrong ...string) execution.Decompiler {
	return execution.DecompilerFunc(func(ctx context.Context, fixturePath string) (string, error) {
		name := strings.TrimSuffix(filepath.Base(fixturePath), ".kt")
		for _, w := range wrong {
			if w == name {
				return "WRONG", nil
			}
		}
		return strings.ToUpper(name), nil
	})
}

func TestRunCommand(t *testing.T) {
	cfg := project(t)
	cmds := newCommands(cfg)
	cmds.Run.SetDecompiler(decompileAs("b"))

	err := cmds.Run.run(context.Background())
	assert.EqualError(t, err, "1 fixture(s) failed")

	out, err := storage.NewJSONStorage(cfg).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, out.Meta.TotalFixtures)
	assert.Equal(t, 2, out.Meta.PassedFixtures)
	require.Len(t, out.Details, 1)
	assert.Equal(t, "b.kt", out.Details[0].FilePath)
	assert.Equal(t, domain.KindMismatch, out.Details[0].Kind)
	assert.Contains(t, out.Details[0].Diff, "+WRONG")

	t.Run("failed re-runs only the last failures", func(t *testing.T) {
		cfg.Flags.OnlyFailed = true
		defer func() { cfg.Flags.OnlyFailed = false }()
		cmds.Run.SetDecompiler(decompileAs())

		require.NoError(t, cmds.Run.run(context.Background()))
		out, err := storage.NewJSONStorage(cfg).Load()
		require.NoError(t, err)
		assert.Equal(t, 1, out.Meta.TotalFixtures)
		assert.Empty(t, out.Details)
	})

	t.Run("filter narrows the entries", func(t *testing.T) {
		cfg.Flags.NameFilter = "c.kt"
		defer func() { cfg.Flags.NameFilter = "" }()

		require.NoError(t, cmds.Run.run(context.Background()))
		out, err := storage.NewJSONStorage(cfg).Load()
		require.NoError(t, err)
		assert.Equal(t, 1, out.Meta.TotalFixtures)
	})
}

func TestRunCommand_IncompleteManifest(t *testing.T) {
	cfg := project(t)
	writeFile(t, filepath.Join(cfg.ProjectPath, config.DefaultManifest), `
suites:
  - name: text
    root: testData
    pattern: '^(.+)\.kt$'
    exclude: '\.decompiled\.kt$'
    entries: [a.kt, b.kt]
    groups:
      - name: sub
        entries: [c.kt]
`)
	require.NoError(t, os.Remove(filepath.Join(cfg.ProjectPath, config.DefaultFixtureRoot, "b.kt")))
	cmds := newCommands(cfg)
	cmds.Run.SetDecompiler(decompileAs())

	err := cmds.Run.run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "1 fixture(s) failed", err.Error(), "the stale entry still runs and fails")

	out, err := storage.NewJSONStorage(cfg).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"text"}, out.Meta.IncompleteGroups)
	require.Len(t, out.Details, 1)
	assert.Equal(t, domain.KindNotFound, out.Details[0].Kind)
}

func TestRunCommand_NoDecompiler(t *testing.T) {
	cfg := project(t)
	cmds := newCommands(cfg)
	err := cmds.Run.run(context.Background())
	assert.ErrorContains(t, err, config.EnvDecompiler)
}

func TestCheckCommand(t *testing.T) {
	cfg := project(t)
	cmds := newCommands(cfg)
	cmds.Check.formatter.SetOutput(io.Discard)

	t.Run("ad-hoc suite is always complete", func(t *testing.T) {
		suites, err := loadSuites(cfg, discovery.NewScanner(nil))
		require.NoError(t, err)
		assert.NoError(t, cmds.Check.check(suites))
	})

	t.Run("manifest missing a fixture", func(t *testing.T) {
		writeFile(t, filepath.Join(cfg.ProjectPath, config.DefaultManifest), `
suites:
  - name: text
    root: testData
    pattern: '^(.+)\.kt$'
    exclude: '\.decompiled\.kt$'
    entries: [a.kt]
    groups:
      - name: sub
        entries: [c.kt]
`)
		suites, err := loadSuites(cfg, discovery.NewScanner(nil))
		require.NoError(t, err)
		assert.EqualError(t, cmds.Check.check(suites), "1 incomplete group(s)")
	})

	t.Run("missing fixture root aborts", func(t *testing.T) {
		writeFile(t, filepath.Join(cfg.ProjectPath, config.DefaultManifest), `
suites:
  - name: text
    root: nowhere
`)
		suites, err := loadSuites(cfg, discovery.NewScanner(nil))
		require.NoError(t, err)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, cmds.Check.check(suites), &notFound)
	})
}

func TestInitCommand(t *testing.T) {
	cfg := project(t)
	cmds := newCommands(cfg)

	require.NoError(t, cmds.Init.Execute(nil, nil))
	data, err := os.ReadFile(cfg.GetManifestPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "root: testData")
	assert.Contains(t, string(data), "- a.kt")

	assert.ErrorContains(t, cmds.Init.Execute(nil, nil), "already exists")

	suites, err := loadSuites(cfg, discovery.NewScanner(nil))
	require.NoError(t, err)
	require.Len(t, suites, 1)
	assert.Equal(t, "text", suites[0].Name)
	assert.Equal(t, 3, suites[0].Size())

	cmds.Check.formatter.SetOutput(io.Discard)
	assert.NoError(t, cmds.Check.check(suites))
}

func TestSelectSuite(t *testing.T) {
	cfg := project(t)
	suites, err := loadSuites(cfg, discovery.NewScanner(nil))
	require.NoError(t, err)

	selected, err := selectSuite(suites, "fixtures/sub")
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "fixtures/sub", selected[0].Path())

	_, err = selectSuite(suites, "box")
	assert.ErrorContains(t, err, `unknown suite "box"`)
	_, err = selectSuite(suites, "fixtures/nope")
	assert.Error(t, err)
}

func TestLoadSuites_ExplicitManifestMissing(t *testing.T) {
	cfg := project(t)
	cfg.Flags.Manifest = "missing.yaml"
	_, err := loadSuites(cfg, discovery.NewScanner(nil))
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
