package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetManifestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "default manifest",
			config:   &Config{ProjectPath: ".", ManifestPath: "fixtures.yaml"},
			expected: "fixtures.yaml",
		},
		{
			name: "with manifest flag",
			config: &Config{
				ProjectPath:  "/project",
				ManifestPath: "fixtures.yaml",
				Flags:        Flags{Manifest: "suites/box.yaml"},
			},
			expected: "/project/suites/box.yaml",
		},
		{
			name: "absolute manifest flag",
			config: &Config{
				ProjectPath: "/project",
				Flags:       Flags{Manifest: "/absolute/fixtures.yaml"},
			},
			expected: "/absolute/fixtures.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.GetManifestPath())
		})
	}
}

func TestConfig_GetFixtureRoot(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"
	assert.Equal(t, "/project/testData", cfg.GetFixtureRoot())

	cfg.Flags.FixtureRoot = "compiler/testData/decompiler"
	assert.Equal(t, "/project/compiler/testData/decompiler", cfg.GetFixtureRoot())
}

func TestConfig_GetOutputPath(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"
	assert.Equal(t, "/project/.fxd/fixture-results.json", cfg.GetOutputPath())
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultProjectPath, cfg.ProjectPath)
	assert.Equal(t, DefaultProcessors, cfg.Processors)
	assert.Equal(t, DefaultTargetBackend, cfg.TargetBackend)
	assert.Empty(t, cfg.PathsToIgnore)

	cfg.PathsToIgnore = append(cfg.PathsToIgnore, "changed")
	assert.Empty(t, DefaultPathsToIgnore)
}

func TestLoad(t *testing.T) {
	cfg := Load(Flags{Processors: 3, LogLevel: "debug"})
	assert.Equal(t, 3, cfg.Processors)
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg = Load(Flags{})
	assert.Equal(t, DefaultProcessors, cfg.Processors)
}

func TestConfig_LoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := "FXD_DECOMPILER=./gradlew decompile\nFXD_TARGET_BACKEND=JVM_IR\nFXD_TIMEOUT=30\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envFile), 0o644))

	t.Setenv(EnvProjectPath, dir)
	t.Setenv(EnvTargetBackend, "JS_IR")

	cfg := New()
	require.NoError(t, cfg.LoadEnv())

	assert.Equal(t, dir, cfg.ProjectPath)
	assert.Equal(t, "./gradlew decompile", cfg.Decompiler)
	assert.Equal(t, "JS_IR", cfg.TargetBackend, "process environment wins over .env")
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestConfig_LoadEnv_MissingFile(t *testing.T) {
	t.Setenv(EnvProjectPath, t.TempDir())
	t.Setenv(EnvTimeout, "1m")

	cfg := New()
	require.NoError(t, cfg.LoadEnv())
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestConfig_LoadEnv_InvalidTimeout(t *testing.T) {
	t.Setenv(EnvProjectPath, t.TempDir())
	t.Setenv(EnvTimeout, "soon")

	assert.Error(t, New().LoadEnv())
}

func TestConfig_LoadEnv_IgnoreDirs(t *testing.T) {
	t.Setenv(EnvProjectPath, t.TempDir())
	t.Setenv(EnvIgnoreDirs, "build, out,,node_modules")

	cfg := New()
	require.NoError(t, cfg.LoadEnv())
	assert.Equal(t, []string{"build", "out", "node_modules"}, cfg.PathsToIgnore)
}
