package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys, read from the process environment and the project .env file
const (
	EnvProjectPath    = "FXD_PROJECT_PATH"
	EnvManifest       = "FXD_MANIFEST"
	EnvFixtureRoot    = "FXD_FIXTURE_ROOT"
	EnvDecompiler     = "FXD_DECOMPILER"
	EnvExpectedSuffix = "FXD_EXPECTED_SUFFIX"
	EnvTargetBackend  = "FXD_TARGET_BACKEND"
	EnvTimeout        = "FXD_TIMEOUT"
	EnvLogLevel       = "FXD_LOG_LEVEL"
	EnvResultsDSN     = "FXD_RESULTS_DSN"
	EnvIgnoreDirs     = "FXD_IGNORE_DIRS"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath  string
	ManifestPath string

	// Ad-hoc suite used when no manifest exists
	FixtureRoot string
	Pattern     string
	Exclude     string

	// Decompiler-under-test
	Decompiler     string // command line; the fixture path is appended
	ExpectedSuffix string
	TargetBackend  string
	Timeout        time.Duration

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	ResultsDSN     string
	LogLevel       string

	// Execution settings
	Processors int

	// Directories to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors  int
	Manifest    string
	FixtureRoot string
	Suite       string
	NameFilter  string
	FailFast    bool
	OnlyFailed  bool
	OpenFails   bool
	Undeclared  bool
	LogLevel    string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		ManifestPath:   DefaultManifest,
		FixtureRoot:    DefaultFixtureRoot,
		Pattern:        DefaultPattern,
		Exclude:        DefaultExclude,
		ExpectedSuffix: DefaultExpectedSuffix,
		TargetBackend:  DefaultTargetBackend,
		Timeout:        DefaultTimeout,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		LogLevel:       DefaultLogLevel,
		Processors:     DefaultProcessors,
		Flags:          Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// LoadEnv applies the project .env file and then the process environment;
// process variables win over the file.
func (c *Config) LoadEnv() error {
	values := map[string]string{}

	envPath := filepath.Join(c.envProjectPath(), DefaultEnvFile)
	fileValues, err := godotenv.Read(envPath)
	switch {
	case err == nil:
		values = fileValues
	case errors.Is(err, fs.ErrNotExist):
		// .env file is optional
	default:
		return fmt.Errorf("read %s: %w", envPath, err)
	}

	for _, key := range []string{
		EnvProjectPath, EnvManifest, EnvFixtureRoot, EnvDecompiler, EnvExpectedSuffix,
		EnvTargetBackend, EnvTimeout, EnvLogLevel, EnvResultsDSN, EnvIgnoreDirs,
	} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}
	return c.apply(values)
}

func (c *Config) envProjectPath() string {
	if v := os.Getenv(EnvProjectPath); v != "" {
		return v
	}
	return c.ProjectPath
}

func (c *Config) apply(values map[string]string) error {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(values[key]); v != "" {
			*dst = v
		}
	}
	set(EnvProjectPath, &c.ProjectPath)
	set(EnvManifest, &c.ManifestPath)
	set(EnvFixtureRoot, &c.FixtureRoot)
	set(EnvDecompiler, &c.Decompiler)
	set(EnvExpectedSuffix, &c.ExpectedSuffix)
	set(EnvTargetBackend, &c.TargetBackend)
	set(EnvLogLevel, &c.LogLevel)
	set(EnvResultsDSN, &c.ResultsDSN)

	if v := strings.TrimSpace(values[EnvIgnoreDirs]); v != "" {
		c.PathsToIgnore = append(c.PathsToIgnore, splitList(v)...)
	}

	if v := strings.TrimSpace(values[EnvTimeout]); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			secs, serr := strconv.Atoi(v)
			if serr != nil {
				return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
			}
			d = time.Duration(secs) * time.Second
		}
		c.Timeout = d
	}
	return nil
}

// ApplyFlags copies parsed flags into the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// splitList splits a comma separated list, dropping empty items
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Load creates a config and applies flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.ApplyFlags(flags)
	return cfg
}

// resolve joins p to the project path unless it is absolute
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectPath, p)
}

// GetManifestPath returns the manifest path, using the flag if provided
func (c *Config) GetManifestPath() string {
	if c.Flags.Manifest != "" {
		return c.resolve(c.Flags.Manifest)
	}
	return c.resolve(c.ManifestPath)
}

// GetFixtureRoot returns the ad-hoc fixture root, using the flag if provided
func (c *Config) GetFixtureRoot() string {
	if c.Flags.FixtureRoot != "" {
		return c.resolve(c.Flags.FixtureRoot)
	}
	return c.resolve(c.FixtureRoot)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and fails always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
