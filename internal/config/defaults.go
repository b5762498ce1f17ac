package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultManifest is the dispatch table looked up under the project path
	DefaultManifest = "fixtures.yaml"
	// DefaultFixtureRoot is scanned when no manifest exists
	DefaultFixtureRoot = "testData"
	// DefaultPattern selects Kotlin fixtures
	DefaultPattern = `^(.+)\.kt$`
	// DefaultExclude keeps expected-output files out of the fixture set
	DefaultExclude = `\.decompiled\.kt$`
	// DefaultExpectedSuffix names the expected-output file of a fixture
	DefaultExpectedSuffix = ".decompiled.kt"
	// DefaultTargetBackend ignores no IGNORE_BACKEND directive
	DefaultTargetBackend = "ANY"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "fixture-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".fxd"
	// DefaultProcessors runs fixtures one at a time; the decompiler is not assumed reentrant
	DefaultProcessors = 1
	// DefaultTimeout bounds one decompiler invocation
	DefaultTimeout = 2 * time.Minute
	// DefaultLogLevel is the default log level
	DefaultLogLevel = "info"
	// DefaultEnvFile is read from the project path
	DefaultEnvFile = ".env"
)

// DefaultPathsToIgnore is empty: enumeration sees the whole fixture tree
// unless directories are excluded explicitly
var DefaultPathsToIgnore = []string{}
