package cli

import "fxd/internal/config"

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
	Mode        string // init only
	Force       bool   // init only
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:  f.Processors,
		Manifest:    f.Manifest,
		FixtureRoot: f.FixtureRoot,
		Suite:       f.Suite,
		NameFilter:  f.NameFilter,
		FailFast:    f.FailFast,
		OnlyFailed:  f.OnlyFailed,
		OpenFails:   f.OpenFails,
		Undeclared:  f.Undeclared,
		LogLevel:    f.LogLevel,
	}
}
