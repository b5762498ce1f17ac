package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/domain"
	"fxd/internal/storage"
	"fxd/internal/ui"
)

// adHocSuite names the suite built from the fixture root when no manifest exists
const adHocSuite = "fixtures"

// loadSuites returns the suites of the manifest, or one suite with an entry
// per fixture under the fixture root when the manifest file does not exist.
// --suite narrows the result to one suite or one nested group ("box/classes").
func loadSuites(cfg *config.Config, scanner *discovery.Scanner) ([]*dispatch.Group, error) {
	var suites []*dispatch.Group

	manifestPath := cfg.GetManifestPath()
	_, err := os.Stat(manifestPath)
	switch {
	case err == nil:
		m, err := dispatch.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		if suites, err = m.Build(); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", manifestPath, err)
		}
	case errors.Is(err, fs.ErrNotExist) && cfg.Flags.Manifest == "":
		suite, err := adHoc(cfg, scanner, adHocSuite)
		if err != nil {
			return nil, err
		}
		suites = []*dispatch.Group{suite}
	default:
		return nil, &domain.NotFoundError{Path: manifestPath, Err: err}
	}

	return selectSuite(suites, cfg.Flags.Suite)
}

func adHoc(cfg *config.Config, scanner *discovery.Scanner, name string, opts ...dispatch.Option) (*dispatch.Group, error) {
	rule, err := fixtureRule(cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]dispatch.Option{
		dispatch.WithTarget(cfg.TargetBackend),
		dispatch.WithExpectedSuffix(cfg.ExpectedSuffix),
	}, opts...)
	return dispatch.Load(scanner, name, cfg.GetFixtureRoot(), rule, opts...)
}

func fixtureRule(cfg *config.Config) (discovery.MatchRule, error) {
	rule, err := discovery.ParseRule(cfg.Pattern)
	if err != nil {
		return rule, err
	}
	return rule.WithExclude(cfg.Exclude)
}

func selectSuite(suites []*dispatch.Group, selector string) ([]*dispatch.Group, error) {
	if selector == "" {
		return suites, nil
	}
	name, rest, _ := strings.Cut(strings.Trim(selector, "/"), "/")
	for _, s := range suites {
		if s.Name != name {
			continue
		}
		g, ok := s.Find(rest)
		if !ok {
			return nil, fmt.Errorf("suite %s has no group %q", name, rest)
		}
		return []*dispatch.Group{g}, nil
	}
	names := make([]string, len(suites))
	for i, s := range suites {
		names[i] = s.Name
	}
	return nil, fmt.Errorf("unknown suite %q (have %s)", name, strings.Join(names, ", "))
}

// checkSuites checks every group of every suite. Enumeration errors abort;
// incomplete groups are returned joined in the error.
func checkSuites(d *dispatch.Dispatcher, suites []*dispatch.Group) ([]domain.CoverageResult, error) {
	var results []domain.CoverageResult
	var incomplete []error
	for _, s := range suites {
		cov, err := d.CheckAll(s)
		results = append(results, cov...)
		if err == nil {
			continue
		}
		if !isIncomplete(err) {
			return results, err
		}
		incomplete = append(incomplete, err)
	}
	return results, errors.Join(incomplete...)
}

// isIncomplete reports whether err only carries MissingDispatchEntryErrors
func isIncomplete(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !isIncomplete(e) {
				return false
			}
		}
		return true
	}
	var mde *domain.MissingDispatchEntryError
	return errors.As(err, &mde)
}

// lastFailures returns the keys of the failures stored by the previous run
func lastFailures(st storage.Storage) map[string]struct{} {
	out, err := st.Load()
	if err != nil {
		return nil
	}
	failed := make(map[string]struct{}, len(out.Details))
	for _, f := range out.Details {
		failed[ui.FailureKey(f.Group, f.FilePath)] = struct{}{}
	}
	return failed
}
