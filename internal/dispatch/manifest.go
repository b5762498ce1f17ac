package dispatch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fxd/internal/discovery"
	"fxd/internal/domain"
)

// Manifest is a dispatch table declared ahead of time in YAML
type Manifest struct {
	Suites []SuiteSpec `yaml:"suites"`

	baseDir string
}

// SuiteSpec declares one top-level group
type SuiteSpec struct {
	Name           string      `yaml:"name"`
	Root           string      `yaml:"root"`
	Pattern        string      `yaml:"pattern,omitempty"`
	Exclude        string      `yaml:"exclude,omitempty"`
	Mode           string      `yaml:"mode,omitempty"`
	Target         string      `yaml:"target,omitempty"`
	ExpectedSuffix string      `yaml:"expected_suffix,omitempty"`
	Entries        []EntrySpec `yaml:"entries,omitempty"`
	Groups         []GroupSpec `yaml:"groups,omitempty"`
}

// GroupSpec declares a nested group owning a subdirectory
type GroupSpec struct {
	Name    string      `yaml:"name"`
	Dir     string      `yaml:"dir,omitempty"`
	Entries []EntrySpec `yaml:"entries,omitempty"`
	Groups  []GroupSpec `yaml:"groups,omitempty"`
}

// EntrySpec is either a bare fixture path or a {name, path} mapping
type EntrySpec struct {
	Name string `yaml:"name,omitempty"`
	Path string `yaml:"path"`
}

// UnmarshalYAML accepts "a.kt" as shorthand for {path: a.kt}
func (e *EntrySpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Path = node.Value
		return nil
	}
	type plain EntrySpec
	return node.Decode((*plain)(e))
}

// MarshalYAML writes entries without a custom name as bare paths
func (e EntrySpec) MarshalYAML() (interface{}, error) {
	if e.Name == "" {
		return e.Path, nil
	}
	type plain EntrySpec
	return plain(e), nil
}

// LoadManifest reads a manifest file. Suite roots are resolved relative to
// the directory containing the file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	m, err := ParseManifest(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes manifest YAML; relative roots are joined to baseDir
func ParseManifest(data []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Suites) == 0 {
		return nil, errors.New("manifest declares no suites")
	}
	m.baseDir = baseDir
	return &m, nil
}

// Build turns the manifest into suites
func (m *Manifest) Build() ([]*Group, error) {
	seen := make(map[string]bool)
	suites := make([]*Group, 0, len(m.Suites))
	for _, spec := range m.Suites {
		if spec.Name == "" {
			return nil, errors.New("suite without a name")
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate suite %q", spec.Name)
		}
		seen[spec.Name] = true

		suite, err := m.buildSuite(spec)
		if err != nil {
			return nil, fmt.Errorf("suite %q: %w", spec.Name, err)
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

func (m *Manifest) buildSuite(spec SuiteSpec) (*Group, error) {
	if spec.Root == "" {
		return nil, errors.New("root is required")
	}
	root := spec.Root
	if !filepath.IsAbs(root) && m.baseDir != "" {
		root = filepath.Join(m.baseDir, root)
	}

	rule, err := discovery.ParseRule(spec.Pattern)
	if err != nil {
		return nil, err
	}
	if rule, err = rule.WithExclude(spec.Exclude); err != nil {
		return nil, err
	}

	var opts []Option
	if spec.Mode != "" {
		mode := domain.Mode(spec.Mode)
		if !mode.Valid() {
			return nil, fmt.Errorf("unknown mode %q", spec.Mode)
		}
		opts = append(opts, WithMode(mode))
	}
	if spec.Target != "" {
		opts = append(opts, WithTarget(spec.Target))
	}
	if spec.ExpectedSuffix != "" {
		opts = append(opts, WithExpectedSuffix(spec.ExpectedSuffix))
	}

	suite := NewGroup(spec.Name, root, rule, opts...)
	if err := declareAll(suite, spec.Entries); err != nil {
		return nil, err
	}
	if err := nestAll(suite, spec.Groups); err != nil {
		return nil, err
	}
	return suite, nil
}

func nestAll(parent *Group, specs []GroupSpec) error {
	for _, spec := range specs {
		dir := spec.Dir
		if dir == "" {
			dir = spec.Name
		}
		child, err := parent.Nest(spec.Name, dir)
		if err != nil {
			return err
		}
		if err := declareAll(child, spec.Entries); err != nil {
			return err
		}
		if err := nestAll(child, spec.Groups); err != nil {
			return err
		}
	}
	return nil
}

func declareAll(g *Group, specs []EntrySpec) error {
	for _, spec := range specs {
		if err := g.DeclareEntry(domain.DispatchEntry{Name: spec.Name, Path: spec.Path}); err != nil {
			return err
		}
	}
	return nil
}

// Marshal renders suites back into manifest YAML, e.g. to seed a manifest
// from a directory with Load.
func Marshal(suites []*Group) ([]byte, error) {
	var m Manifest
	for _, s := range suites {
		spec := SuiteSpec{
			Name:           s.Name,
			Root:           filepath.ToSlash(s.Root),
			Pattern:        s.Rule.Source(),
			Exclude:        s.Rule.ExcludeSource(),
			Mode:           string(s.Mode),
			Target:         s.Target,
			ExpectedSuffix: s.ExpectedSuffix,
			Entries:        entrySpecs(s),
			Groups:         groupSpecs(s),
		}
		m.Suites = append(m.Suites, spec)
	}
	return yaml.Marshal(&m)
}

func entrySpecs(g *Group) []EntrySpec {
	var specs []EntrySpec
	for _, e := range g.entries {
		spec := EntrySpec{Path: e.Path}
		if e.Name != domain.TestName(e.Path) {
			spec.Name = e.Name
		}
		specs = append(specs, spec)
	}
	return specs
}

func groupSpecs(g *Group) []GroupSpec {
	var specs []GroupSpec
	for _, child := range g.groups {
		specs = append(specs, GroupSpec{
			Name:    child.Name,
			Dir:     child.Dir,
			Entries: entrySpecs(child),
			Groups:  groupSpecs(child),
		})
	}
	return specs
}
