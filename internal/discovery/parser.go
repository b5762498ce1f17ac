package discovery

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Well-known fixture directives
const (
	DirectiveIgnoreBackend = "IGNORE_BACKEND"
	DirectiveTargetBackend = "TARGET_BACKEND"
	DirectiveFile          = "FILE"
)

// BackendAny is the target that no IGNORE_BACKEND directive applies to
const BackendAny = "ANY"

var directivePattern = regexp.MustCompile(`^\s*//\s*([A-Z][A-Z0-9_]*)\s*:\s*(.*?)\s*$`)

// Directives are the "// KEY: value" comment lines found in a fixture
type Directives map[string][]string

// Values returns every value of a directive, comma separated values split
func (d Directives) Values(key string) []string {
	return d[key]
}

// Has reports whether the directive is present
func (d Directives) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// IgnoresBackend reports whether an IGNORE_BACKEND directive names target
func (d Directives) IgnoresBackend(target string) bool {
	if target == "" || strings.EqualFold(target, BackendAny) {
		return false
	}
	for _, v := range d[DirectiveIgnoreBackend] {
		if strings.EqualFold(v, target) || strings.EqualFold(v, BackendAny) {
			return true
		}
	}
	return false
}

// Parser extracts directives from fixture files
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads every directive in the fixture at path
func (p *Parser) Parse(path string) (Directives, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading fixture %s: %w", path, err)
	}
	defer file.Close()

	directives := make(Directives)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		match := directivePattern.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		key := match[1]
		if _, ok := directives[key]; !ok {
			directives[key] = []string{}
		}
		for _, v := range strings.Split(match[2], ",") {
			if v = strings.TrimSpace(v); v != "" {
				directives[key] = append(directives[key], v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading fixture %s: %w", path, err)
	}
	return directives, nil
}
