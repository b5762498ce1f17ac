package domain

// CoverageResult is the difference between the fixtures found on disk and
// the fixture paths referenced by dispatch entries.
type CoverageResult struct {
	Group    string   `json:"group"`
	Root     string   `json:"root"`
	Found    int      `json:"found"`
	Declared int      `json:"declared"`
	Missing  []string `json:"missing,omitempty"` // on disk, not declared
	Stale    []string `json:"stale,omitempty"`   // declared, not on disk
}

// Complete reports whether every fixture is declared and every entry has a fixture
func (c CoverageResult) Complete() bool {
	return len(c.Missing) == 0 && len(c.Stale) == 0
}

// Err returns a MissingDispatchEntryError for an incomplete result, nil otherwise
func (c CoverageResult) Err() error {
	if c.Complete() {
		return nil
	}
	return &MissingDispatchEntryError{Group: c.Group, Missing: c.Missing, Stale: c.Stale}
}
