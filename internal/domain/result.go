package domain

import "time"

// Status is the outcome of dispatching one entry
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusIgnored Status = "ignored"
)

// Outcome represents the result of running the decompiler-under-test on one fixture
type Outcome struct {
	Group    string        // Group the entry belongs to
	Entry    DispatchEntry // Entry that was run
	Status   Status
	Output   string        // Raw decompiler output
	Err      error         // Failure cause, nil on pass
	Duration time.Duration // Time taken to run
}

// Passed reports whether the outcome counts as a success
func (o Outcome) Passed() bool {
	return o.Status != StatusFail
}

// RunResultsMeta contains metadata about a run
type RunResultsMeta struct {
	TotalFixtures    int      `json:"total_fixtures"`
	PassedFixtures   int      `json:"passed_fixtures"`
	FailedFixtures   int      `json:"failed_fixtures"`
	IgnoredFixtures  int      `json:"ignored_fixtures"`
	IncompleteGroups []string `json:"incomplete_groups,omitempty"`
	Duration         string   `json:"duration"`
	DurationSeconds  float64  `json:"duration_seconds"`
	Workers          int      `json:"workers"`
	Timestamp        string   `json:"timestamp"`
}

// RunResultsOutput is the complete output structure for a run
type RunResultsOutput struct {
	Meta     RunResultsMeta   `json:"meta"`
	Coverage []CoverageResult `json:"coverage,omitempty"`
	Details  []Failure        `json:"details"`
}

// Run is everything a finished run hands to storage
type Run struct {
	Outcomes []Outcome
	Coverage []CoverageResult
	Duration time.Duration
	Workers  int
}
