package domain

import "errors"

// Failure represents a failed fixture as persisted and shown in the viewer
type Failure struct {
	TestName string `json:"test_name"`
	Group    string `json:"group"`
	FilePath string `json:"file_path"`
	Kind     string `json:"kind"` // mismatch, not_found, error
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Diff     string `json:"diff,omitempty"`
	Resolved bool   `json:"resolved,omitempty"` // Track if the failure is marked as resolved
}

// Failure kinds
const (
	KindMismatch = "mismatch"
	KindNotFound = "not_found"
	KindError    = "error"
)

// NewFailure builds the persisted record for a failing outcome
func NewFailure(o Outcome) Failure {
	f := Failure{
		TestName: o.Entry.Name,
		Group:    o.Group,
		FilePath: o.Entry.Path,
		Kind:     KindError,
	}
	if o.Err != nil {
		f.Message = o.Err.Error()
	}

	var mismatch *MismatchError
	var notFound *NotFoundError
	switch {
	case errors.As(o.Err, &mismatch):
		f.Kind = KindMismatch
		f.Expected = mismatch.Expected
		f.Actual = mismatch.Actual
		f.Diff = mismatch.Diff
	case errors.As(o.Err, &notFound):
		f.Kind = KindNotFound
	default:
		f.Actual = o.Output
	}
	return f
}
