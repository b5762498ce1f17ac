package ui

import "fxd/internal/domain"

// Viewer displays run failures in an interactive TUI
type Viewer interface {
	View(results *domain.RunResultsOutput) error
}
