package execution

import (
	"context"
	"time"

	"fxd/internal/dispatch"
	"fxd/internal/domain"
)

// Executor runs dispatch cases and returns their outcomes
type Executor interface {
	Execute(ctx context.Context, cases []dispatch.Case, failFast bool) ([]domain.Outcome, time.Duration, error)
}

// Progress receives running counts while cases execute
type Progress interface {
	Update(passed, failed int)
	Finish()
}
