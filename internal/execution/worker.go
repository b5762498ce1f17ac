package execution

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"fxd/internal/config"
	"fxd/internal/dispatch"
	"fxd/internal/domain"
)

// WorkerPool runs dispatch cases on a fixed number of workers. The default
// of one worker runs every case to completion before the next begins.
type WorkerPool struct {
	config     *config.Config
	dispatcher *dispatch.Dispatcher
	scheduler  Scheduler
	progress   Progress
	logger     *slog.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, dispatcher *dispatch.Dispatcher, scheduler Scheduler, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		config:     cfg,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		logger:     logger,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs every case; one failing case never stops its siblings unless
// failFast is set. Outcomes are sorted by group and fixture path. A
// cancelled ctx stops dispatching further cases and is returned as the error.
// Runs cut short by fail-fast or by ctx are aborted: they are neither
// returned nor counted as failures.
func (wp *WorkerPool) Execute(ctx context.Context, cases []dispatch.Case, failFast bool) ([]domain.Outcome, time.Duration, error) {
	if len(cases) == 0 {
		return nil, 0, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount := wp.config.Processors
	if workerCount <= 0 {
		workerCount = 1
	}
	distribution := wp.scheduler.Schedule(cases, workerCount)

	var mu sync.Mutex
	var outcomes []domain.Outcome
	var passed, failed int
	stopped := false // set once fail-fast has cancelled runCtx
	startTime := time.Now()

	var wg sync.WaitGroup
	for i, shard := range distribution {
		wg.Add(1)
		go func(workerID int, shard []dispatch.Case) {
			defer wg.Done()
			for _, c := range shard {
				if runCtx.Err() != nil {
					return
				}
				outcome := wp.dispatcher.RunCase(runCtx, c)

				mu.Lock()
				if !outcome.Passed() && (stopped || ctx.Err() != nil) {
					// interrupted mid-run; not a verdict on the fixture
					mu.Unlock()
					wp.logger.Debug("fixture aborted",
						"worker", workerID,
						"group", outcome.Group,
						"fixture", outcome.Entry.Path)
					return
				}
				outcomes = append(outcomes, outcome)
				if outcome.Passed() {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(passed, failed)
				}
				if failFast && !outcome.Passed() {
					stopped = true
					cancel()
				}
				mu.Unlock()

				wp.logger.Debug("fixture done",
					"worker", workerID,
					"group", outcome.Group,
					"fixture", outcome.Entry.Path,
					"status", outcome.Status,
					"duration", outcome.Duration)
			}
		}(i+1, shard)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		if outcomes[i].Group != outcomes[j].Group {
			return outcomes[i].Group < outcomes[j].Group
		}
		return outcomes[i].Entry.Path < outcomes[j].Entry.Path
	})
	return outcomes, time.Since(startTime), ctx.Err()
}
