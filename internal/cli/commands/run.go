package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/domain"
	"fxd/internal/execution"
	"fxd/internal/storage"
	"fxd/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config     *config.Config
	scanner    *discovery.Scanner
	filter     *discovery.Filter
	parser     *discovery.Parser
	scheduler  execution.Scheduler
	storage    storage.Storage
	formatter  *ui.Formatter
	viewer     ui.Viewer
	logger     *slog.Logger
	decompiler execution.Decompiler
	progress   bool
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	parser *discovery.Parser,
	scheduler execution.Scheduler,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
	logger *slog.Logger,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		parser:    parser,
		scheduler: scheduler,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
		logger:    logger,
		progress:  true,
	}
}

// SetDecompiler replaces the configured decompiler command
func (rc *RunCommand) SetDecompiler(d execution.Decompiler) {
	rc.decompiler = d
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return rc.run(ctx)
}

func (rc *RunCommand) run(ctx context.Context) error {
	suites, err := loadSuites(rc.config, rc.scanner)
	if err != nil {
		return err
	}

	decompiler := rc.decompiler
	if decompiler == nil {
		if decompiler, err = execution.NewCommandDecompiler(rc.config); err != nil {
			return err
		}
	}
	runner := execution.NewRunner(decompiler, rc.parser, rc.logger)
	dispatcher := dispatch.NewDispatcher(rc.scanner, runner)

	// Completeness first: enumeration errors abort, incomplete groups are reported
	coverage, err := checkSuites(dispatcher, suites)
	if err != nil {
		if !isIncomplete(err) {
			return err
		}
		rc.formatter.PrintCoverage(coverage)
	}

	var cases []dispatch.Case
	for _, s := range suites {
		cases = append(cases, dispatcher.Cases(s)...)
	}
	cases = rc.selectCases(cases)
	if len(cases) == 0 {
		color.Yellow("No fixtures to run")
		return nil
	}

	pool := execution.NewWorkerPool(rc.config, dispatcher, rc.scheduler, rc.logger)
	if rc.progress {
		pool.SetProgress(ui.NewProgressBar(len(cases)))
	}
	outcomes, duration, err := pool.Execute(ctx, cases, rc.config.Flags.FailFast)
	if err != nil {
		return err
	}

	run := domain.Run{Outcomes: outcomes, Coverage: coverage, Duration: duration, Workers: rc.config.Processors}
	if err := rc.storage.Save(run); err != nil {
		return fmt.Errorf("failed to save run results: %w", err)
	}
	output, err := rc.storage.Load()
	if err != nil {
		return err
	}
	rc.formatter.PrintMetaStats(output)

	if len(output.Details) > 0 && rc.config.Flags.OpenFails && rc.viewer != nil {
		if err := rc.viewer.View(output); err != nil {
			return err
		}
	}

	switch {
	case output.Meta.FailedFixtures > 0:
		return fmt.Errorf("%d fixture(s) failed", output.Meta.FailedFixtures)
	case len(output.Meta.IncompleteGroups) > 0:
		return fmt.Errorf("%d incomplete group(s)", len(output.Meta.IncompleteGroups))
	}
	return nil
}

// selectCases applies --filter and --failed
func (rc *RunCommand) selectCases(cases []dispatch.Case) []dispatch.Case {
	var failed map[string]struct{}
	if rc.config.Flags.OnlyFailed {
		failed = lastFailures(rc.storage)
		if len(failed) == 0 {
			color.Yellow("No failed fixtures in the last run")
			return nil
		}
	}

	selected := cases[:0:0]
	for _, c := range cases {
		if len(rc.filter.FilterEntries([]domain.DispatchEntry{c.Entry}, rc.config.Flags.NameFilter)) == 0 {
			continue
		}
		if failed != nil {
			if _, ok := failed[ui.FailureKey(c.Group, c.Entry.Path)]; !ok {
				continue
			}
		}
		selected = append(selected, c)
	}
	return selected
}
