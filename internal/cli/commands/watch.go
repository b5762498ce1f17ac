package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/watch"
)

// WatchCommand re-runs the completeness check whenever fixtures change
type WatchCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
	check   *CheckCommand
	logger  *slog.Logger
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand(cfg *config.Config, scanner *discovery.Scanner, check *CheckCommand, logger *slog.Logger) *WatchCommand {
	return &WatchCommand{config: cfg, scanner: scanner, check: check, logger: logger}
}

// Execute runs the command until interrupted
func (wc *WatchCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return wc.watch(ctx)
}

func (wc *WatchCommand) watch(ctx context.Context) error {
	suites, err := loadSuites(wc.config, wc.scanner)
	if err != nil {
		return err
	}

	w, err := watch.New(wc.config.PathsToIgnore, wc.logger)
	if err != nil {
		return err
	}
	for _, s := range suites {
		if err := w.Add(s.Root); err != nil {
			return err
		}
	}
	manifestDir := filepath.Dir(wc.config.GetManifestPath())
	if err := w.Add(manifestDir); err != nil {
		wc.logger.Debug("manifest directory not watched", "dir", manifestDir, "err", err)
	}

	wc.recheck()
	return w.Run(ctx, func(paths []string) {
		wc.logger.Debug("fixtures changed", "paths", paths)
		wc.recheck()
	})
}

// recheck reloads the suites so manifest edits are picked up too
func (wc *WatchCommand) recheck() {
	color.Cyan("── checking fixtures ──")
	suites, err := loadSuites(wc.config, wc.scanner)
	if err == nil {
		err = wc.check.check(suites)
	}
	if err != nil {
		color.Red("%v", err)
	}
}
