package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/storage"
	"fxd/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	suites, err := loadSuites(lc.config, lc.scanner)
	if err != nil {
		return err
	}

	if lc.config.Flags.Undeclared {
		results, err := checkSuites(dispatch.NewDispatcher(lc.scanner, nil), suites)
		if err != nil && !isIncomplete(err) {
			return err
		}
		lc.formatter.PrintCoverage(results)
		return nil
	}

	failed := lastFailures(lc.storage)
	total := 0
	for _, s := range suites {
		total += lc.formatter.PrintFixtureList(s, lc.config.Flags.NameFilter, failed)
	}
	if total == 0 {
		color.Yellow("No fixtures found")
	}
	return nil
}
