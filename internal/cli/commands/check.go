package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/ui"
)

// CheckCommand verifies that every fixture has a dispatch entry
type CheckCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	formatter *ui.Formatter
}

// NewCheckCommand creates a new CheckCommand
func NewCheckCommand(cfg *config.Config, scanner *discovery.Scanner, formatter *ui.Formatter) *CheckCommand {
	return &CheckCommand{config: cfg, scanner: scanner, formatter: formatter}
}

// Execute runs the command; it fails when any group is incomplete
func (cc *CheckCommand) Execute(cmd *cobra.Command, args []string) error {
	suites, err := loadSuites(cc.config, cc.scanner)
	if err != nil {
		return err
	}
	return cc.check(suites)
}

func (cc *CheckCommand) check(suites []*dispatch.Group) error {
	results, err := checkSuites(dispatch.NewDispatcher(cc.scanner, nil), suites)
	if err != nil && !isIncomplete(err) {
		return err
	}
	if !cc.formatter.PrintCoverage(results) {
		incomplete := 0
		for _, r := range results {
			if !r.Complete() {
				incomplete++
			}
		}
		return fmt.Errorf("%d incomplete group(s)", incomplete)
	}
	return nil
}
