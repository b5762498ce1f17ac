package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fxd/internal/cli"
	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/domain"
)

// InitCommand writes a manifest declaring every fixture currently on disk
type InitCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
	flags   *cli.Flags
}

// NewInitCommand creates a new InitCommand
func NewInitCommand(cfg *config.Config, scanner *discovery.Scanner, flags *cli.Flags) *InitCommand {
	return &InitCommand{config: cfg, scanner: scanner, flags: flags}
}

// Execute runs the command
func (ic *InitCommand) Execute(cmd *cobra.Command, args []string) error {
	path := ic.config.GetManifestPath()
	if _, err := os.Stat(path); err == nil && !ic.flags.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	mode := domain.Mode(ic.flags.Mode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", ic.flags.Mode)
	}
	suite, err := adHoc(ic.config, ic.scanner, string(mode), dispatch.WithMode(mode))
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(filepath.Dir(path), suite.Root); err == nil {
		suite.Root = rel
	}

	data, err := dispatch.Marshal([]*dispatch.Group{suite})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	color.Green("Wrote %s with %d fixture(s)", path, suite.Size())
	return nil
}
