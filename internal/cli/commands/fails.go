package commands

import (
	"github.com/spf13/cobra"

	"fxd/internal/storage"
	"fxd/internal/ui"
)

// FailsCommand handles the fails command
type FailsCommand struct {
	storage storage.Storage
	viewer  ui.Viewer
}

// NewFailsCommand creates a new FailsCommand
func NewFailsCommand(st storage.Storage, viewer ui.Viewer) *FailsCommand {
	return &FailsCommand{
		storage: st,
		viewer:  viewer,
	}
}

// Execute runs the command
func (fc *FailsCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.storage.Load()
	if err != nil {
		return err
	}

	return fc.viewer.View(results)
}
