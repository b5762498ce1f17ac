package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"fxd/internal/cli"
	"fxd/internal/config"
	"fxd/internal/discovery"
	"fxd/internal/domain"
	"fxd/internal/execution"
	"fxd/internal/storage"
	"fxd/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run   *RunCommand
	List  *ListCommand
	Check *CheckCommand
	Fails *FailsCommand
	Watch *WatchCommand
	Init  *InitCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, flags *cli.Flags, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	directiveParser := discovery.NewParser()
	scheduler := execution.NewRoundRobinScheduler()
	resultStorage := storage.NewLazy(cfg)
	formatter := ui.NewFormatter(cfg, filter)
	errorViewer := ui.NewErrorViewer(resultStorage)
	check := NewCheckCommand(cfg, scanner, formatter)

	return &Commands{
		Run:   NewRunCommand(cfg, scanner, filter, directiveParser, scheduler, resultStorage, formatter, errorViewer, logger),
		List:  NewListCommand(cfg, scanner, formatter, resultStorage),
		Check: check,
		Fails: NewFailsCommand(resultStorage, errorViewer),
		Watch: NewWatchCommand(cfg, scanner, check, logger),
		Init:  NewInitCommand(cfg, scanner, flags),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Update config with flags after parsing
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.ApplyFlags(flags.ToConfigFlags())
		return nil
	}
	suiteFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&flags.Manifest, "manifest", "", "Path to the dispatch manifest (default "+config.DefaultManifest+")")
		cmd.Flags().StringVarP(&flags.FixtureRoot, "fixture-root", "r", "", "Fixture root used when no manifest exists (default "+config.DefaultFixtureRoot+")")
		cmd.Flags().StringVarP(&flags.Suite, "suite", "s", "", "Only this suite or nested group, e.g. 'box' or 'box/classes'")
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the decompiler on every declared fixture",
		Long:    "Check that every fixture is declared, then run the decompiler-under-test on each entry and compare its output",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	suiteFlags(runCmd)
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", config.DefaultProcessors, "Number of fixtures to run concurrently")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter fixtures by name pattern (supports wildcards, e.g., '*When.kt' or '*when*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first fixture failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only fixtures that failed in the last run")
	runCmd.Flags().BoolVar(&flags.OpenFails, "open-fails", false, "Open the fails viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List declared fixtures",
		Long:    "Print the suites, nested groups and dispatch entries without running anything",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	suiteFlags(listCmd)
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter fixtures by name pattern (supports wildcards, e.g., '*When.kt' or '*when*')")
	listCmd.Flags().BoolVarP(&flags.Undeclared, "undeclared", "u", false, "List fixtures on disk without a dispatch entry instead")
	rootCmd.AddCommand(listCmd)

	// Check command
	checkCmd := &cobra.Command{
		Use:     "check",
		Short:   "Verify every fixture has a dispatch entry",
		Long:    "Enumerate each group's fixture root and report every undeclared fixture and every entry without a fixture",
		RunE:    c.Check.Execute,
		PreRunE: applyFlags,
	}
	suiteFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)

	// Watch command
	watchCmd := &cobra.Command{
		Use:     "watch",
		Short:   "Re-check completeness whenever fixtures change",
		RunE:    c.Watch.Execute,
		PreRunE: applyFlags,
	}
	suiteFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)

	// Init command
	initCmd := &cobra.Command{
		Use:     "init",
		Short:   "Write a manifest declaring every fixture on disk",
		RunE:    c.Init.Execute,
		PreRunE: applyFlags,
	}
	initCmd.Flags().StringVar(&flags.Manifest, "manifest", "", "Manifest to write (default "+config.DefaultManifest+")")
	initCmd.Flags().StringVarP(&flags.FixtureRoot, "fixture-root", "r", "", "Fixture root to declare (default "+config.DefaultFixtureRoot+")")
	initCmd.Flags().StringVar(&flags.Mode, "mode", string(domain.ModeText), "How outputs are judged: text or box")
	initCmd.Flags().BoolVar(&flags.Force, "force", false, "Overwrite an existing manifest")
	rootCmd.AddCommand(initCmd)

	// Fails command
	failsCmd := &cobra.Command{
		Use:   "fails",
		Short: "View fixture failures interactively",
		Long:  "Display fixture failures from the last run in an interactive viewer",
		RunE:  c.Fails.Execute,
	}
	rootCmd.AddCommand(failsCmd)
}
