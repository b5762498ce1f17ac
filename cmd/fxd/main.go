package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fxd/internal/cli"
	"fxd/internal/cli/commands"
	"fxd/internal/config"
	"fxd/internal/logger"
)

var version = "dev"

func main() {
	// Create initial config with defaults, then the project .env and environment
	cfg := config.New()
	if err := cfg.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.SetByName(cfg.LogLevel)
	log := logger.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	rootCmd := &cobra.Command{
		Use:   "fxd",
		Short: "Fixture-driven decompiler test dispatch",
		Long: `Binds every decompiler test fixture to a declared test case, verifies that no fixture is left
without one, and runs the decompiler-under-test on each fixture comparing its output.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.LogLevel != "" && !logger.SetByName(flags.LogLevel) {
				return fmt.Errorf("unknown log level %q", flags.LogLevel)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error (default "+config.DefaultLogLevel+")")

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, &flags, log)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
