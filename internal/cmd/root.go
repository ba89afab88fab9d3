package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/getlumos/lumos-action/internal/log"
	"github.com/getlumos/lumos-action/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lumos-action",
	Short: "Detect drift between LUMOS schemas and committed generated code",
	Long: `lumos-action regenerates Rust and TypeScript code from LUMOS schemas and
compares it with the generated code committed to the repository.

Drift is reported, and depending on branch policy and overrides, fails the
build. It is designed to run as a GitHub Actions step but works locally too.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	cfg := log.ConfigFromFlags(level, format, version.Version)
	cfg.Output = cmd.ErrOrStderr()
	log.SetDefaultLogger(log.New(cfg))
	return nil
}

// ExecuteContext runs the root command with ctx available to every subcommand
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
