// Package cmd defines and implements the CLI commands for the yad2watch
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/config"
	"github.com/yad2watch/yad2watch/internal/logging"
)

var cfgFile string

// runtimeKeyType is the key for storing the runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime bundles the loaded configuration and logger for subcommands.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yad2watch",
		Short: "Watches a Yad2 listing search for new results.",
		Long: `yad2watch polls a Yad2 search-results page, extracts the total
results counter, and notifies a Telegram chat when the count changes. It is
designed to be invoked by an external scheduler (cron, CI) roughly every 20
minutes; each invocation is one independent check.`,

		// Runs after flags are parsed and before any subcommand: load and
		// validate configuration, build the logger, and stash both in the
		// context for subcommands to use.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if !cfg.IsYad2URL() {
				logger.Warn("configured URL is not a yad2.co.il address; the extraction heuristics are tuned for Yad2",
					zap.String("url", cfg.Monitor.URL))
			}
			ctx := context.WithValue(cmd.Context(), runtimeKey, &runtime{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey).(*runtime); ok && rt != nil {
				rt.logger.Sync() //nolint:errcheck // best-effort flush
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; environment variables suffice)")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
