package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/config"
	"github.com/yad2watch/yad2watch/internal/extract"
	"github.com/yad2watch/yad2watch/internal/fetch"
	"github.com/yad2watch/yad2watch/internal/metrics"
	"github.com/yad2watch/yad2watch/internal/monitor"
	"github.com/yad2watch/yad2watch/internal/notify"
	"github.com/yad2watch/yad2watch/internal/state"

	systemclock "github.com/yad2watch/yad2watch/internal/clock/system"
)

// newCheckCmd creates and configures the 'check' subcommand, which performs
// one complete monitor run.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Runs one monitor check",
		Long: `Loads the configured listing page, extracts the total results
counter, compares it against the stored value, notifies the Telegram chat on
change, and persists the new state.`,

		RunE: runCheckCommand,
	}
}

func runCheckCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}

	metrics.Init()

	client, err := buildFetchClient(rt.cfg, rt.logger)
	if err != nil {
		return err
	}

	mon := monitor.New(
		rt.cfg.Monitor.URL,
		client,
		extract.New(rt.logger),
		state.New(rt.cfg.State.Path, rt.logger),
		notify.NewTelegram(notify.Config{
			BotToken: rt.cfg.Telegram.BotToken,
			ChatID:   rt.cfg.Telegram.ChatID,
			Timeout:  rt.cfg.TelegramTimeout(),
		}, rt.logger),
		systemclock.New(),
		rt.logger,
	)

	runErr := mon.Run(cmd.Context())

	if pushErr := metrics.Push(rt.cfg.Metrics.PushgatewayURL, rt.cfg.Metrics.Job); pushErr != nil {
		rt.logger.Warn("failed to push metrics", zap.Error(pushErr))
	}

	if runErr != nil {
		return fmt.Errorf("run check: %w", runErr)
	}
	rt.logger.Info("check finished")
	return nil
}

func buildFetchClient(cfg config.Config, logger *zap.Logger) (*fetch.Client, error) {
	var static fetch.Fetcher
	var detector *fetch.Detector
	if cfg.Fetch.FastPathEnabled {
		sf, err := fetch.NewStatic(fetch.StaticConfig{
			UserAgent:      cfg.Fetch.UserAgent,
			RequestTimeout: cfg.RequestTimeout(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init static fetcher: %w", err)
		}
		static = sf
		detector = fetch.NewDetector(cfg.Fetch.MinHTMLBytes)
	}

	headless := fetch.NewHeadless(fetch.HeadlessConfig{
		UserAgent:         cfg.Fetch.UserAgent,
		NavigationTimeout: cfg.NavTimeout(),
		CounterWait:       cfg.CounterWait(),
		Settle:            cfg.Settle(),
	}, logger)

	return fetch.NewClient(static, headless, detector, logger), nil
}
