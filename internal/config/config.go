// Package config loads and validates monitor configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all monitor configuration knobs loaded via Viper.
type Config struct {
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	State    StateConfig    `mapstructure:"state"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MonitorConfig identifies the watched listing page.
type MonitorConfig struct {
	URL string `mapstructure:"url"`
}

// TelegramConfig carries the bot credentials and POST timeout.
type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	ChatID         string `mapstructure:"chat_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StateConfig locates the JSON state file. No locking is done around it: the
// external scheduler's cadence is assumed wide enough that runs never
// overlap.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// FetchConfig governs page acquisition.
type FetchConfig struct {
	FastPathEnabled    bool   `mapstructure:"fast_path_enabled"`
	MinHTMLBytes       int    `mapstructure:"min_html_bytes"`
	UserAgent          string `mapstructure:"user_agent"`
	RequestTimeoutSec  int    `mapstructure:"request_timeout_seconds"`
	NavTimeoutSec      int    `mapstructure:"nav_timeout_seconds"`
	CounterWaitSec     int    `mapstructure:"counter_wait_seconds"`
	SettleMilliseconds int    `mapstructure:"settle_ms"`
}

// MetricsConfig configures the optional Pushgateway delivery.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YAD2WATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("state.path", "yad2_data.json")
	v.SetDefault("telegram.timeout_seconds", 10)
	v.SetDefault("fetch.fast_path_enabled", true)
	v.SetDefault("fetch.min_html_bytes", 2048)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("fetch.request_timeout_seconds", 15)
	v.SetDefault("fetch.nav_timeout_seconds", 45)
	v.SetDefault("fetch.counter_wait_seconds", 20)
	v.SetDefault("fetch.settle_ms", 500)
	v.SetDefault("metrics.job", "yad2watch")
	v.SetDefault("logging.development", true)
}

// bindLegacyEnv keeps the original cron deployments working: the monitor
// predates the YAD2WATCH_* scheme and was configured through bare
// environment variables.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"monitor.url":        {"YAD2WATCH_MONITOR_URL", "CAR_LISTING_URL"},
		"telegram.bot_token": {"YAD2WATCH_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN"},
		"telegram.chat_id":   {"YAD2WATCH_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID"},
		"state.path":         {"YAD2WATCH_STATE_PATH", "STORAGE_FILE"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Monitor.URL == "" {
		return fmt.Errorf("monitor.url must be set")
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token must be set")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id must be set")
	}
	if c.Telegram.TimeoutSeconds <= 0 {
		return fmt.Errorf("telegram.timeout_seconds must be > 0")
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path must be set")
	}
	if c.Fetch.MinHTMLBytes < 0 {
		return fmt.Errorf("fetch.min_html_bytes must be >= 0")
	}
	if c.Fetch.RequestTimeoutSec <= 0 {
		return fmt.Errorf("fetch.request_timeout_seconds must be > 0")
	}
	if c.Fetch.NavTimeoutSec <= 0 {
		return fmt.Errorf("fetch.nav_timeout_seconds must be > 0")
	}
	if c.Fetch.CounterWaitSec <= 0 {
		return fmt.Errorf("fetch.counter_wait_seconds must be > 0")
	}
	return nil
}

// IsYad2URL reports whether the configured URL points at the marketplace the
// extraction heuristics are tuned for. A mismatch is worth a warning, not an
// error.
func (c Config) IsYad2URL() bool {
	return strings.Contains(c.Monitor.URL, "yad2.co.il")
}

// TelegramTimeout converts the configured timeout into a duration.
func (c Config) TelegramTimeout() time.Duration {
	return time.Duration(c.Telegram.TimeoutSeconds) * time.Second
}

// RequestTimeout is the fast-path HTTP timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Fetch.RequestTimeoutSec) * time.Second
}

// NavTimeout bounds a whole headless navigation.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Fetch.NavTimeoutSec) * time.Second
}

// CounterWait bounds the in-page wait for a counter marker to appear.
func (c Config) CounterWait() time.Duration {
	return time.Duration(c.Fetch.CounterWaitSec) * time.Second
}

// Settle is the post-load pause before the DOM snapshot.
func (c Config) Settle() time.Duration {
	return time.Duration(c.Fetch.SettleMilliseconds) * time.Millisecond
}
