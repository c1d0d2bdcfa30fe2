// Package notify delivers monitor messages to a Telegram chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/metrics"
)

const defaultBaseURL = "https://api.telegram.org"

// Config carries the Telegram credentials and transport knobs.
type Config struct {
	BotToken string
	ChatID   string
	// BaseURL overrides the API host, used by tests.
	BaseURL string
	Timeout time.Duration
}

// Telegram posts HTML-formatted messages to the Bot API. Send never returns
// an error: every failure degrades to false so a broken notification channel
// cannot abort a monitor run.
type Telegram struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewTelegram builds a notifier from cfg.
func NewTelegram(cfg Config, logger *zap.Logger) *Telegram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telegram{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send posts text to the configured chat and reports whether the API
// accepted it.
func (t *Telegram) Send(ctx context.Context, text string) bool {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                t.cfg.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: false,
	})
	if err != nil {
		t.logger.Warn("failed to encode telegram payload", zap.Error(err))
		metrics.ObserveNotification(false)
		return false
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.cfg.BaseURL, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		t.logger.Warn("failed to build telegram request", zap.Error(err))
		metrics.ObserveNotification(false)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The endpoint URL embeds the bot token; log the error only.
		t.logger.Warn("telegram request failed", zap.Error(err))
		metrics.ObserveNotification(false)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.logger.Warn("telegram rejected message",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		metrics.ObserveNotification(false)
		return false
	}

	t.logger.Info("telegram notification sent")
	metrics.ObserveNotification(true)
	return true
}
