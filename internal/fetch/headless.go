package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/extract"
)

// HeadlessConfig controls the chromedp fetcher.
type HeadlessConfig struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// CounterWait bounds the in-page poll for a counter marker after the
	// document body is ready.
	CounterWait time.Duration
	// Settle is a short pause before the DOM snapshot so late hydration can
	// land.
	Settle time.Duration
}

// HeadlessFetcher renders the page with headless Chrome via chromedp. The
// browser profile is tuned for the Israeli marketplace: Hebrew locale,
// images and notification prompts disabled for speed, fixed desktop
// viewport.
type HeadlessFetcher struct {
	cfg         HeadlessConfig
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// NewHeadless creates a headless fetcher backed by chromedp. The browser
// process itself starts lazily on the first Fetch; a failure to start
// surfaces as that Fetch's error.
func NewHeadless(cfg HeadlessConfig, logger *zap.Logger) *HeadlessFetcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.CounterWait <= 0 {
		cfg.CounterWait = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("lang", "he-IL"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("disable-notifications", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &HeadlessFetcher{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

// Close releases the browser allocator. Safe to call more than once.
func (f *HeadlessFetcher) Close() {
	f.allocCancel()
}

// Fetch navigates with a headless browser and returns the rendered DOM.
func (f *HeadlessFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocator)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	var html string
	actions := []chromedp.Action{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "he-IL,he;q=0.9,en;q=0.5",
		}),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitForCounterMarker(f.cfg.CounterWait, f.logger),
		chromedp.Sleep(f.cfg.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return Page{}, fmt.Errorf("chromedp run: %w", err)
	}

	return Page{
		URL:          rawURL,
		Body:         []byte(html),
		UsedHeadless: true,
	}, nil
}

// waitForCounterMarker polls the page for any sign of the results counter.
// A poll timeout is swallowed: the snapshot is taken regardless and the
// extractor decides what can be salvaged.
func waitForCounterMarker(timeout time.Duration, logger *zap.Logger) chromedp.Action {
	js := fmt.Sprintf(`function() {
		if (document.querySelector(%q)) {
			return true;
		}
		var text = document.body ? document.body.innerText : "";
		return /\d{1,6}\s*(תוצאות|מודעות|נמצאו|תוצאה)/.test(text);
	}`, strings.Join(extract.CounterSelectors, ", "))

	return chromedp.ActionFunc(func(ctx context.Context) error {
		err := chromedp.PollFunction(js, nil, chromedp.WithPollingTimeout(timeout)).Do(ctx)
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			logger.Debug("counter marker did not appear before snapshot",
				zap.Duration("wait", timeout))
			return nil
		}
		return err
	})
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
