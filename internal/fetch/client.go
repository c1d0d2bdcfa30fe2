package fetch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/metrics"
)

// Closer is implemented by fetchers holding a browser or other scoped
// resource.
type Closer interface {
	Close()
}

// Client composes the static fast path with the headless fetcher. The fast
// path is attempted first when present; the detector promotes to headless
// when the static markup cannot carry the counter.
type Client struct {
	static   Fetcher
	headless Fetcher
	detector *Detector
	logger   *zap.Logger
}

// NewClient wires a fetch client. static and detector may be nil to force
// every fetch through the browser.
func NewClient(static, headless Fetcher, detector *Detector, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		static:   static,
		headless: headless,
		detector: detector,
		logger:   logger,
	}
}

// Fetch returns a usable page snapshot, promoting from the fast path to the
// browser as needed.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if c.static != nil {
		page, err := c.static.Fetch(ctx, rawURL)
		metrics.ObserveFetch(ModeStatic, err)
		switch {
		case err != nil:
			c.logger.Warn("static fetch failed, promoting to headless", zap.Error(err))
		case c.detector != nil && c.detector.NeedsJS(page):
			c.logger.Info("static markup lacks counter markers, promoting to headless",
				zap.Int("bytes", len(page.Body)))
		default:
			c.logger.Debug("static fetch sufficed", zap.Int("bytes", len(page.Body)))
			return page, nil
		}
	}

	if c.headless == nil {
		return Page{}, errors.New("no headless fetcher configured")
	}
	page, err := c.headless.Fetch(ctx, rawURL)
	metrics.ObserveFetch(ModeHeadless, err)
	if err != nil {
		return Page{}, err
	}
	c.logger.Debug("headless fetch completed", zap.Int("bytes", len(page.Body)))
	return page, nil
}

// Close releases any scoped resources held by the underlying fetchers.
func (c *Client) Close() {
	for _, f := range []Fetcher{c.static, c.headless} {
		if closer, ok := f.(Closer); ok {
			closer.Close()
		}
	}
}
