// Package monitor orchestrates a single check run: fetch the page, extract
// the counter, diff against the stored total, notify, persist.
package monitor

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/extract"
	"github.com/yad2watch/yad2watch/internal/fetch"
	"github.com/yad2watch/yad2watch/internal/metrics"
	"github.com/yad2watch/yad2watch/internal/state"
)

// statusEvery controls the periodic "still alive" notification cadence,
// measured in history entries.
const statusEvery = 50

// PageFetcher acquires a page snapshot and owns a scoped browser resource
// that must be released after the run.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Page, error)
	Close()
}

// Notifier delivers a message and reports whether it was accepted.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}

// StateStore loads and persists monitor state.
type StateStore interface {
	Load() state.State
	Save(st *state.State, now time.Time)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Monitor ties fetching, extraction, state and notification together.
type Monitor struct {
	url       string
	fetcher   PageFetcher
	extractor *extract.Extractor
	store     StateStore
	notifier  Notifier
	clock     Clock
	logger    *zap.Logger
}

// New assembles a Monitor. All collaborators are required.
func New(url string, fetcher PageFetcher, extractor *extract.Extractor, store StateStore, notifier Notifier, clock Clock, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		url:       url,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
	}
}

// Run performs one complete check. The browser session is released on every
// exit path. Hard failures are reported to the chat (best effort) before the
// error is returned; soft failures (unreadable counter, rejected
// notification, state I/O) never abort the run.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.fetcher.Close()

	log := m.logger.With(zap.String("run_id", uuid.NewString()))
	st := m.store.Load()
	log.Info("check started",
		zap.String("url", m.url),
		zap.Int("last_total", st.LastTotal),
		zap.Int("history_len", len(st.History)))

	current, ok, doc, err := m.observe(ctx, log)
	if err != nil {
		metrics.ObserveCheck(metrics.CheckError)
		m.notifier.Send(ctx, formatError(err))
		return err
	}
	if !ok {
		// Counter unreadable: warn the channel, mutate nothing.
		metrics.ObserveCheck(metrics.CheckCounterMissing)
		metrics.ObserveCounterMiss()
		log.Warn("could not determine results count")
		m.notifier.Send(ctx, formatCounterWarning(m.url))
		return nil
	}
	log.Info("current total extracted", zap.Int("total", current))

	if st.LastTotal == 0 {
		m.initialize(ctx, log, &st, current)
		return nil
	}

	diff := current - st.LastTotal
	if diff == 0 {
		m.handleNoChange(ctx, log, st, current)
		return nil
	}

	m.handleChange(ctx, log, &st, current, diff, doc)
	return nil
}

// observe fetches and parses the page and extracts the counter. A false ok
// means "counter not found" (soft failure); errors are hard failures.
func (m *Monitor) observe(ctx context.Context, log *zap.Logger) (int, bool, *goquery.Document, error) {
	page, err := m.fetcher.Fetch(ctx, m.url)
	if err != nil {
		return 0, false, nil, fmt.Errorf("fetch listing page: %w", err)
	}
	log.Debug("page fetched",
		zap.Int("bytes", len(page.Body)),
		zap.Bool("headless", page.UsedHeadless))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return 0, false, nil, fmt.Errorf("parse listing page: %w", err)
	}

	total, ok := m.extractor.Counter(doc, page.Body)
	return total, ok, doc, nil
}

// initialize handles the first run: adopt the current total without diffing.
// A genuine zero-listings page looks identical to an uninitialized state and
// lands here again; that ambiguity is inherited and intentional.
func (m *Monitor) initialize(ctx context.Context, log *zap.Logger, st *state.State, current int) {
	log.Info("first run, initializing state", zap.Int("total", current))
	metrics.ObserveCheck(metrics.CheckFirstRun)

	now := m.clock.Now()
	st.LastTotal = current
	st.History = append(st.History, state.HistoryEntry{
		Timestamp: now.Format(time.RFC3339),
		Total:     current,
	})
	m.store.Save(st, now)
	m.notifier.Send(ctx, formatWelcome(m.url, current))
}

// handleNoChange leaves state untouched and occasionally reassures the
// channel the monitor is alive.
func (m *Monitor) handleNoChange(ctx context.Context, log *zap.Logger, st state.State, current int) {
	log.Info("no change in total listings", zap.Int("total", current))
	metrics.ObserveCheck(metrics.CheckNoChange)

	checks := len(st.History)
	if checks > 0 && checks%statusEvery == 0 {
		m.notifier.Send(ctx, formatStatus(current, checks, m.clock.Now()))
	}
}

// handleChange notifies and persists the new total. The notification result
// is deliberately ignored: a rejected message must not block persistence.
func (m *Monitor) handleChange(ctx context.Context, log *zap.Logger, st *state.State, current, diff int, doc *goquery.Document) {
	log.Info("change detected", zap.Int("diff", diff), zap.Int("total", current))
	metrics.ObserveCheck(metrics.CheckChange)

	var listings []extract.Listing
	if diff > 0 {
		listings = m.extractor.Listings(doc)
		log.Info("extracted new listings", zap.Int("count", len(listings)))
	}

	now := m.clock.Now()
	m.notifier.Send(ctx, formatChange(m.url, current, diff, listings, now))

	st.History = append(st.History, state.HistoryEntry{
		Timestamp: now.Format(time.RFC3339),
		Total:     current,
		Change:    diff,
	})
	if len(st.History) > state.MaxHistory {
		st.History = st.History[len(st.History)-state.MaxHistory:]
	}
	st.LastTotal = current
	m.store.Save(st, now)
}
