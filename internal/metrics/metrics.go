// Package metrics exposes Prometheus collectors for the monitor.
//
// The process is one-shot, so collectors are not scraped; they are delivered
// by an optional Pushgateway push at the end of a run.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	checksTotal               *prometheus.CounterVec
	notificationsTotal        *prometheus.CounterVec
	counterExtractionFailures prometheus.Counter
	fetchesTotal              *prometheus.CounterVec

	once sync.Once
)

// Check outcomes recorded on checksTotal.
const (
	CheckFirstRun       = "first_run"
	CheckChange         = "change"
	CheckNoChange       = "no_change"
	CheckCounterMissing = "counter_missing"
	CheckError          = "error"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		checksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yad2watch_checks_total",
				Help: "Total number of monitor checks, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yad2watch_notifications_total",
				Help: "Total number of Telegram notifications, labeled by status.",
			},
			[]string{"status"},
		)

		counterExtractionFailures = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "yad2watch_counter_extraction_failures_total",
				Help: "Total runs where the results counter could not be read.",
			},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yad2watch_fetches_total",
				Help: "Total page fetches, labeled by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		)
	})
}

// ObserveCheck increments the check counter for the given outcome.
func ObserveCheck(outcome string) {
	Init()
	checksTotal.WithLabelValues(outcome).Inc()
}

// ObserveNotification increments the notification counter.
func ObserveNotification(sent bool) {
	Init()
	status := "sent"
	if !sent {
		status = "failed"
	}
	notificationsTotal.WithLabelValues(status).Inc()
}

// ObserveCounterMiss increments the extraction failure counter.
func ObserveCounterMiss() {
	Init()
	counterExtractionFailures.Inc()
}

// ObserveFetch increments the fetch counter for the given mode and outcome.
func ObserveFetch(mode string, err error) {
	Init()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	fetchesTotal.WithLabelValues(mode, outcome).Inc()
}

// Push delivers the default registry to a Pushgateway. A blank gateway URL
// disables the push entirely.
func Push(gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	Init()
	return push.New(gatewayURL, job).Gatherer(prometheus.DefaultGatherer).Push()
}
