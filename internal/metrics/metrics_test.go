package metrics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yad2watch/yad2watch/internal/metrics"
)

func TestInitIsIdempotent(t *testing.T) {
	metrics.Init()
	metrics.Init()
}

func TestObserveHelpers(t *testing.T) {
	// Helpers self-initialize and must not panic however they are called.
	metrics.ObserveCheck(metrics.CheckChange)
	metrics.ObserveCheck(metrics.CheckNoChange)
	metrics.ObserveNotification(true)
	metrics.ObserveNotification(false)
	metrics.ObserveCounterMiss()
	metrics.ObserveFetch("headless", nil)
	metrics.ObserveFetch("static", errors.New("boom"))
}

func TestPushSkippedWhenUnconfigured(t *testing.T) {
	assert.NoError(t, metrics.Push("", "yad2watch"))
}
