// Package system provides a real clock implementation.
package system

import "time"

// Clock implements monitor.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time. Notification footers show wall-clock
// times to a human reader, so no UTC normalization happens here.
func (Clock) Now() time.Time {
	return time.Now()
}
