// Package fetch acquires a rendered snapshot of the listing page. It keeps
// the two-tier shape of a crawler fetch pipeline: a cheap static HTTP fetch
// first, promoted to a headless browser when the markup shows no sign of the
// counter.
package fetch

import "context"

// Fetch modes reported to metrics.
const (
	ModeStatic   = "static"
	ModeHeadless = "headless"
)

// Page is a snapshot of the listing page markup.
type Page struct {
	URL          string
	Body         []byte
	UsedHeadless bool
}

// Fetcher retrieves a page snapshot for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}
