package fetch

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"

	"github.com/yad2watch/yad2watch/internal/extract"
)

// Detector inspects a statically fetched body for signals that JS rendering
// is required before extraction can work.
type Detector struct {
	minHTMLBytes int
}

// NewDetector constructs a Detector with the configured threshold.
func NewDetector(minHTMLBytes int) *Detector {
	return &Detector{minHTMLBytes: minHTMLBytes}
}

// NeedsJS reports whether the page must be re-fetched with a browser: the
// body is suspiciously small, or none of the counter markers made it into
// the static markup.
func (d *Detector) NeedsJS(page Page) bool {
	if d == nil {
		return false
	}
	if d.minHTMLBytes > 0 && len(page.Body) < d.minHTMLBytes {
		return true
	}
	if extract.CounterPattern.Match(page.Body) {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return true
	}
	for _, sel := range extract.CounterSelectors {
		if doc.Find(sel).Length() > 0 {
			return false
		}
	}
	return true
}
