// Package extract pulls the results counter and listing summaries out of a
// rendered Yad2 page. Yad2 ships CSS-module class names with build-hash
// suffixes, so every lookup is an ordered fallback cascade that degrades from
// stable attributes down to raw-text pattern matching.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// CounterSelectors are the CSS selectors for the total-results counter, most
// specific first.
var CounterSelectors = []string{
	"span[data-testid='total-items']",
	"span[class*='totalItems']",
	"span.results-feed_sortAndTotalBox__lFFyS",
	"span[class*='sortAndTotalBox']",
	"span[class*='totalResults']",
	"div[class*='totalBox'] span",
}

// Hebrew phrasings that surround the counter ("נמצאו 123 מודעות" etc.).
var (
	counterSpanKeywords = []string{"נמצאו", "מודעות"}

	// CounterKeywords is the broader keyword set used for the last element
	// scan before falling back to raw markup.
	CounterKeywords = []string{"תוצאות", "מודעות", "נמצאו", "תוצאה"}

	// CounterPattern matches a digit run directly followed by one of the
	// counter keywords in raw markup.
	CounterPattern = regexp.MustCompile(`(\d{1,6})\s*(תוצאות|מודעות|נמצאו|תוצאה)`)

	digitRun = regexp.MustCompile(`\d+`)
)

// Extractor reads monitor signals from a parsed page.
type Extractor struct {
	logger *zap.Logger
}

// New returns an Extractor logging through the supplied logger.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Counter locates the total-results counter in doc, falling back to a raw
// markup scan over raw. The second return is false when no counter could be
// determined; callers treat that as a soft failure.
//
// The first maximal digit run in the matched text is the total: in the
// Hebrew phrasing the count always comes first.
func (e *Extractor) Counter(doc *goquery.Document, raw []byte) (int, bool) {
	text := e.counterText(doc)
	if text != "" {
		if m := digitRun.FindString(text); m != "" {
			total, err := strconv.Atoi(m)
			if err == nil {
				e.logger.Debug("counter extracted", zap.String("text", text), zap.Int("total", total))
				return total, true
			}
		}
	}

	// Broader keyword scan over every element.
	if total, ok := e.scanKeywordElements(doc, CounterKeywords); ok {
		return total, true
	}

	// Last resort: the pattern may live in markup goquery flattened away.
	if m := CounterPattern.FindSubmatch(raw); m != nil {
		total, err := strconv.Atoi(string(m[1]))
		if err == nil {
			e.logger.Debug("counter extracted from raw markup", zap.Int("total", total))
			return total, true
		}
	}

	e.logger.Warn("could not find total results counter")
	return 0, false
}

// counterText runs the selector cascade and, if it comes up empty, the
// keyword span scan. The first located element wins even when its text turns
// out to be useless.
func (e *Extractor) counterText(doc *goquery.Document) string {
	for _, sel := range CounterSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(renderedText(node))
		e.logger.Debug("counter selector matched", zap.String("selector", sel), zap.String("text", text))
		if text != "" {
			return text
		}
		// First located element wins the cascade even when its text is
		// empty; fall through to the span scan instead of trying weaker
		// selectors.
		break
	}

	var found string
	doc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		own := ownText(s)
		if !containsAny(own, counterSpanKeywords) {
			return true
		}
		text := strings.TrimSpace(renderedText(s))
		if !hasDigit(text) {
			return true
		}
		found = text
		return false
	})
	if found != "" {
		e.logger.Debug("counter span scan matched", zap.String("text", found))
	}
	return found
}

func (e *Extractor) scanKeywordElements(doc *goquery.Document, keywords []string) (int, bool) {
	total := 0
	ok := false
	doc.Find("body *").Not(nonRenderedSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		own := ownText(s)
		if !containsAny(own, keywords) {
			return true
		}
		text := strings.TrimSpace(renderedText(s))
		if text == "" {
			return true
		}
		m := digitRun.FindString(text)
		if m == "" {
			return true
		}
		parsed, err := strconv.Atoi(m)
		if err != nil {
			return true
		}
		total = parsed
		ok = true
		return false
	})
	if ok {
		e.logger.Debug("counter extracted from keyword element", zap.Int("total", total))
	}
	return total, ok
}

// nonRenderedSelector matches elements whose text content a browser never
// displays. Yad2 ships large script payloads that contain the counter
// keywords next to unrelated digits, so these subtrees must stay invisible
// to every text-based strategy.
const nonRenderedSelector = "script,style,noscript,template"

var nonRenderedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// ownText collects only the element's direct text nodes, mirroring an XPath
// contains(text(), ...) match: ancestors must not match just because a
// descendant does.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

// renderedText collects the subtree's text the way a browser renders it:
// script, style, noscript and template subtrees contribute nothing.
func renderedText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if nonRenderedTags[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range s.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return b.String()
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hasDigit(text string) bool {
	return strings.ContainsAny(text, "0123456789")
}
