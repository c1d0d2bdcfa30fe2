package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	maxListings    = 5
	maxDetailRunes = 300
)

var (
	listingSelectors = []string{
		"div[data-testid='feed-item']",
		"div.feed-item_feedItem__Hn7A7",
		"div[class*='feedItem']",
		"article[class*='item']",
		"div.ad-container",
	}

	titleSelectors = []string{"h3", "h4", "[class*='title']", "a[class*='title']"}
	priceSelectors = []string{"[class*='price']", "span[class*='price']", "[data-testid*='price']"}
)

// Listing is a best-effort summary of a single feed item. Fields the page
// did not yield stay empty.
type Listing struct {
	Title   string `json:"title,omitempty"`
	Price   string `json:"price,omitempty"`
	Link    string `json:"link,omitempty"`
	Details string `json:"details,omitempty"`
}

// Listings extracts up to five listing summaries from doc. Extraction never
// fails: any field that cannot be located is simply left empty and an empty
// slice is returned when no container selector matches at all.
func (e *Extractor) Listings(doc *goquery.Document) []Listing {
	var containers *goquery.Selection
	for _, sel := range listingSelectors {
		found := doc.Find(sel)
		if found.Length() > 0 {
			e.logger.Debug("listings located",
				zap.String("selector", sel),
				zap.Int("count", found.Length()))
			containers = found
			break
		}
	}
	if containers == nil {
		return nil
	}

	listings := make([]Listing, 0, maxListings)
	containers.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= maxListings {
			return false
		}
		listings = append(listings, extractListing(item))
		return true
	})
	return listings
}

func extractListing(item *goquery.Selection) Listing {
	var l Listing

	for _, sel := range titleSelectors {
		title := strings.TrimSpace(item.Find(sel).First().Text())
		if title != "" {
			l.Title = title
			break
		}
	}

	for _, sel := range priceSelectors {
		price := strings.TrimSpace(item.Find(sel).First().Text())
		if price != "" && (strings.Contains(price, "₪") || hasDigit(price)) {
			l.Price = price
			break
		}
	}

	if href, ok := item.Find("a").First().Attr("href"); ok && href != "" {
		l.Link = href
	}

	l.Details = truncateRunes(strings.TrimSpace(item.Text()), maxDetailRunes)
	return l
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
