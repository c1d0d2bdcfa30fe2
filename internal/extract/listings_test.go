package extract_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/extract"
)

func TestListingsFullCard(t *testing.T) {
	t.Parallel()

	markup := `<html><body>
		<div data-testid="feed-item">
			<a href="https://www.yad2.co.il/item/abc123"><h3>מאזדה 3 2021</h3></a>
			<span class="feed-item_price__x9">89,000 ₪</span>
			<span>יד ראשונה, 45,000 ק"מ</span>
		</div>
	</body></html>`

	ex := extract.New(zap.NewNop())
	listings := ex.Listings(parseDoc(t, markup))
	require.Len(t, listings, 1)

	got := listings[0]
	assert.Equal(t, "מאזדה 3 2021", got.Title)
	assert.Equal(t, "89,000 ₪", got.Price)
	assert.Equal(t, "https://www.yad2.co.il/item/abc123", got.Link)
	assert.Contains(t, got.Details, "יד ראשונה")
}

func TestListingsMissingFieldsStayEmpty(t *testing.T) {
	t.Parallel()

	markup := `<html><body><div data-testid="feed-item"><p>מודעה ללא שדות</p></div></body></html>`
	ex := extract.New(zap.NewNop())
	listings := ex.Listings(parseDoc(t, markup))
	require.Len(t, listings, 1)

	got := listings[0]
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Price)
	assert.Empty(t, got.Link)
	assert.Equal(t, "מודעה ללא שדות", got.Details)
}

func TestListingsCapAtFive(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&b, `<div class="feed-item_feedItem__q1w2"><h3>רכב %d</h3></div>`, i)
	}
	b.WriteString("</body></html>")

	ex := extract.New(zap.NewNop())
	listings := ex.Listings(parseDoc(t, b.String()))
	require.Len(t, listings, 5)
	assert.Equal(t, "רכב 0", listings[0].Title)
	assert.Equal(t, "רכב 4", listings[4].Title)
}

func TestListingsContainerSelectorOrder(t *testing.T) {
	t.Parallel()

	// Both a testid container and a generic ad container exist; the higher
	// priority selector must win.
	markup := `<html><body>
		<div data-testid="feed-item"><h3>מהפיד</h3></div>
		<div class="ad-container"><h3>מהמאגר הישן</h3></div>
	</body></html>`

	ex := extract.New(zap.NewNop())
	listings := ex.Listings(parseDoc(t, markup))
	require.Len(t, listings, 1)
	assert.Equal(t, "מהפיד", listings[0].Title)
}

func TestListingsPriceNeedsCurrencyOrDigit(t *testing.T) {
	t.Parallel()

	t.Run("currency bearing price accepted", func(t *testing.T) {
		t.Parallel()
		markup := `<html><body>
			<div data-testid="feed-item">
				<span class="price-value">120,000 ₪</span>
			</div>
		</body></html>`

		ex := extract.New(zap.NewNop())
		listings := ex.Listings(parseDoc(t, markup))
		require.Len(t, listings, 1)
		assert.Equal(t, "120,000 ₪", listings[0].Price)
	})

	t.Run("digitless first match leaves price empty", func(t *testing.T) {
		t.Parallel()
		// Only the first element per selector is consulted; a digitless
		// label in front of the real price shadows it.
		markup := `<html><body>
			<div data-testid="feed-item">
				<span class="price-label">מחיר</span>
				<span class="price-value">120,000 ₪</span>
			</div>
		</body></html>`

		ex := extract.New(zap.NewNop())
		listings := ex.Listings(parseDoc(t, markup))
		require.Len(t, listings, 1)
		assert.Empty(t, listings[0].Price)
	})
}

func TestListingsDetailsTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("א", 450)
	markup := `<html><body><div data-testid="feed-item"><p>` + long + `</p></div></body></html>`

	ex := extract.New(zap.NewNop())
	listings := ex.Listings(parseDoc(t, markup))
	require.Len(t, listings, 1)
	assert.Equal(t, 300, len([]rune(listings[0].Details)))
}

func TestListingsNoContainers(t *testing.T) {
	t.Parallel()

	ex := extract.New(zap.NewNop())
	listings := ex.Listings(parseDoc(t, `<html><body><p>ריק</p></body></html>`))
	assert.Empty(t, listings)
}
