package fetch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yad2watch/yad2watch/internal/fetch"
)

type stubFetcher struct {
	page   fetch.Page
	err    error
	calls  int
	closed bool
}

func (s *stubFetcher) Fetch(context.Context, string) (fetch.Page, error) {
	s.calls++
	return s.page, s.err
}

func (s *stubFetcher) Close() {
	s.closed = true
}

func renderedBody() []byte {
	return []byte("<html><body><span data-testid=\"total-items\">נמצאו 12 מודעות</span>" +
		strings.Repeat("<!-- pad -->", 20) + "</body></html>")
}

func TestClientFastPathSuffices(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{page: fetch.Page{Body: renderedBody()}}
	headless := &stubFetcher{}
	client := fetch.NewClient(static, headless, fetch.NewDetector(64), zap.NewNop())

	page, err := client.Fetch(context.Background(), "https://www.yad2.co.il/vehicles/cars")
	require.NoError(t, err)
	assert.False(t, page.UsedHeadless)
	assert.Equal(t, 1, static.calls)
	assert.Zero(t, headless.calls)
}

func TestClientPromotesOnEmptyShell(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{page: fetch.Page{Body: []byte("<html><body><div id=\"root\"></div></body></html>")}}
	headless := &stubFetcher{page: fetch.Page{Body: renderedBody(), UsedHeadless: true}}
	client := fetch.NewClient(static, headless, fetch.NewDetector(0), zap.NewNop())

	page, err := client.Fetch(context.Background(), "https://www.yad2.co.il/vehicles/cars")
	require.NoError(t, err)
	assert.True(t, page.UsedHeadless)
	assert.Equal(t, 1, static.calls)
	assert.Equal(t, 1, headless.calls)
}

func TestClientPromotesOnStaticError(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{err: errors.New("connection refused")}
	headless := &stubFetcher{page: fetch.Page{Body: renderedBody(), UsedHeadless: true}}
	client := fetch.NewClient(static, headless, fetch.NewDetector(0), zap.NewNop())

	page, err := client.Fetch(context.Background(), "https://www.yad2.co.il/vehicles/cars")
	require.NoError(t, err)
	assert.True(t, page.UsedHeadless)
}

func TestClientHeadlessOnly(t *testing.T) {
	t.Parallel()

	headless := &stubFetcher{page: fetch.Page{Body: renderedBody(), UsedHeadless: true}}
	client := fetch.NewClient(nil, headless, nil, zap.NewNop())

	page, err := client.Fetch(context.Background(), "https://www.yad2.co.il/vehicles/cars")
	require.NoError(t, err)
	assert.True(t, page.UsedHeadless)
}

func TestClientNoHeadlessConfigured(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{err: errors.New("boom")}
	client := fetch.NewClient(static, nil, nil, zap.NewNop())

	_, err := client.Fetch(context.Background(), "https://www.yad2.co.il/vehicles/cars")
	assert.Error(t, err)
}

func TestClientHeadlessErrorPropagates(t *testing.T) {
	t.Parallel()

	headless := &stubFetcher{err: errors.New("browser failed to start")}
	client := fetch.NewClient(nil, headless, nil, zap.NewNop())

	_, err := client.Fetch(context.Background(), "https://www.yad2.co.il/vehicles/cars")
	assert.Error(t, err)
}

func TestClientCloseReachesFetchers(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{}
	headless := &stubFetcher{}
	client := fetch.NewClient(static, headless, nil, zap.NewNop())
	client.Close()

	assert.True(t, static.closed)
	assert.True(t, headless.closed)
}
