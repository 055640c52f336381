package hockeydb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages map[int]string
	calls int
}

func (f *fakeFetcher) FetchPlayerText(_ context.Context, playerID int) (string, error) {
	f.calls++
	page, ok := f.pages[playerID]
	if !ok {
		return "", errors.New("not found")
	}
	return page, nil
}

type memoryCache struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func TestIngesterCachesPageText(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]string{85115: stamkosPage}}
	cache := newMemoryCache()
	ing := NewIngester(fetcher, cache, 0)

	data, text, err := ing.IngestPlayer(context.Background(), 85115)
	require.NoError(t, err)
	assert.Equal(t, "Steven Stamkos", data.Name)
	assert.Equal(t, stamkosPage, text)
	assert.Equal(t, DefaultPageTTL, cache.ttls[PageCacheKey(85115)])

	_, _, err = ing.IngestPlayer(context.Background(), 85115)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestIngesterSkipsSiteHeader(t *testing.T) {
	page := "HockeyDB.com\nHome | Players | Teams | Leagues\nSearch\n" + stamkosPage
	fetcher := &fakeFetcher{pages: map[int]string{85115: page}}
	ing := NewIngester(fetcher, nil, 0)

	data, text, err := ing.IngestPlayer(context.Background(), 85115)
	require.NoError(t, err)
	assert.Equal(t, page, text)
	assert.Equal(t, "Steven Stamkos", data.Name)
	assert.Equal(t, "Center -- shoots R", data.Position)
	assert.Len(t, data.Seasons, 4)
}

func TestIngesterRejectsPageWithoutPlayer(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]string{7: "HockeyDB.com\nPlayer not found\nSearch again"}}
	ing := NewIngester(fetcher, nil, 0)

	_, _, err := ing.IngestPlayer(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoPlayer)
}

func TestIngesterWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]string{1: fowlerPage}}
	ing := NewIngester(fetcher, nil, time.Minute)

	data, _, err := ing.IngestPlayer(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, data.IsGoalie())
}

func TestIngesterErrors(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]string{2: "   \n  "}}
	ing := NewIngester(fetcher, nil, 0)

	_, _, err := ing.IngestPlayer(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoPlayer)

	_, _, err = ing.IngestPlayer(context.Background(), 3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "player 3")
}

func TestPageCacheKey(t *testing.T) {
	assert.Equal(t, "hockeydb:page:42", PageCacheKey(42))
}
