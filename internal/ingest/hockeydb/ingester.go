package hockeydb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultPageTTL is how long a fetched page stays in the cache
const DefaultPageTTL = 24 * time.Hour

// ErrNoPlayer is returned when a fetched page yields no player name
var ErrNoPlayer = errors.New("no player found on page")

// PageFetcher returns the text rendering of a HockeyDB player page
type PageFetcher interface {
	FetchPlayerText(ctx context.Context, playerID int) (string, error)
}

// PageCache stores raw page text between runs
type PageCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Ingester fetches player pages, caches the raw text and parses it
type Ingester struct {
	fetcher PageFetcher
	cache   PageCache
	ttl     time.Duration
}

// NewIngester creates a new HockeyDB ingester. cache may be nil.
func NewIngester(fetcher PageFetcher, cache PageCache, ttl time.Duration) *Ingester {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &Ingester{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
	}
}

// PageCacheKey is the cache key for a player's raw page text
func PageCacheKey(playerID int) string {
	return fmt.Sprintf("hockeydb:page:%d", playerID)
}

// FetchText returns a player's page text, from cache when possible
func (i *Ingester) FetchText(ctx context.Context, playerID int) (string, error) {
	cacheKey := PageCacheKey(playerID)
	if i.cache != nil {
		cached, err := i.cache.Get(ctx, cacheKey)
		if err == nil && cached != "" {
			log.Printf("  Using cached page for player %d", playerID)
			return cached, nil
		}
	}

	text, err := i.fetcher.FetchPlayerText(ctx, playerID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch player %d: %w", playerID, err)
	}

	if i.cache != nil {
		if err := i.cache.Set(ctx, cacheKey, text, i.ttl); err != nil {
			log.Printf("⚠️  Failed to cache page for player %d: %v", playerID, err)
		}
	}

	return text, nil
}

// IngestPlayer fetches and parses one player page
func (i *Ingester) IngestPlayer(ctx context.Context, playerID int) (*PlayerData, string, error) {
	text, err := i.FetchText(ctx, playerID)
	if err != nil {
		return nil, "", err
	}

	// The page text starts with site navigation, so locate the player by its
	// position line instead of trusting the first line.
	players := ParseMultiplePlayers(text)
	if len(players) == 0 {
		return nil, text, fmt.Errorf("player %d: %w", playerID, ErrNoPlayer)
	}
	data := players[0]

	log.Printf("  Parsed %s (%d stat rows)", data.Name, data.StatCount())
	return &data, text, nil
}
