package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/fortuna/hockeygame/internal/store"
	"github.com/fortuna/hockeygame/internal/store/repository"
)

const (
	profileTTL = 10 * time.Minute

	// searchPool caps how many players are ranked when the SQL match finds nothing
	searchPool = 1000

	// maxTypoDistance is the largest edit distance a name word may have to still match
	maxTypoDistance = 2

	defaultSearchLimit = 20
)

// ProfileCache stores rendered player profiles
type ProfileCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type playerReader interface {
	GetByID(ctx context.Context, playerID int) (*store.Player, error)
	GetByName(ctx context.Context, name string) ([]*store.Player, error)
	GetByLeague(ctx context.Context, league string, limit, offset int) ([]*store.Player, error)
	GetAll(ctx context.Context, limit, offset int) ([]*store.Player, error)
}

type statsReader interface {
	GetSkaterSeasons(ctx context.Context, playerID int) ([]store.SkaterSeason, error)
	GetGoalieSeasons(ctx context.Context, playerID int) ([]store.GoalieSeason, error)
}

// PlayerService handles player-related business logic
type PlayerService struct {
	playerRepo playerReader
	statsRepo  statsReader
	cache      ProfileCache
}

// NewPlayerService creates a new player service. cache may be nil.
func NewPlayerService(db *store.Database, cache ProfileCache) *PlayerService {
	return &PlayerService{
		playerRepo: repository.NewPlayerRepository(db),
		statsRepo:  repository.NewStatsRepository(db),
		cache:      cache,
	}
}

func profileKey(playerID int) string {
	return fmt.Sprintf("profile:%d", playerID)
}

// GetPlayer retrieves a player by ID with all stat rows
func (s *PlayerService) GetPlayer(ctx context.Context, playerID int) (*store.PlayerProfile, error) {
	if s.cache != nil {
		var cached store.PlayerProfile
		if err := s.cache.GetJSON(ctx, profileKey(playerID), &cached); err == nil && cached.Player != nil {
			return &cached, nil
		}
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching player: %w", err)
	}

	profile := &store.PlayerProfile{Player: player}
	if player.IsGoalie {
		profile.GoalieSeasons, err = s.statsRepo.GetGoalieSeasons(ctx, playerID)
	} else {
		profile.Seasons, err = s.statsRepo.GetSkaterSeasons(ctx, playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching seasons: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, profileKey(playerID), profile, profileTTL); err != nil {
			log.Printf("⚠️  caching profile %d: %v", playerID, err)
		}
	}

	return profile, nil
}

// ListPlayers returns a page of players, optionally restricted to one league
func (s *PlayerService) ListPlayers(ctx context.Context, league string, limit, offset int) ([]*store.Player, error) {
	if league != "" {
		return s.playerRepo.GetByLeague(ctx, strings.ToUpper(league), limit, offset)
	}
	return s.playerRepo.GetAll(ctx, limit, offset)
}

// SearchPlayers finds players by name. Substring matches come first; when there
// are none the whole roster is ranked with fuzzy matching so typos still hit.
func (s *PlayerService) SearchPlayers(ctx context.Context, query string) ([]*store.Player, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}

	players, err := s.playerRepo.GetByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	if len(players) > 0 {
		return RankByName(query, players, defaultSearchLimit), nil
	}

	pool, err := s.playerRepo.GetAll(ctx, searchPool, 0)
	if err != nil {
		return nil, fmt.Errorf("loading players: %w", err)
	}
	return RankByName(query, pool, defaultSearchLimit), nil
}

// Invalidate drops cached profiles after an import
func (s *PlayerService) Invalidate(ctx context.Context, playerIDs ...int) {
	if s.cache == nil || len(playerIDs) == 0 {
		return
	}
	keys := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		keys[i] = profileKey(id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("⚠️  invalidating profiles: %v", err)
	}
}

// RankByName orders players by how well their name matches query. In-order
// character matches rank first by edit distance; names with a word within
// maxTypoDistance edits follow. Everything else is dropped.
func RankByName(query string, players []*store.Player, limit int) []*store.Player {
	q := strings.ToLower(strings.TrimSpace(query))

	type scored struct {
		player *store.Player
		score  int
	}

	var matches []scored
	for _, p := range players {
		name := strings.ToLower(p.Name)

		if fuzzy.MatchNormalizedFold(q, name) {
			matches = append(matches, scored{p, fuzzy.LevenshteinDistance(q, name)})
			continue
		}

		best := -1
		for _, word := range strings.Fields(name) {
			if d := fuzzy.LevenshteinDistance(q, word); d <= maxTypoDistance && (best < 0 || d < best) {
				best = d
			}
		}
		if best >= 0 {
			matches = append(matches, scored{p, 1000 + best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score < matches[j].score
		}
		return matches[i].player.Name < matches[j].player.Name
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*store.Player, len(matches))
	for i, m := range matches {
		out[i] = m.player
	}
	return out
}
