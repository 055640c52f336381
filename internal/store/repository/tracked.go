package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/hockeygame/internal/store"
)

// TrackedRepository manages the HockeyDB ids refreshed by the scheduler
type TrackedRepository struct {
	db *store.Database
}

// NewTrackedRepository creates a new tracked player repository
func NewTrackedRepository(db *store.Database) *TrackedRepository {
	return &TrackedRepository{db: db}
}

// Track starts (or resumes) tracking a HockeyDB id
func (r *TrackedRepository) Track(ctx context.Context, hockeydbID int, label string) error {
	query := `
		INSERT INTO tracked_players (hockeydb_id, label, active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (hockeydb_id) DO UPDATE SET
			label = CASE WHEN EXCLUDED.label = '' THEN tracked_players.label ELSE EXCLUDED.label END,
			active = TRUE
	`
	if _, err := r.db.DB().ExecContext(ctx, query, hockeydbID, label); err != nil {
		return fmt.Errorf("tracking player %d: %w", hockeydbID, err)
	}
	return nil
}

// ListActive returns tracked ids, least recently scraped first
func (r *TrackedRepository) ListActive(ctx context.Context) ([]store.TrackedPlayer, error) {
	query := `
		SELECT hockeydb_id, label, active, last_scraped_at, last_error, created_at
		FROM tracked_players
		WHERE active
		ORDER BY last_scraped_at NULLS FIRST, hockeydb_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tracked players: %w", err)
	}
	defer rows.Close()

	var tracked []store.TrackedPlayer
	for rows.Next() {
		var tp store.TrackedPlayer
		if err := rows.Scan(&tp.HockeyDBID, &tp.Label, &tp.Active, &tp.LastScrapedAt, &tp.LastError, &tp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tracked player: %w", err)
		}
		tracked = append(tracked, tp)
	}

	return tracked, rows.Err()
}

// MarkScraped records the outcome of a refresh. A nil scrapeErr clears the last error.
func (r *TrackedRepository) MarkScraped(ctx context.Context, hockeydbID int, scrapeErr error) error {
	var lastError interface{}
	if scrapeErr != nil {
		lastError = scrapeErr.Error()
	}

	query := `
		UPDATE tracked_players
		SET last_scraped_at = NOW(), last_error = $2
		WHERE hockeydb_id = $1
	`
	if _, err := r.db.DB().ExecContext(ctx, query, hockeydbID, lastError); err != nil {
		return fmt.Errorf("marking player %d scraped: %w", hockeydbID, err)
	}
	return nil
}
