package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/hockeygame/internal/store"
)

// StatsRepository handles skater and goalie season rows
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetSkaterSeasons returns a player's skater rows in source order
func (r *StatsRepository) GetSkaterSeasons(ctx context.Context, playerID int) ([]store.SkaterSeason, error) {
	query := `
		SELECT id, player_id, row_index, season, team, league,
			games_played, goals, assists, points, penalty_minutes, plus_minus,
			playoff_gp, playoff_g, playoff_a, playoff_pts, playoff_pim
		FROM skater_seasons
		WHERE player_id = $1
		ORDER BY row_index
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying skater seasons: %w", err)
	}
	defer rows.Close()

	var seasons []store.SkaterSeason
	for rows.Next() {
		var s store.SkaterSeason
		if err := rows.Scan(
			&s.ID, &s.PlayerID, &s.RowIndex, &s.Season, &s.Team, &s.League,
			&s.GamesPlayed, &s.Goals, &s.Assists, &s.Points, &s.PenaltyMinutes, &s.PlusMinus,
			&s.PlayoffGP, &s.PlayoffG, &s.PlayoffA, &s.PlayoffPts, &s.PlayoffPIM,
		); err != nil {
			return nil, fmt.Errorf("scanning skater season: %w", err)
		}
		seasons = append(seasons, s)
	}

	return seasons, rows.Err()
}

// GetGoalieSeasons returns a player's goalie rows in source order
func (r *StatsRepository) GetGoalieSeasons(ctx context.Context, playerID int) ([]store.GoalieSeason, error) {
	query := `
		SELECT id, player_id, row_index, season, team, league,
			games_played, minutes, goals_against, gaa, wins, losses, ties,
			saves, save_percentage, shutouts
		FROM goalie_seasons
		WHERE player_id = $1
		ORDER BY row_index
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying goalie seasons: %w", err)
	}
	defer rows.Close()

	var seasons []store.GoalieSeason
	for rows.Next() {
		var g store.GoalieSeason
		if err := rows.Scan(
			&g.ID, &g.PlayerID, &g.RowIndex, &g.Season, &g.Team, &g.League,
			&g.GamesPlayed, &g.Minutes, &g.GoalsAgainst, &g.GAA, &g.Wins, &g.Losses, &g.Ties,
			&g.Saves, &g.SavePercentage, &g.Shutouts,
		); err != nil {
			return nil, fmt.Errorf("scanning goalie season: %w", err)
		}
		seasons = append(seasons, g)
	}

	return seasons, rows.Err()
}

// GetLeagueTotals sums regular season points per league for one skater
func (r *StatsRepository) GetLeagueTotals(ctx context.Context, playerID int) (map[string]int, error) {
	query := `
		SELECT league, COALESCE(SUM(points), 0)
		FROM skater_seasons
		WHERE player_id = $1
		GROUP BY league
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying league totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var league string
		var points int
		if err := rows.Scan(&league, &points); err != nil {
			return nil, fmt.Errorf("scanning league total: %w", err)
		}
		totals[league] = points
	}

	return totals, rows.Err()
}

func replaceSkaterSeasons(ctx context.Context, q querier, playerID int, seasons []store.SkaterSeason) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM skater_seasons WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clearing skater seasons: %w", err)
	}

	query := `
		INSERT INTO skater_seasons (player_id, row_index, season, team, league,
			games_played, goals, assists, points, penalty_minutes, plus_minus,
			playoff_gp, playoff_g, playoff_a, playoff_pts, playoff_pim)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for _, s := range seasons {
		if _, err := q.ExecContext(ctx, query,
			playerID, s.RowIndex, s.Season, s.Team, s.League,
			s.GamesPlayed, s.Goals, s.Assists, s.Points, s.PenaltyMinutes, s.PlusMinus,
			s.PlayoffGP, s.PlayoffG, s.PlayoffA, s.PlayoffPts, s.PlayoffPIM,
		); err != nil {
			return fmt.Errorf("inserting skater season %s: %w", s.Season, err)
		}
	}
	return nil
}

func replaceGoalieSeasons(ctx context.Context, q querier, playerID int, seasons []store.GoalieSeason) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM goalie_seasons WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clearing goalie seasons: %w", err)
	}

	query := `
		INSERT INTO goalie_seasons (player_id, row_index, season, team, league,
			games_played, minutes, goals_against, gaa, wins, losses, ties,
			saves, save_percentage, shutouts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	for _, g := range seasons {
		if _, err := q.ExecContext(ctx, query,
			playerID, g.RowIndex, g.Season, g.Team, g.League,
			g.GamesPlayed, g.Minutes, g.GoalsAgainst, g.GAA, g.Wins, g.Losses, g.Ties,
			g.Saves, g.SavePercentage, g.Shutouts,
		); err != nil {
			return fmt.Errorf("inserting goalie season %s: %w", g.Season, err)
		}
	}
	return nil
}

var _ querier = (*sql.Tx)(nil)
