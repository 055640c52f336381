package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
	"github.com/fortuna/hockeygame/internal/store"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const playerColumns = `player_id, player_key, hockeydb_id, name, position,
	birth_date, birth_place, height, weight, shoots, draft_info,
	is_goalie, leagues, created_at, updated_at`

// PlayerRepository handles player data access
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// GetByID finds a player by ID
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int) (*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1`

	player, err := scanPlayer(r.db.DB().QueryRowContext(ctx, query, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}

	return player, nil
}

// GetByHockeyDBID finds a player by HockeyDB page id
func (r *PlayerRepository) GetByHockeyDBID(ctx context.Context, hockeydbID int) (*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE hockeydb_id = $1`

	player, err := scanPlayer(r.db.DB().QueryRowContext(ctx, query, hockeydbID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hockeydb player %d: %w", hockeydbID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}

	return player, nil
}

// GetByName searches for players by name (case-insensitive partial match)
func (r *PlayerRepository) GetByName(ctx context.Context, name string) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + `
		FROM players
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT 50`

	rows, err := r.db.DB().QueryContext(ctx, query, "%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// GetByLeague returns a page of players with at least one season in league
func (r *PlayerRepository) GetByLeague(ctx context.Context, league string, limit, offset int) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + `
		FROM players
		WHERE $1 = ANY(leagues)
		ORDER BY name
		LIMIT $2 OFFSET $3`

	rows, err := r.db.DB().QueryContext(ctx, query, league, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying players by league: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// GetAll returns a page of players ordered by name
func (r *PlayerRepository) GetAll(ctx context.Context, limit, offset int) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + `
		FROM players
		ORDER BY name
		LIMIT $1 OFFSET $2`

	rows, err := r.db.DB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// Upsert inserts or updates a player keyed on name and birth date
func (r *PlayerRepository) Upsert(ctx context.Context, player *store.Player) error {
	return upsertPlayer(ctx, r.db.DB(), player)
}

// Delete removes a player and, by cascade, its stat rows
func (r *PlayerRepository) Delete(ctx context.Context, playerID int) error {
	res, err := r.db.DB().ExecContext(ctx, `DELETE FROM players WHERE player_id = $1`, playerID)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	return nil
}

// SaveParsed stores a parsed player and replaces its stat rows in one transaction.
// It returns the player's database id.
func (r *PlayerRepository) SaveParsed(ctx context.Context, pd hockeydb.PlayerData, hockeydbID int) (int, error) {
	player, skaters, goalies := store.FromParsed(pd, hockeydbID)

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertPlayer(ctx, tx, player); err != nil {
		return 0, err
	}
	if err := replaceSkaterSeasons(ctx, tx, player.PlayerID, skaters); err != nil {
		return 0, err
	}
	if err := replaceGoalieSeasons(ctx, tx, player.PlayerID, goalies); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing player %s: %w", player.Name, err)
	}

	return player.PlayerID, nil
}

func upsertPlayer(ctx context.Context, q querier, player *store.Player) error {
	query := `
		INSERT INTO players (player_key, hockeydb_id, name, position,
			birth_date, birth_place, height, weight, shoots, draft_info,
			is_goalie, leagues)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (player_key) DO UPDATE SET
			hockeydb_id = COALESCE(EXCLUDED.hockeydb_id, players.hockeydb_id),
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			birth_date = EXCLUDED.birth_date,
			birth_place = EXCLUDED.birth_place,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			shoots = EXCLUDED.shoots,
			draft_info = EXCLUDED.draft_info,
			is_goalie = EXCLUDED.is_goalie,
			leagues = EXCLUDED.leagues,
			updated_at = NOW()
		RETURNING player_id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		player.PlayerKey, player.HockeyDBID, player.Name, player.Position,
		player.BirthDate, player.BirthPlace, player.Height, player.Weight, player.Shoots, player.DraftInfo,
		player.IsGoalie, player.Leagues,
	).Scan(&player.PlayerID, &player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upserting player: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*store.Player, error) {
	player := &store.Player{}
	err := row.Scan(
		&player.PlayerID, &player.PlayerKey, &player.HockeyDBID, &player.Name, &player.Position,
		&player.BirthDate, &player.BirthPlace, &player.Height, &player.Weight, &player.Shoots, &player.DraftInfo,
		&player.IsGoalie, &player.Leagues, &player.CreatedAt, &player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return player, nil
}

// scanPlayers is a helper to scan multiple player rows
func scanPlayers(rows *sql.Rows) ([]*store.Player, error) {
	var players []*store.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}
