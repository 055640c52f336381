package store

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Player is a parsed HockeyDB player biography
type Player struct {
	PlayerID   int            `json:"player_id" db:"player_id"`
	PlayerKey  string         `json:"-" db:"player_key"`
	HockeyDBID sql.NullInt32  `json:"hockeydb_id,omitempty" db:"hockeydb_id"`
	Name       string         `json:"name" db:"name"`
	Position   string         `json:"position" db:"position"`
	BirthDate  sql.NullString `json:"birth_date,omitempty" db:"birth_date"`
	BirthPlace sql.NullString `json:"birth_place,omitempty" db:"birth_place"`
	Height     sql.NullString `json:"height,omitempty" db:"height"`
	Weight     sql.NullString `json:"weight,omitempty" db:"weight"`
	Shoots     sql.NullString `json:"shoots,omitempty" db:"shoots"`
	DraftInfo  sql.NullString `json:"draft_info,omitempty" db:"draft_info"`
	IsGoalie   bool           `json:"is_goalie" db:"is_goalie"`
	Leagues    pq.StringArray `json:"leagues" db:"leagues"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// SkaterSeason is one stored row of a skater's season table
type SkaterSeason struct {
	ID             int            `json:"id" db:"id"`
	PlayerID       int            `json:"player_id" db:"player_id"`
	RowIndex       int            `json:"row_index" db:"row_index"`
	Season         string         `json:"season" db:"season"`
	Team           string         `json:"team" db:"team"`
	League         string         `json:"league" db:"league"`
	GamesPlayed    int            `json:"games_played" db:"games_played"`
	Goals          int            `json:"goals" db:"goals"`
	Assists        int            `json:"assists" db:"assists"`
	Points         int            `json:"points" db:"points"`
	PenaltyMinutes int            `json:"penalty_minutes" db:"penalty_minutes"`
	PlusMinus      sql.NullString `json:"plus_minus,omitempty" db:"plus_minus"`
	PlayoffGP      int            `json:"playoff_gp" db:"playoff_gp"`
	PlayoffG       int            `json:"playoff_g" db:"playoff_g"`
	PlayoffA       int            `json:"playoff_a" db:"playoff_a"`
	PlayoffPts     int            `json:"playoff_pts" db:"playoff_pts"`
	PlayoffPIM     int            `json:"playoff_pim" db:"playoff_pim"`
}

// GoalieSeason is one stored row of a goalie's season table
type GoalieSeason struct {
	ID             int     `json:"id" db:"id"`
	PlayerID       int     `json:"player_id" db:"player_id"`
	RowIndex       int     `json:"row_index" db:"row_index"`
	Season         string  `json:"season" db:"season"`
	Team           string  `json:"team" db:"team"`
	League         string  `json:"league" db:"league"`
	GamesPlayed    int     `json:"games_played" db:"games_played"`
	Minutes        int     `json:"minutes" db:"minutes"`
	GoalsAgainst   int     `json:"goals_against" db:"goals_against"`
	GAA            float64 `json:"gaa" db:"gaa"`
	Wins           int     `json:"wins" db:"wins"`
	Losses         int     `json:"losses" db:"losses"`
	Ties           int     `json:"ties" db:"ties"`
	Saves          int     `json:"saves" db:"saves"`
	SavePercentage float64 `json:"save_percentage" db:"save_percentage"`
	Shutouts       int     `json:"shutouts" db:"shutouts"`
}

// TrackedPlayer is a HockeyDB id refreshed on a schedule
type TrackedPlayer struct {
	HockeyDBID    int            `json:"hockeydb_id" db:"hockeydb_id"`
	Label         string         `json:"label" db:"label"`
	Active        bool           `json:"active" db:"active"`
	LastScrapedAt sql.NullTime   `json:"last_scraped_at,omitempty" db:"last_scraped_at"`
	LastError     sql.NullString `json:"last_error,omitempty" db:"last_error"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// PlayerProfile is a player with all stored stat rows, used in API responses
type PlayerProfile struct {
	*Player
	Seasons       []SkaterSeason `json:"seasons,omitempty"`
	GoalieSeasons []GoalieSeason `json:"goalie_seasons,omitempty"`
}
