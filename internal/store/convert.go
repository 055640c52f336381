package store

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
)

// PlayerKey identifies a player across imports that lack a HockeyDB id
func PlayerKey(name string, birthDate *string) string {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if birthDate != nil {
		key += "|" + strings.ToLower(strings.TrimSpace(*birthDate))
	}
	return key
}

// FromParsed converts a parsed player into store rows. hockeydbID of 0 means unknown.
func FromParsed(pd hockeydb.PlayerData, hockeydbID int) (*Player, []SkaterSeason, []GoalieSeason) {
	player := &Player{
		PlayerKey:  PlayerKey(pd.Name, pd.BirthDate),
		Name:       pd.Name,
		Position:   pd.Position,
		BirthDate:  nullString(pd.BirthDate),
		BirthPlace: nullString(pd.BirthPlace),
		Height:     nullString(pd.Height),
		Weight:     nullString(pd.Weight),
		Shoots:     nullString(pd.Shoots),
		DraftInfo:  nullString(pd.DraftInfo),
		IsGoalie:   pd.IsGoalie(),
	}
	if hockeydbID > 0 {
		player.HockeyDBID = sql.NullInt32{Int32: int32(hockeydbID), Valid: true}
	}

	leagues := map[string]bool{}

	skaters := make([]SkaterSeason, 0, len(pd.Seasons))
	for i, s := range pd.Seasons {
		leagues[s.League] = true
		skaters = append(skaters, SkaterSeason{
			RowIndex:       i,
			Season:         s.Season,
			Team:           s.Team,
			League:         s.League,
			GamesPlayed:    s.GP,
			Goals:          s.G,
			Assists:        s.A,
			Points:         s.Pts,
			PenaltyMinutes: s.PIM,
			PlusMinus:      nullString(s.PlusMinus),
			PlayoffGP:      s.PlayoffGP,
			PlayoffG:       s.PlayoffG,
			PlayoffA:       s.PlayoffA,
			PlayoffPts:     s.PlayoffPts,
			PlayoffPIM:     s.PlayoffPIM,
		})
	}

	goalies := make([]GoalieSeason, 0, len(pd.GoalieStats))
	for i, g := range pd.GoalieStats {
		leagues[g.League] = true
		goalies = append(goalies, GoalieSeason{
			RowIndex:       i,
			Season:         g.Season,
			Team:           g.Team,
			League:         g.League,
			GamesPlayed:    g.GP,
			Minutes:        g.Minutes,
			GoalsAgainst:   g.GA,
			GAA:            g.GAA,
			Wins:           g.Wins,
			Losses:         g.Losses,
			Ties:           g.Ties,
			Saves:          g.Saves,
			SavePercentage: g.SavePct,
			Shutouts:       g.Shutouts,
		})
	}

	player.Leagues = make([]string, 0, len(leagues))
	for league := range leagues {
		player.Leagues = append(player.Leagues, league)
	}
	sort.Strings(player.Leagues)

	return player, skaters, goalies
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
