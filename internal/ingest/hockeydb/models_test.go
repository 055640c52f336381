package hockeydb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonRecordKeys(t *testing.T) {
	s := Season{Season: "2008-09", Team: "Tampa Bay Lightning", League: "NHL", GP: 79, G: 23, A: 23, Pts: 46, PIM: 39}

	rec := s.Record()

	assert.Equal(t, 79, rec["games_played"])
	assert.Equal(t, 23, rec["goals"])
	assert.Equal(t, 23, rec["assists"])
	assert.Equal(t, 46, rec["points"])
	assert.Equal(t, 39, rec["penalty_minutes"])
	assert.Nil(t, rec["plus_minus"])
	assert.Contains(t, rec, "playoff_pim")
	assert.NotContains(t, rec, "gp")
	assert.Len(t, rec, 14)

	s.PlusMinus = strPtr("-13")
	assert.Equal(t, "-13", s.Record()["plus_minus"])
}

func TestGoalieRecordKeys(t *testing.T) {
	gs := GoalieStats{Season: "2023-24", GP: 39, GA: 83, GAA: 2.14, SavePct: 0.926, Shutouts: 3}

	rec := gs.Record()

	assert.Equal(t, 39, rec["games_played"])
	assert.Equal(t, 83, rec["goals_against"])
	assert.Equal(t, 0.926, rec["save_percentage"])
	assert.Equal(t, 2.14, rec["gaa"])
	assert.Equal(t, 3, rec["shutouts"])
	assert.Len(t, rec, 13)
}

func TestPlayerRecordKeys(t *testing.T) {
	p := Player{Name: "Steven Stamkos", Position: "Center -- shoots R", Height: strPtr("6.01")}

	rec := p.Record()

	assert.Equal(t, "Steven Stamkos", rec["name"])
	assert.Equal(t, "6.01", rec["height"])
	assert.Nil(t, rec["birth_date"])
	assert.Len(t, rec, 8)
}

func TestPlayerDataJSON(t *testing.T) {
	pd := ParsePlayerData(stamkosPage)

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{"name", "position", "birth_date", "birth_place", "height", "weight", "shoots", "draft_info", "seasons"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "goalie_stats")

	seasons, ok := decoded["seasons"].([]interface{})
	require.True(t, ok)
	first, ok := seasons[0].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"season", "team", "league", "gp", "g", "a", "pts", "pim", "plus_minus", "playoff_gp", "playoff_g", "playoff_a", "playoff_pts", "playoff_pim"} {
		assert.Contains(t, first, key)
	}
	assert.Nil(t, first["plus_minus"])
}
