package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
)

func strp(s string) *string { return &s }

func TestPlayerKey(t *testing.T) {
	assert.Equal(t, "steven stamkos", PlayerKey("  Steven   Stamkos ", nil))
	assert.Equal(t, "steven stamkos|feb 7 1990", PlayerKey("Steven Stamkos", strp("Feb 7 1990")))
}

func TestFromParsedSkater(t *testing.T) {
	pd := hockeydb.PlayerData{
		Player: hockeydb.Player{Name: "Steven Stamkos", Position: "Center -- shoots R", Shoots: strp("R")},
		Seasons: []hockeydb.Season{
			{Season: "2006-07", Team: "Sarnia Sting", League: "OHL", GP: 63, G: 42, A: 50, Pts: 92, PIM: 56},
			{Season: "2008-09", Team: "Tampa Bay Lightning", League: "NHL", GP: 79, G: 23, A: 23, Pts: 46, PIM: 39, PlusMinus: strp("-13")},
			{Season: "2009-10", Team: "Tampa Bay Lightning", League: "NHL", GP: 82, G: 51, A: 44, Pts: 95, PIM: 38},
		},
	}

	player, skaters, goalies := FromParsed(pd, 85115)

	assert.Equal(t, "steven stamkos", player.PlayerKey)
	assert.True(t, player.HockeyDBID.Valid)
	assert.EqualValues(t, 85115, player.HockeyDBID.Int32)
	assert.False(t, player.IsGoalie)
	assert.Equal(t, []string{"NHL", "OHL"}, []string(player.Leagues))
	assert.True(t, player.Shoots.Valid)
	assert.False(t, player.BirthDate.Valid)

	require.Len(t, skaters, 3)
	assert.Empty(t, goalies)
	assert.Equal(t, 1, skaters[1].RowIndex)
	assert.Equal(t, "-13", skaters[1].PlusMinus.String)
	assert.False(t, skaters[0].PlusMinus.Valid)
	assert.Equal(t, 92, skaters[0].Points)
}

func TestFromParsedGoalie(t *testing.T) {
	pd := hockeydb.PlayerData{
		Player: hockeydb.Player{Name: "Jacob Fowler", Position: "Goalie -- catches L"},
		GoalieStats: []hockeydb.GoalieStats{
			{Season: "2023-24", Team: "Boston College", League: "NCAA", GP: 39, GAA: 2.14, SavePct: 0.926},
		},
	}

	player, skaters, goalies := FromParsed(pd, 0)

	assert.False(t, player.HockeyDBID.Valid)
	assert.True(t, player.IsGoalie)
	assert.Empty(t, skaters)
	require.Len(t, goalies, 1)
	assert.InDelta(t, 0.926, goalies[0].SavePercentage, 1e-9)
	assert.Equal(t, []string{"NCAA"}, []string(player.Leagues))
}
