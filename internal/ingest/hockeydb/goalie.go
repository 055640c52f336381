package hockeydb

import (
	"regexp"
	"strings"
)

// minGoalieTokens is the least number of filled cells a goalie row needs, both
// overall and after the league column
const minGoalieTokens = 10

// Goalie stat columns after the league: GP A PIM Min GA EN SO GAA W L T Svs Pct
const (
	goalieColGP = iota
	goalieColAssists
	goalieColPIM
	goalieColMinutes
	goalieColGA
	goalieColEmptyNet
	goalieColShutouts
	goalieColGAA
	goalieColWins
	goalieColLosses
	goalieColTies
	goalieColSaves
	goalieColSavePct
)

var (
	goalieHeaderPattern = regexp.MustCompile(`(?i)\bMin\b.*\bGA\b.*\bGAA\b`)

	// Letters only. Goalie rows carry many more numeric columns than skater rows.
	goalieLeaguePattern = regexp.MustCompile(`^[A-Z]{2,5}$`)
)

func isGoalieLeague(token string) bool {
	return goalieLeaguePattern.MatchString(stripTrophies(token))
}

// ParseGoalieStats extracts goalie seasons from the lines of one player block.
// It returns nil when the block has no goalie header.
func ParseGoalieStats(lines []string) []GoalieStats {
	start := findTableStart(lines, goalieHeaderPattern)
	if start < 0 {
		return nil
	}

	var stats []GoalieStats
	for _, raw := range lines[start:] {
		row, ok := parseGoalieRow(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		stats = append(stats, row)
	}

	return stats
}

func parseGoalieRow(line string) (row GoalieStats, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			row, ok = GoalieStats{}, false
		}
	}()

	if skipRow(line) {
		return GoalieStats{}, false
	}

	tokens := tokenize(line)
	if filled(tokens) < minGoalieTokens || !isSeasonLabel(tokens[0]) {
		return GoalieStats{}, false
	}

	team, league, cols, found := splitTeamLeague(tokens, isGoalieLeague)
	if !found || filled(cols) < minGoalieTokens {
		return GoalieStats{}, false
	}

	return GoalieStats{
		Season:   tokens[0],
		Team:     team,
		League:   league,
		GP:       CoerceInt(tokenAt(cols, goalieColGP), 0),
		Minutes:  CoerceInt(tokenAt(cols, goalieColMinutes), 0),
		GA:       CoerceInt(tokenAt(cols, goalieColGA), 0),
		Shutouts: CoerceInt(tokenAt(cols, goalieColShutouts), 0),
		GAA:      CoerceFloat(tokenAt(cols, goalieColGAA), 0),
		Wins:     CoerceInt(tokenAt(cols, goalieColWins), 0),
		Losses:   CoerceInt(tokenAt(cols, goalieColLosses), 0),
		Ties:     CoerceInt(tokenAt(cols, goalieColTies), 0),
		Saves:    CoerceInt(tokenAt(cols, goalieColSaves), 0),
		SavePct:  CoerceFloat(tokenAt(cols, goalieColSavePct), 0),
	}, true
}
