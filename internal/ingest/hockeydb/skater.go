package hockeydb

import (
	"regexp"
	"strings"
)

const (
	// season, team, league plus gp/g/a/pts/pim
	minSkaterTokens = 8
	minSkaterStats  = 5
)

var (
	skaterHeaderPattern = regexp.MustCompile(`(?i)\bGP\b.*\bG\b.*\bA\b.*\bPts\b`)

	// Digits and hyphens may follow the first two letters ("OHL", "WJC-20").
	// The goalie table uses a stricter form.
	skaterLeaguePattern = regexp.MustCompile(`^[A-Z]{2,}[A-Z0-9-]*$`)
)

// isSkaterLeague applies the loose league match after dropping hyphens and trophies
func isSkaterLeague(token string) bool {
	cleaned := strings.ReplaceAll(trophyStripper.Replace(token), "-", "")
	return skaterLeaguePattern.MatchString(cleaned)
}

// ParseSeasonStats extracts skater seasons from the lines of one player block.
// Rows that do not look like season rows are skipped; order follows the source.
func ParseSeasonStats(lines []string) []Season {
	start := findTableStart(lines, skaterHeaderPattern)
	if start < 0 {
		start = 0
	}

	var seasons []Season
	for _, raw := range lines[start:] {
		season, ok := parseSeasonRow(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		seasons = append(seasons, season)
	}

	return seasons
}

// parseSeasonRow turns one table line into a Season. Any panic from a malformed
// row is contained here so the rest of the table still parses.
func parseSeasonRow(line string) (season Season, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			season, ok = Season{}, false
		}
	}()

	if skipRow(line) {
		return Season{}, false
	}

	tokens := tokenize(line)
	if filled(tokens) < minSkaterTokens || !isSeasonLabel(tokens[0]) {
		return Season{}, false
	}

	team, league, stats, found := splitTeamLeague(tokens, isSkaterLeague)
	if !found || filled(stats) < minSkaterStats {
		return Season{}, false
	}

	season = Season{
		Season: tokens[0],
		Team:   team,
		League: league,
		GP:     CoerceInt(stats[0], 0),
		G:      CoerceInt(stats[1], 0),
		A:      CoerceInt(stats[2], 0),
		Pts:    CoerceInt(stats[3], 0),
		PIM:    CoerceInt(stats[4], 0),

		PlayoffGP:  CoerceInt(tokenAt(stats, 6), 0),
		PlayoffG:   CoerceInt(tokenAt(stats, 7), 0),
		PlayoffA:   CoerceInt(tokenAt(stats, 8), 0),
		PlayoffPts: CoerceInt(tokenAt(stats, 9), 0),
		PlayoffPIM: CoerceInt(tokenAt(stats, 10), 0),
	}

	if pm := tokenAt(stats, 5); !isPlaceholder(pm) {
		season.PlusMinus = strPtr(pm)
	}

	return season, true
}
