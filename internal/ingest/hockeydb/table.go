package hockeydb

import (
	"regexp"
	"strings"
)

var (
	// season labels look like "2008-09"
	seasonLabelPattern = regexp.MustCompile(`^\d{4}-\d{2}`)

	// trophy markers appended to championship team names
	trophyStripper = strings.NewReplacer("🏆", "", "\uFE0F", "")

	// aggregate rows that share the table but are not seasons
	aggregateMarkers = []string{"Totals", "Awards", "Tournaments"}
)

// findTableStart returns the index of the first row after the header matched by
// pattern, or -1 when no header line is present.
func findTableStart(lines []string, pattern *regexp.Regexp) int {
	for i, line := range lines {
		if pattern.MatchString(line) {
			return i + 1
		}
	}
	return -1
}

// skipRow reports whether a trimmed line is blank, a separator, or an aggregate row
func skipRow(line string) bool {
	if line == "" || strings.Contains(line, "---") {
		return true
	}
	for _, marker := range aggregateMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// tokenize splits a table row. Tab-delimited rows keep multi-word cells intact
// and keep blank cells as "" so later columns stay in position; anything else
// falls back to whitespace runs.
func tokenize(line string) []string {
	if !strings.Contains(line, "\t") {
		return strings.Fields(line)
	}

	cells := strings.Split(line, "\t")
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}

// stripTrophies removes trophy markers and surrounding whitespace
func stripTrophies(s string) string {
	return strings.TrimSpace(trophyStripper.Replace(s))
}

// isSeasonLabel reports whether token starts with a YYYY-YY season label
func isSeasonLabel(token string) bool {
	return seasonLabelPattern.MatchString(token)
}

// splitTeamLeague locates the league column with match and returns the team name,
// the league code and the stat tokens that follow it.
func splitTeamLeague(tokens []string, match func(string) bool) (team, league string, stats []string, ok bool) {
	for i := 1; i < len(tokens); i++ {
		if !match(tokens[i]) {
			continue
		}
		var words []string
		for _, tok := range tokens[1:i] {
			if tok != "" {
				words = append(words, tok)
			}
		}
		team = stripTrophies(strings.Join(words, " "))
		league = stripTrophies(tokens[i])
		return team, league, tokens[i+1:], true
	}
	return "", "", nil, false
}

// splitLines normalises line endings and splits text into lines
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// filled counts the non-blank tokens of a row
func filled(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if tok != "" {
			n++
		}
	}
	return n
}
