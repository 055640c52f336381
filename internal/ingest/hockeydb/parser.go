package hockeydb

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// segmentLookback bounds how far above a position line the name line may sit
const segmentLookback = 4

// "Center -- shoots R", "Goalie -- catches L"
var positionLinePattern = regexp.MustCompile(`(Center|Left Wing|Right Wing|Defense|Goalie|Wing)\s+--\s+(shoots|catches)\s+[LR]`)

// Segment is the line range of one player inside a multi-player dump.
// End is exclusive.
type Segment struct {
	Start int
	End   int
	Lines []string
}

// IsGoalie reports whether a player block carries a goalie table
func IsGoalie(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, "GAA") {
			return true
		}
	}
	return false
}

// ParsePlayerData parses a single player block. A block with a GAA column is
// parsed as a goalie, anything else as a skater; never both.
func ParsePlayerData(text string) PlayerData {
	return parseLines(splitLines(strings.TrimSpace(text)))
}

func parseLines(lines []string) PlayerData {
	data := PlayerData{Player: ParsePlayerInfo(lines)}

	if IsGoalie(lines) {
		data.GoalieStats = ParseGoalieStats(lines)
	} else {
		data.Seasons = ParseSeasonStats(lines)
	}

	return data
}

// SegmentPlayers splits a multi-player dump into per-player line ranges using the
// position line ("Center -- shoots R") that follows every player's name.
func SegmentPlayers(text string) []Segment {
	lines := splitLines(strings.TrimSpace(text))

	var starts []int
	for i, line := range lines {
		if !positionLinePattern.MatchString(line) {
			continue
		}

		floor := i - segmentLookback
		if floor < 0 {
			floor = 0
		}
		for j := i - 1; j >= floor; j-- {
			candidate := strings.TrimSpace(lines[j])
			if candidate == "" || strings.HasPrefix(candidate, "[") {
				continue
			}
			if len(starts) == 0 || j > starts[len(starts)-1] {
				starts = append(starts, j)
			}
			break
		}
	}

	segments := make([]Segment, 0, len(starts))
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Lines: lines[start:end],
		})
	}

	return segments
}

// ParseMultiplePlayers parses every player found in a multi-player dump.
// Sections are parsed on at most GOMAXPROCS goroutines and returned in source
// order. A section that yields no name, or blows up while parsing, is dropped
// without affecting the rest.
func ParseMultiplePlayers(text string) []PlayerData {
	return parseSegments(SegmentPlayers(text), runtime.GOMAXPROCS(0))
}

func parseSegments(segments []Segment, workers int) []PlayerData {
	results := make([]*PlayerData, len(segments))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, seg := range segments {
		i, lines := i, seg.Lines
		g.Go(func() error {
			results[i] = parseSection(lines)
			return nil
		})
	}
	g.Wait()

	players := make([]PlayerData, 0, len(results))
	for _, pd := range results {
		if pd != nil {
			players = append(players, *pd)
		}
	}

	return players
}

// parseSection isolates one player section from the others
func parseSection(lines []string) (pd *PlayerData) {
	defer func() {
		if r := recover(); r != nil {
			pd = nil
		}
	}()

	data := parseLines(lines)
	if data.Name == "" || data.Name == UnknownName {
		return nil
	}
	return &data
}

// SplitBlocks splits a dump whose players are separated by three or more blank
// lines. It is an alternative to SegmentPlayers for hand-assembled files.
func SplitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []string
	for _, block := range strings.Split(text, "\n\n\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// ParseBlocks parses every blank-line separated block of a dump
func ParseBlocks(text string) []PlayerData {
	var players []PlayerData
	for _, block := range SplitBlocks(text) {
		if pd := parseSection(splitLines(block)); pd != nil {
			players = append(players, *pd)
		}
	}
	return players
}

// LoadDataFile reads a multi-player dump from disk and parses it
func LoadDataFile(path string) ([]PlayerData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	return ParseMultiplePlayers(string(content)), nil
}
