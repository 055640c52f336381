package hockeydb

import (
	"regexp"
	"strings"
)

// bioWindow is how many leading lines are searched for biography patterns
const bioWindow = 10

var (
	// "Born Feb 7 1990 -- Markham, ONT [34 yrs. ago]"
	bornPattern = regexp.MustCompile(`Born\s+(.+?)\s+--\s+(.+?)\s*(?:\[|$)`)

	// "Height 6.01 -- Weight 193 [185 cm/88 kg]"
	heightPattern = regexp.MustCompile(`Height\s+([\d.]+)`)
	weightPattern = regexp.MustCompile(`Weight\s+([\d.]+)`)

	// "Center -- shoots R", "Goalie -- catches L"
	handPattern = regexp.MustCompile(`(?i)(?:shoots|catches)\s+([LR])`)
)

// ParsePlayerInfo extracts the biography from the leading lines of a player block.
// It never fails: anything it cannot find stays nil.
func ParsePlayerInfo(lines []string) Player {
	player := Player{
		Name:     UnknownName,
		Position: UnknownName,
	}

	if len(lines) > 0 {
		if name := strings.TrimSpace(lines[0]); name != "" {
			player.Name = name
		}
	}
	if len(lines) > 1 {
		if position := strings.TrimSpace(lines[1]); position != "" {
			player.Position = position
		}
	}

	window := lines
	if len(window) > bioWindow {
		window = window[:bioWindow]
	}

	for i, line := range window {
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(line, "Born"):
			if player.BirthDate != nil {
				continue
			}
			if m := bornPattern.FindStringSubmatch(line); m != nil {
				player.BirthDate = strPtr(strings.TrimSpace(m[1]))
				player.BirthPlace = strPtr(strings.TrimSpace(m[2]))
			}

		case strings.Contains(line, "Height"):
			if player.Height != nil {
				continue
			}
			if m := heightPattern.FindStringSubmatch(line); m != nil {
				player.Height = strPtr(m[1])
			}
			if player.Weight != nil {
				continue
			}
			if m := weightPattern.FindStringSubmatch(line); m != nil {
				player.Weight = strPtr(m[1])
			} else if i+1 < len(window) {
				// weight occasionally wraps onto the following line
				if m := weightPattern.FindStringSubmatch(window[i+1]); m != nil {
					player.Weight = strPtr(m[1])
				}
			}

		case strings.Contains(lower, "shoots") || strings.Contains(lower, "catches"):
			if player.Shoots != nil {
				continue
			}
			if m := handPattern.FindStringSubmatch(line); m != nil {
				player.Shoots = strPtr(strings.ToUpper(m[1]))
			}

		case strings.Contains(line, "NHL Entry Draft") || strings.Contains(line, "Drafted by"):
			if player.DraftInfo == nil {
				player.DraftInfo = strPtr(strings.TrimSpace(line))
			}
		}
	}

	return player
}
