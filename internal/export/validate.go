package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

var (
	requiredPlayerFields = []string{
		"name", "position", "birth_date", "birth_place",
		"height", "weight", "shoots", "draft_info", "seasons",
	}

	requiredSeasonFields = []string{
		"season", "team", "league", "gp", "g", "a", "pts", "pim",
		"plus_minus", "playoff_gp", "playoff_g", "playoff_a",
		"playoff_pts", "playoff_pim",
	}
)

// Validate checks an export directory: the manifest parses, every listed file
// exists, carries the required fields and fits the size limit. It returns one
// message per problem; an empty slice means the directory is valid.
func Validate(dir string, maxFileSize int64) ([]string, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	raw, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	var problems []string
	for _, entry := range manifest.Players {
		path := filepath.Join(dir, filepath.FromSlash(entry.File))

		info, err := os.Stat(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: file not found at %s", entry.ID, entry.File))
			continue
		}
		if info.Size() > maxFileSize {
			problems = append(problems, fmt.Sprintf("%s: file size %.2fKB exceeds %dKB limit",
				entry.ID, float64(info.Size())/1024, maxFileSize/1024))
		}

		content, err := os.ReadFile(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", entry.ID, err))
			continue
		}
		for _, p := range validatePlayer(content) {
			problems = append(problems, fmt.Sprintf("%s: %s", entry.ID, p))
		}
	}

	return problems, nil
}

func validatePlayer(content []byte) []string {
	var player map[string]json.RawMessage
	if err := json.Unmarshal(content, &player); err != nil {
		return []string{err.Error()}
	}

	var problems []string
	for _, field := range requiredPlayerFields {
		if _, ok := player[field]; !ok {
			problems = append(problems, "missing required field: "+field)
		}
	}

	raw, ok := player["seasons"]
	if !ok {
		return problems
	}
	var seasons []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &seasons); err != nil {
		return append(problems, "seasons must be an array")
	}
	for i, season := range seasons {
		for _, field := range requiredSeasonFields {
			if _, ok := season[field]; !ok {
				problems = append(problems, fmt.Sprintf("season %d: missing required field: %s", i, field))
			}
		}
	}

	return problems
}
