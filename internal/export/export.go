package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
)

const (
	// DefaultMinNHLSeasons is the fewest NHL seasons a player needs to be exported
	DefaultMinNHLSeasons = 2

	// DefaultMaxFileSize is the size limit for one player file
	DefaultMaxFileSize = 10 * 1024

	// ManifestVersion is written into manifest.json
	ManifestVersion = "1.0"

	nhlLeague = "NHL"
)

// Options configures an export run
type Options struct {
	Dir           string
	MinNHLSeasons int
	MaxFileSize   int64
	Logger        *log.Logger
}

// ManifestEntry points at one player file
type ManifestEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

// Manifest lists every exported player
type Manifest struct {
	Version string          `json:"version"`
	Players []ManifestEntry `json:"players"`
}

// Skip records why a player was left out
type Skip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result summarises an export run
type Result struct {
	Manifest  Manifest `json:"manifest"`
	Skipped   []Skip   `json:"skipped"`
	Oversized []string `json:"oversized"`
}

// Exporter writes the static player files consumed by the game front end
type Exporter struct {
	opts   Options
	logger *log.Logger
}

// NewExporter creates an exporter, filling defaults
func NewExporter(opts Options) *Exporter {
	if opts.MinNHLSeasons <= 0 {
		opts.MinNHLSeasons = DefaultMinNHLSeasons
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[export] ", log.LstdFlags)
	}
	return &Exporter{opts: opts, logger: logger}
}

// NHLSeasons counts a skater's NHL rows
func NHLSeasons(pd hockeydb.PlayerData) int {
	n := 0
	for _, s := range pd.Seasons {
		if s.League == nhlLeague {
			n++
		}
	}
	return n
}

// Filter keeps skaters with enough NHL seasons for the game
func (e *Exporter) Filter(players []hockeydb.PlayerData) ([]hockeydb.PlayerData, []Skip) {
	var kept []hockeydb.PlayerData
	var skipped []Skip

	for _, pd := range players {
		if pd.IsGoalie() {
			skipped = append(skipped, Skip{Name: pd.Name, Reason: "goalie"})
			continue
		}
		if n := NHLSeasons(pd); n < e.opts.MinNHLSeasons {
			skipped = append(skipped, Skip{Name: pd.Name, Reason: fmt.Sprintf("only %d NHL season(s)", n)})
			continue
		}
		kept = append(kept, pd)
	}

	return kept, skipped
}

// Slug turns a player name into a file-safe id ("Steven Stamkos" -> "steven-stamkos")
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "player"
	}
	return b.String()
}

// Write filters players and writes players.json, manifest.json and one file per
// player under players/.
func (e *Exporter) Write(players []hockeydb.PlayerData) (*Result, error) {
	kept, skipped := e.Filter(players)
	for _, s := range skipped {
		e.logger.Printf("  Skipping %s: %s", s.Name, s.Reason)
	}

	playersDir := filepath.Join(e.opts.Dir, "players")
	if err := os.MkdirAll(playersDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", playersDir, err)
	}

	result := &Result{
		Manifest: Manifest{Version: ManifestVersion, Players: []ManifestEntry{}},
		Skipped:  skipped,
	}

	used := map[string]bool{}
	for _, pd := range kept {
		id := uniqueID(Slug(pd.Name), used)

		rel := filepath.ToSlash(filepath.Join("players", id+".json"))
		size, err := writeJSON(filepath.Join(e.opts.Dir, rel), pd)
		if err != nil {
			return nil, err
		}
		if size > e.opts.MaxFileSize {
			e.logger.Printf("⚠️  %s is %.2fKB, over the %dKB limit", rel, float64(size)/1024, e.opts.MaxFileSize/1024)
			result.Oversized = append(result.Oversized, id)
		}

		result.Manifest.Players = append(result.Manifest.Players, ManifestEntry{ID: id, Name: pd.Name, File: rel})
		e.logger.Printf("  Exported: %s (%d seasons)", pd.Name, len(pd.Seasons))
	}

	if kept == nil {
		kept = []hockeydb.PlayerData{}
	}
	if _, err := writeJSON(filepath.Join(e.opts.Dir, "players.json"), kept); err != nil {
		return nil, err
	}
	if _, err := writeJSON(filepath.Join(e.opts.Dir, "manifest.json"), result.Manifest); err != nil {
		return nil, err
	}

	e.logger.Printf("✓ Exported %d players (%d skipped) to %s", len(kept), len(skipped), e.opts.Dir)
	return result, nil
}

// uniqueID returns base, or base-N with the smallest free N, and marks it used
func uniqueID(base string, used map[string]bool) string {
	id := base
	for n := 2; used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	used[id] = true
	return id
}

func writeJSON(path string, v interface{}) (int64, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return int64(len(data)), nil
}
