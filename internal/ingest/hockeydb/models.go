package hockeydb

// UnknownName is the placeholder used when a block has no name or position line.
const UnknownName = "Unknown"

// Player holds the biography lines at the top of a HockeyDB player page.
// Optional fields are nil when the source did not carry them.
type Player struct {
	Name       string  `json:"name"`
	Position   string  `json:"position"`
	BirthDate  *string `json:"birth_date"`
	BirthPlace *string `json:"birth_place"`
	Height     *string `json:"height"`
	Weight     *string `json:"weight"`
	Shoots     *string `json:"shoots"`
	DraftInfo  *string `json:"draft_info"`
}

// Season is one row of the regular season / playoffs skater table
type Season struct {
	Season     string  `json:"season"`
	Team       string  `json:"team"`
	League     string  `json:"league"`
	GP         int     `json:"gp"`
	G          int     `json:"g"`
	A          int     `json:"a"`
	Pts        int     `json:"pts"`
	PIM        int     `json:"pim"`
	PlusMinus  *string `json:"plus_minus"`
	PlayoffGP  int     `json:"playoff_gp"`
	PlayoffG   int     `json:"playoff_g"`
	PlayoffA   int     `json:"playoff_a"`
	PlayoffPts int     `json:"playoff_pts"`
	PlayoffPIM int     `json:"playoff_pim"`
}

// GoalieStats is one row of the goalie table
type GoalieStats struct {
	Season   string  `json:"season"`
	Team     string  `json:"team"`
	League   string  `json:"league"`
	GP       int     `json:"gp"`
	Minutes  int     `json:"minutes"`
	GA       int     `json:"ga"`
	GAA      float64 `json:"gaa"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Ties     int     `json:"ties"`
	Saves    int     `json:"saves"`
	SavePct  float64 `json:"save_pct"`
	Shutouts int     `json:"shutouts"`
}

// PlayerData bundles a biography with exactly one kind of stat table.
// Seasons and GoalieStats are never both populated.
type PlayerData struct {
	Player
	Seasons     []Season      `json:"seasons,omitempty"`
	GoalieStats []GoalieStats `json:"goalie_stats,omitempty"`
}

// IsGoalie reports whether the record was parsed from a goalie table.
func (pd PlayerData) IsGoalie() bool {
	return len(pd.GoalieStats) > 0
}

// StatCount returns the number of stat rows regardless of table kind.
func (pd PlayerData) StatCount() int {
	return len(pd.Seasons) + len(pd.GoalieStats)
}

// Record converts the player to the flat mapping the CMS players collection expects.
func (p Player) Record() map[string]interface{} {
	return map[string]interface{}{
		"name":        p.Name,
		"position":    p.Position,
		"birth_date":  optional(p.BirthDate),
		"birth_place": optional(p.BirthPlace),
		"height":      optional(p.Height),
		"weight":      optional(p.Weight),
		"shoots":      optional(p.Shoots),
		"draft_info":  optional(p.DraftInfo),
	}
}

// Record converts the season to the CMS statistics schema. Key names are part of
// that schema and must not change.
func (s Season) Record() map[string]interface{} {
	return map[string]interface{}{
		"season":          s.Season,
		"team":            s.Team,
		"league":          s.League,
		"games_played":    s.GP,
		"goals":           s.G,
		"assists":         s.A,
		"points":          s.Pts,
		"penalty_minutes": s.PIM,
		"plus_minus":      optional(s.PlusMinus),
		"playoff_gp":      s.PlayoffGP,
		"playoff_g":       s.PlayoffG,
		"playoff_a":       s.PlayoffA,
		"playoff_pts":     s.PlayoffPts,
		"playoff_pim":     s.PlayoffPIM,
	}
}

// Record converts the goalie row to the CMS statistics schema.
func (gs GoalieStats) Record() map[string]interface{} {
	return map[string]interface{}{
		"season":          gs.Season,
		"team":            gs.Team,
		"league":          gs.League,
		"games_played":    gs.GP,
		"minutes":         gs.Minutes,
		"goals_against":   gs.GA,
		"gaa":             gs.GAA,
		"wins":            gs.Wins,
		"losses":          gs.Losses,
		"ties":            gs.Ties,
		"saves":           gs.Saves,
		"save_percentage": gs.SavePct,
		"shutouts":        gs.Shutouts,
	}
}

// optional unwraps a nullable string into a JSON-friendly value
func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
