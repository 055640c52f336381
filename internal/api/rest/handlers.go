package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
	"github.com/fortuna/hockeygame/internal/pipeline"
	"github.com/fortuna/hockeygame/internal/store"
	"github.com/fortuna/hockeygame/internal/store/repository"
)

const (
	serviceName    = "hockeygame"
	serviceVersion = "1.0.0"

	// maxBodyBytes bounds pasted dumps
	maxBodyBytes = 8 << 20

	defaultPageSize = 50
	maxPageSize     = 500
)

// PlayerFinder serves stored players
type PlayerFinder interface {
	GetPlayer(ctx context.Context, playerID int) (*store.PlayerProfile, error)
	ListPlayers(ctx context.Context, league string, limit, offset int) ([]*store.Player, error)
	SearchPlayers(ctx context.Context, query string) ([]*store.Player, error)
	Invalidate(ctx context.Context, playerIDs ...int)
}

// PlayerSaver persists parsed players
type PlayerSaver interface {
	SaveParsed(ctx context.Context, pd hockeydb.PlayerData, hockeydbID int) (int, error)
}

// JobQueue runs pipeline jobs in the background
type JobQueue interface {
	Enqueue(spec pipeline.JobSpec) (*pipeline.Job, error)
	Get(id string) (*pipeline.Job, error)
	GetStatus() *pipeline.StatusSummary
}

// Tracker manages the players refreshed by the scheduler
type Tracker interface {
	Track(ctx context.Context, hockeydbID int, label string) error
	ListActive(ctx context.Context) ([]store.TrackedPlayer, error)
}

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// Deps holds the collaborators of the handlers. Nil members disable the routes
// that need them (they answer 503).
type Deps struct {
	Players PlayerFinder
	Saver   PlayerSaver
	Jobs    JobQueue
	Tracked Tracker
	Checks  map[string]HealthCheck
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	deps Deps
}

// NewHandler creates a new handler
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.deps.Checks))
	status := http.StatusOK
	for name, check := range h.deps.Checks {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":  state,
		"service": serviceName,
		"version": serviceVersion,
		"checks":  checks,
	})
}

// errBodyTooLarge is returned for dumps over maxBodyBytes
var errBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)

// parseStatus maps a parseRequest error to its HTTP status
func parseStatus(err error) int {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// parseRequest reads a dump from the body and parses it according to the query:
// format=html renders HTML first, mode=single|blocks|segments picks the splitter.
func parseRequest(w http.ResponseWriter, r *http.Request) ([]hockeydb.PlayerData, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("reading body: %w", err)
	}
	text := string(body)

	if r.URL.Query().Get("format") == "html" || strings.HasPrefix(r.Header.Get("Content-Type"), "text/html") {
		if text, err = hockeydb.ExtractText(text); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, errors.New("request body is empty")
	}

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "segments":
		return hockeydb.ParseMultiplePlayers(text), nil
	case "blocks":
		return hockeydb.ParseBlocks(text), nil
	case "single":
		pd := hockeydb.ParsePlayerData(text)
		if pd.Name == hockeydb.UnknownName {
			return nil, nil
		}
		return []hockeydb.PlayerData{pd}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// ParseText handles POST /api/v1/parse. Nothing is stored.
func (h *Handler) ParseText(w http.ResponseWriter, r *http.Request) {
	players, err := parseRequest(w, r)
	if err != nil {
		respondError(w, parseStatus(err), "Failed to parse players", err)
		return
	}
	if players == nil {
		players = []hockeydb.PlayerData{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(players),
		"players": players,
	})
}

type importResult struct {
	Name     string `json:"name"`
	PlayerID int    `json:"player_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ImportText handles POST /api/v1/import: parse, then store every player.
func (h *Handler) ImportText(w http.ResponseWriter, r *http.Request) {
	if h.deps.Saver == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured", nil)
		return
	}

	players, err := parseRequest(w, r)
	if err != nil {
		respondError(w, parseStatus(err), "Failed to parse players", err)
		return
	}

	results := make([]importResult, 0, len(players))
	var stored []int
	for _, pd := range players {
		id, err := h.deps.Saver.SaveParsed(r.Context(), pd, 0)
		if err != nil {
			results = append(results, importResult{Name: pd.Name, Error: err.Error()})
			continue
		}
		stored = append(stored, id)
		results = append(results, importResult{Name: pd.Name, PlayerID: id})
	}

	if h.deps.Players != nil {
		h.deps.Players.Invalidate(r.Context(), stored...)
	}

	status := http.StatusOK
	if len(stored) < len(players) {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, map[string]interface{}{
		"parsed":  len(players),
		"stored":  len(stored),
		"results": results,
	})
}

// ScrapePlayer handles POST /api/v1/scrape/{hockeydbID}
func (h *Handler) ScrapePlayer(w http.ResponseWriter, r *http.Request) {
	if h.deps.Jobs == nil {
		respondError(w, http.StatusServiceUnavailable, "Scraping is not configured", nil)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["hockeydbID"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid HockeyDB ID", err)
		return
	}

	spec := pipeline.JobSpec{
		Type:        pipeline.JobTypeScrape,
		HockeyDBIDs: []int{id},
		Store:       h.deps.Saver != nil,
		DryRun:      r.URL.Query().Get("dry_run") == "true",
	}

	job, err := h.deps.Jobs.Enqueue(spec)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, pipeline.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, "Failed to enqueue scrape job", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{"job": job})
}

// GetJobs handles GET /api/v1/jobs
func (h *Handler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.deps.Jobs == nil {
		respondError(w, http.StatusServiceUnavailable, "Scraping is not configured", nil)
		return
	}
	respondJSON(w, http.StatusOK, h.deps.Jobs.GetStatus())
}

// GetJob handles GET /api/v1/jobs/{jobID}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.deps.Jobs == nil {
		respondError(w, http.StatusServiceUnavailable, "Scraping is not configured", nil)
		return
	}

	job, err := h.deps.Jobs.Get(mux.Vars(r)["jobID"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Job not found", err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// TrackPlayer handles POST /api/v1/tracked/{hockeydbID}?label=
func (h *Handler) TrackPlayer(w http.ResponseWriter, r *http.Request) {
	if h.deps.Tracked == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured", nil)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["hockeydbID"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid HockeyDB ID", err)
		return
	}

	label := r.URL.Query().Get("label")
	if err := h.deps.Tracked.Track(r.Context(), id, label); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to track player", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"hockeydb_id": id,
		"label":       label,
	})
}

// ListTracked handles GET /api/v1/tracked
func (h *Handler) ListTracked(w http.ResponseWriter, r *http.Request) {
	if h.deps.Tracked == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured", nil)
		return
	}

	tracked, err := h.deps.Tracked.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list tracked players", err)
		return
	}
	if tracked == nil {
		tracked = []store.TrackedPlayer{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"tracked": tracked})
}

// GetPlayer returns a player by ID
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	if h.deps.Players == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured", nil)
		return
	}

	playerID, err := strconv.Atoi(mux.Vars(r)["playerID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	player, err := h.deps.Players.GetPlayer(r.Context(), playerID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Player not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch player", err)
		return
	}

	respondJSON(w, http.StatusOK, player)
}

// ListPlayers returns a page of players, optionally filtered by league
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	if h.deps.Players == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured", nil)
		return
	}

	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(q.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	players, err := h.deps.Players.ListPlayers(r.Context(), q.Get("league"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list players", err)
		return
	}
	if players == nil {
		players = []*store.Player{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

// SearchPlayers searches for players by name
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	if h.deps.Players == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured", nil)
		return
	}

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'q'", nil)
		return
	}

	players, err := h.deps.Players.SearchPlayers(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to search players", err)
		return
	}
	if players == nil {
		players = []*store.Player{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
