package pipeline

import (
	"context"
	"time"

	"github.com/fortuna/hockeygame/internal/export"
	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
	"github.com/fortuna/hockeygame/internal/publisher"
)

// JobType enumerates where a job reads its players from.
type JobType string

const (
	JobTypeFile   JobType = "file"
	JobTypeText   JobType = "text"
	JobTypeScrape JobType = "scrape"
)

// JobStatus represents the lifecycle state for a job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Type        JobType `json:"type"`
	File        string  `json:"file,omitempty"`
	Text        string  `json:"-"`
	HockeyDBIDs []int   `json:"hockeydb_ids,omitempty"`

	// SaveDir keeps a player_<id>.txt copy of every scraped page
	SaveDir   string `json:"save_dir,omitempty"`
	Store     bool   `json:"store"`
	Upload    bool   `json:"upload"`
	ExportDir string `json:"export_dir,omitempty"`
	DryRun    bool   `json:"dry_run"`
}

// PlayerResult is the outcome for one player of a job
type PlayerResult struct {
	Name       string `json:"name"`
	HockeyDBID int    `json:"hockeydb_id,omitempty"`
	IsGoalie   bool   `json:"is_goalie"`
	StatRows   int    `json:"stat_rows"`
	PlayerID   int    `json:"player_id,omitempty"`
	DirectusID int    `json:"directus_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Summary totals a finished job
type Summary struct {
	Players       int            `json:"players"`
	SeasonRecords int            `json:"season_records"`
	GoalieRecords int            `json:"goalie_records"`
	Stored        int            `json:"stored"`
	Uploaded      int            `json:"uploaded"`
	Failed        int            `json:"failed"`
	Results       []PlayerResult `json:"results"`
	Export        *export.Result `json:"export,omitempty"`
}

// Job is a queued or finished pipeline run.
type Job struct {
	ID              string     `json:"id"`
	Spec            JobSpec    `json:"spec"`
	Status          JobStatus  `json:"status"`
	StatusMessage   string     `json:"status_message"`
	ProgressCurrent int        `json:"progress_current"`
	ProgressTotal   int        `json:"progress_total"`
	LastError       string     `json:"last_error,omitempty"`
	Summary         *Summary   `json:"summary,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Copy returns a shallow copy to prevent external mutation.
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	cpy := *j
	return &cpy
}

// StatusSummary is the active job plus recent history
type StatusSummary struct {
	ActiveJob *Job   `json:"active_job,omitempty"`
	History   []*Job `json:"history"`
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnPlayerStart(label string, index int, total int)
	OnPlayerProcessed(result PlayerResult)
	OnProgress(message string, current int, total int)
	OnJobComplete(summary *Summary)
	OnJobError(err error)
}

// Ingester fetches and parses players by HockeyDB id
type Ingester interface {
	IngestPlayer(ctx context.Context, playerID int) (*hockeydb.PlayerData, string, error)
}

// PlayerStore persists parsed players
type PlayerStore interface {
	SaveParsed(ctx context.Context, pd hockeydb.PlayerData, hockeydbID int) (int, error)
}

// Uploader sends parsed players to the CMS
type Uploader interface {
	UploadPlayerData(ctx context.Context, pd hockeydb.PlayerData) (int, error)
}

// Publisher announces pipeline outcomes
type Publisher interface {
	PublishPlayerParsed(ctx context.Context, event publisher.PlayerParsed) error
	PublishPlayerFailed(ctx context.Context, event publisher.PlayerFailed) error
}
