package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fortuna/hockeygame/internal/export"
	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
	"github.com/fortuna/hockeygame/internal/publisher"
)

var (
	// ErrNoPlayers is returned when a job's input yields no players
	ErrNoPlayers = errors.New("no players parsed")

	// ErrMissingCollaborator is returned when a job asks for a step the runner was not given
	ErrMissingCollaborator = errors.New("pipeline step not configured")
)

// Options wires the runner's collaborators. Any of them may be nil; a job that
// needs a missing one fails up front.
type Options struct {
	Ingester  Ingester
	Store     PlayerStore
	Uploader  Uploader
	Publisher Publisher
	Logger    *log.Logger

	// Export supplies the exporter thresholds; the directory comes from the job
	Export export.Options
}

// Runner executes job specs: parse or scrape, then store, upload and export.
type Runner struct {
	ingester  Ingester
	store     PlayerStore
	uploader  Uploader
	publisher Publisher
	export    export.Options
	logger    *log.Logger
}

// NewRunner constructs a runner
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[pipeline] ", log.LstdFlags)
	}
	return &Runner{
		ingester:  opts.Ingester,
		store:     opts.Store,
		uploader:  opts.Uploader,
		publisher: opts.Publisher,
		export:    opts.Export,
		logger:    logger,
	}
}

// parsedPlayer pairs a parsed player with the page id it came from (0 when unknown)
type parsedPlayer struct {
	data       hockeydb.PlayerData
	hockeydbID int
}

// Run executes the job spec, reporting progress via the Reporter if provided.
// A failing player is recorded in the summary and does not stop the job.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (*Summary, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnJobStart(spec)

	if err := r.check(spec); err != nil {
		reporter.OnJobError(err)
		return nil, err
	}

	summary := &Summary{}

	players, err := r.collect(ctx, spec, summary, reporter)
	if err != nil {
		reporter.OnJobError(err)
		return nil, err
	}
	if len(players) == 0 {
		err := fmt.Errorf("%s job: %w", spec.Type, ErrNoPlayers)
		reporter.OnJobError(err)
		return summary, err
	}

	total := len(players)
	for idx, p := range players {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Players++
		summary.SeasonRecords += len(p.data.Seasons)
		summary.GoalieRecords += len(p.data.GoalieStats)

		result := PlayerResult{
			Name:       p.data.Name,
			HockeyDBID: p.hockeydbID,
			IsGoalie:   p.data.IsGoalie(),
			StatRows:   p.data.StatCount(),
		}

		if !spec.DryRun {
			r.process(ctx, spec, p, &result, summary)
		}

		summary.Results = append(summary.Results, result)
		reporter.OnPlayerProcessed(result)
		reporter.OnProgress(fmt.Sprintf("✓ %s (%d stat rows)", result.Name, result.StatRows), idx+1, total)
	}

	if spec.DryRun {
		reporter.OnProgress("Dry-run mode: no data was written", total, total)
	} else if spec.ExportDir != "" {
		parsed := make([]hockeydb.PlayerData, len(players))
		for i, p := range players {
			parsed[i] = p.data
		}
		opts := r.export
		opts.Dir = spec.ExportDir
		if opts.Logger == nil {
			opts.Logger = r.logger
		}
		res, err := export.NewExporter(opts).Write(parsed)
		if err != nil {
			reporter.OnJobError(err)
			return summary, fmt.Errorf("export: %w", err)
		}
		summary.Export = res
	}

	reporter.OnJobComplete(summary)
	return summary, nil
}

func (r *Runner) check(spec JobSpec) error {
	switch spec.Type {
	case JobTypeFile:
		if spec.File == "" {
			return fmt.Errorf("file job requires a file path")
		}
	case JobTypeText:
	case JobTypeScrape:
		if len(spec.HockeyDBIDs) == 0 {
			return fmt.Errorf("scrape job requires at least one hockeydb id")
		}
		if r.ingester == nil {
			return fmt.Errorf("scrape: %w", ErrMissingCollaborator)
		}
	default:
		return fmt.Errorf("unsupported job type %q", spec.Type)
	}

	if spec.DryRun {
		return nil
	}
	if spec.Store && r.store == nil {
		return fmt.Errorf("store: %w", ErrMissingCollaborator)
	}
	if spec.Upload && r.uploader == nil {
		return fmt.Errorf("upload: %w", ErrMissingCollaborator)
	}
	return nil
}

// collect produces the parsed players of a job. Scrape failures are recorded
// per player; only input-level failures are returned as errors.
func (r *Runner) collect(ctx context.Context, spec JobSpec, summary *Summary, reporter Reporter) ([]parsedPlayer, error) {
	switch spec.Type {
	case JobTypeFile:
		reporter.OnProgress(fmt.Sprintf("Parsing %s", spec.File), 0, 0)
		parsed, err := hockeydb.LoadDataFile(spec.File)
		if err != nil {
			return nil, err
		}
		return wrap(parsed), nil

	case JobTypeText:
		return wrap(hockeydb.ParseMultiplePlayers(spec.Text)), nil
	}

	var players []parsedPlayer
	total := len(spec.HockeyDBIDs)
	for idx, id := range spec.HockeyDBIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reporter.OnPlayerStart(fmt.Sprintf("hockeydb %d", id), idx, total)

		data, text, err := r.ingester.IngestPlayer(ctx, id)
		if err == nil && spec.SaveDir != "" {
			err = savePage(spec.SaveDir, id, text)
		}
		if err != nil {
			r.logger.Printf("⚠️  player %d: %v", id, err)
			summary.Failed++
			result := PlayerResult{HockeyDBID: id, Error: err.Error()}
			summary.Results = append(summary.Results, result)
			reporter.OnPlayerProcessed(result)
			r.publishFailed(ctx, publisher.PlayerFailed{Source: string(spec.Type), HockeyDBID: id, Error: err.Error()})
			continue
		}

		players = append(players, parsedPlayer{data: *data, hockeydbID: id})
	}

	return players, nil
}

// process stores, uploads and announces one player
func (r *Runner) process(ctx context.Context, spec JobSpec, p parsedPlayer, result *PlayerResult, summary *Summary) {
	var failure error

	if spec.Store {
		id, err := r.store.SaveParsed(ctx, p.data, p.hockeydbID)
		if err != nil {
			failure = fmt.Errorf("store: %w", err)
		} else {
			result.PlayerID = id
			summary.Stored++
		}
	}

	if spec.Upload && failure == nil {
		id, err := r.uploader.UploadPlayerData(ctx, p.data)
		if err != nil {
			failure = fmt.Errorf("upload: %w", err)
		} else {
			result.DirectusID = id
			summary.Uploaded++
		}
	}

	if failure != nil {
		r.logger.Printf("⚠️  %s: %v", p.data.Name, failure)
		result.Error = failure.Error()
		summary.Failed++
		r.publishFailed(ctx, publisher.PlayerFailed{
			Source:     string(spec.Type),
			HockeyDBID: p.hockeydbID,
			Name:       p.data.Name,
			Error:      failure.Error(),
		})
		return
	}

	if r.publisher != nil {
		event := publisher.PlayerParsed{
			Source:     string(spec.Type),
			HockeyDBID: p.hockeydbID,
			PlayerID:   result.PlayerID,
			Name:       p.data.Name,
			IsGoalie:   result.IsGoalie,
			StatRows:   result.StatRows,
		}
		if err := r.publisher.PublishPlayerParsed(ctx, event); err != nil {
			r.logger.Printf("⚠️  publish %s: %v", p.data.Name, err)
		}
	}
}

func (r *Runner) publishFailed(ctx context.Context, event publisher.PlayerFailed) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishPlayerFailed(ctx, event); err != nil {
		r.logger.Printf("⚠️  publish failure event: %v", err)
	}
}

// savePage writes the raw text of a scraped page as player_<id>.txt
func savePage(dir string, id int, text string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("player_%d.txt", id))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("saving page: %w", err)
	}
	return nil
}

func wrap(players []hockeydb.PlayerData) []parsedPlayer {
	out := make([]parsedPlayer, len(players))
	for i, pd := range players {
		out[i] = parsedPlayer{data: pd}
	}
	return out
}
