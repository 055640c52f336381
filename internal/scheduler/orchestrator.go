package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/fortuna/hockeygame/internal/pipeline"
	"github.com/fortuna/hockeygame/internal/store"
)

// TrackedSource lists the HockeyDB ids to refresh and records outcomes
type TrackedSource interface {
	ListActive(ctx context.Context) ([]store.TrackedPlayer, error)
	MarkScraped(ctx context.Context, hockeydbID int, scrapeErr error) error
}

// JobRunner executes one pipeline job synchronously
type JobRunner interface {
	Run(ctx context.Context, spec pipeline.JobSpec, reporter pipeline.Reporter) (*pipeline.Summary, error)
}

// Config holds scheduler configuration
type Config struct {
	RefreshHour int           // Default: 4 (4 AM)
	MaxRetries  int           // Default: 3
	RetryDelay  time.Duration // Default: 5s
	Upload      bool          // Push refreshed players to the CMS
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		RefreshHour: 4,
		MaxRetries:  3,
		RetryDelay:  5 * time.Second,
	}
}

// RefreshResult totals one refresh pass
type RefreshResult struct {
	Tracked   int           `json:"tracked"`
	Refreshed int           `json:"refreshed"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Orchestrator re-scrapes tracked players once a day
type Orchestrator struct {
	tracked  TrackedSource
	runner   JobRunner
	reporter pipeline.Reporter
	config   *Config
	logger   *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	job     gocron.Job
	lastRun *RefreshResult
}

// NewOrchestrator creates a new scheduler orchestrator. reporter may be nil.
func NewOrchestrator(tracked TrackedSource, runner JobRunner, reporter pipeline.Reporter, config *Config, logger *log.Logger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[scheduler] ", log.LstdFlags)
	}

	return &Orchestrator{
		tracked:  tracked,
		runner:   runner,
		reporter: reporter,
		config:   config,
		logger:   logger,
	}
}

// Start schedules the daily refresh and blocks until ctx is cancelled or Stop
// is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(o.config.RefreshHour), 0, 0))),
		gocron.NewTask(func() { o.refreshAll(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create daily refresh job: %w", err)
	}

	o.mu.Lock()
	o.cancel = cancel
	o.job = job
	o.mu.Unlock()

	s.Start()
	o.logger.Printf("→ Daily refresh scheduled at %02d:00 (retries: %d, upload: %v)", o.config.RefreshHour, o.config.MaxRetries, o.config.Upload)
	if next, err := job.NextRun(); err == nil {
		o.logger.Printf("  Next refresh: %s (in %v)", next.Format("2006-01-02 15:04:05"), time.Until(next).Round(time.Second))
	}

	<-ctx.Done()

	if err := s.Shutdown(); err != nil {
		o.logger.Printf("⚠️  scheduler shutdown: %v", err)
	}
	o.mu.Lock()
	o.job = nil
	o.mu.Unlock()

	o.logger.Println("→ Daily refresh scheduler stopped")
	return nil
}

func (o *Orchestrator) refreshAll(ctx context.Context) {
	o.logger.Println("═══ Tracked Player Refresh Starting ═══")
	if _, err := o.RunOnce(ctx); err != nil {
		o.logger.Printf("❌ Refresh failed: %v", err)
	}
	o.logger.Println("═══ Tracked Player Refresh Complete ═══")
}

// RunOnce refreshes every active tracked player. A player that keeps failing
// after all retries is recorded and the pass moves on.
func (o *Orchestrator) RunOnce(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()

	players, err := o.tracked.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracked players: %w", err)
	}

	result := &RefreshResult{Tracked: len(players)}
	for _, tp := range players {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		scrapeErr := o.refreshWithRetry(ctx, tp)
		if scrapeErr != nil {
			result.Failed++
			o.logger.Printf("  ⚠️  %s (%d): %v", tp.Label, tp.HockeyDBID, scrapeErr)
		} else {
			result.Refreshed++
		}

		if err := o.tracked.MarkScraped(ctx, tp.HockeyDBID, scrapeErr); err != nil {
			o.logger.Printf("  ⚠️  %v", err)
		}
	}

	result.Duration = time.Since(start)
	o.mu.Lock()
	o.lastRun = result
	o.mu.Unlock()

	o.logger.Printf("✓ Refreshed %d/%d tracked players in %v", result.Refreshed, result.Tracked, result.Duration.Round(time.Second))
	return result, nil
}

// refreshWithRetry scrapes one player with retry logic
func (o *Orchestrator) refreshWithRetry(ctx context.Context, tp store.TrackedPlayer) error {
	spec := pipeline.JobSpec{
		Type:        pipeline.JobTypeScrape,
		HockeyDBIDs: []int{tp.HockeyDBID},
		Store:       true,
		Upload:      o.config.Upload,
	}

	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		err = o.refresh(ctx, spec)
		if err == nil {
			return nil
		}

		if attempt < o.config.MaxRetries {
			o.logger.Printf("  Attempt %d/%d for %d failed: %v; retrying in %v", attempt, o.config.MaxRetries, tp.HockeyDBID, err, o.config.RetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return err
}

func (o *Orchestrator) refresh(ctx context.Context, spec pipeline.JobSpec) error {
	summary, err := o.runner.Run(ctx, spec, o.reporter)
	if summary != nil {
		// a failed scrape leaves no players, so prefer the per-player cause
		for _, res := range summary.Results {
			if res.Error != "" {
				return errors.New(res.Error)
			}
		}
	}
	return err
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"running":      o.job != nil,
		"refresh_hour": o.config.RefreshHour,
		"max_retries":  o.config.MaxRetries,
		"upload":       o.config.Upload,
	}
	if o.job != nil {
		if next, err := o.job.NextRun(); err == nil {
			status["next_run"] = next
		}
	}
	if o.lastRun != nil {
		status["last_run"] = o.lastRun
	}
	return status
}
