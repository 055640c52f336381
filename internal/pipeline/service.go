package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned when too many jobs are waiting
	ErrQueueFull = errors.New("pipeline queue is full")

	// ErrJobNotFound is returned for unknown job ids
	ErrJobNotFound = errors.New("job not found")
)

const defaultQueueSize = 32

// Service queues pipeline jobs and runs them one at a time in the background.
type Service struct {
	runner   *Runner
	reporter Reporter

	mu      sync.RWMutex
	jobs    map[string]*Job
	order   []string
	active  string
	seq     int
	queue   chan string
	history int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewService constructs a Service. reporter, when non-nil, receives the
// callbacks of every job (the websocket hub uses this). Call Start to launch
// the worker.
func NewService(runner *Runner, reporter Reporter, logger *log.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = log.New(log.Writer(), "[pipeline] ", log.LstdFlags)
	}

	return &Service{
		runner:   runner,
		reporter: reporter,
		jobs:     make(map[string]*Job),
		queue:    make(chan string, defaultQueueSize),
		history:  10,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Start launches the background worker loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for the running job to return.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue records a job and hands it to the worker.
func (s *Service) Enqueue(spec JobSpec) (*Job, error) {
	if err := s.runner.check(spec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.seq++
	job := &Job{
		ID:            fmt.Sprintf("job-%d-%d", time.Now().Unix(), s.seq),
		Spec:          spec,
		Status:        JobStatusQueued,
		StatusMessage: "Queued",
		ProgressTotal: len(spec.HockeyDBIDs),
		CreatedAt:     time.Now().UTC(),
	}

	select {
	case s.queue <- job.ID:
	default:
		s.mu.Unlock()
		return nil, ErrQueueFull
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.trimLocked()
	cpy := job.Copy()
	s.mu.Unlock()

	s.logger.Printf("queued %s (%s)", job.ID, spec.Type)
	return cpy, nil
}

// Get returns a copy of one job
func (s *Service) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	return job.Copy(), nil
}

// GetStatus returns the currently running job plus recent history.
func (s *Service) GetStatus() *StatusSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &StatusSummary{History: []*Job{}}
	if job, ok := s.jobs[s.active]; ok {
		summary.ActiveJob = job.Copy()
	}
	for i := len(s.order) - 1; i >= 0; i-- {
		summary.History = append(summary.History, s.jobs[s.order[i]].Copy())
	}
	return summary
}

// trimLocked drops the oldest finished jobs beyond the history limit
func (s *Service) trimLocked() {
	for len(s.order) > s.history {
		oldest := s.jobs[s.order[0]]
		if oldest.Status == JobStatusQueued || oldest.Status == JobStatusRunning {
			return
		}
		delete(s.jobs, oldest.ID)
		s.order = s.order[1:]
	}
}

func (s *Service) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case id := <-s.queue:
			s.executeJob(id)
		}
	}
}

func (s *Service) executeJob(id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	job.Status = JobStatusRunning
	job.StatusMessage = "Starting job..."
	job.StartedAt = &now
	s.active = id
	spec := job.Spec
	s.mu.Unlock()

	reporters := MultiReporter{&jobReporter{svc: s, jobID: id}}
	if s.reporter != nil {
		reporters = append(reporters, s.reporter)
	}

	summary, err := s.runner.Run(s.ctx, spec, reporters)

	s.mu.Lock()
	defer s.mu.Unlock()

	done := time.Now().UTC()
	job.CompletedAt = &done
	job.Summary = summary
	s.active = ""
	if err != nil {
		job.Status = JobStatusFailed
		job.StatusMessage = "Job failed"
		job.LastError = err.Error()
		s.logger.Printf("%s failed: %v", id, err)
		return
	}
	job.Status = JobStatusCompleted
	job.StatusMessage = "Job completed"
	s.logger.Printf("✓ %s completed (%d players, %d failed)", id, summary.Players, summary.Failed)
}

// update applies fn to a job under the lock
func (s *Service) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// jobReporter mirrors runner callbacks into the job record
type jobReporter struct {
	svc   *Service
	jobID string
}

func (r *jobReporter) OnJobStart(spec JobSpec) {
	r.svc.update(r.jobID, func(j *Job) { j.StatusMessage = "Job starting" })
}

func (r *jobReporter) OnPlayerStart(label string, index, total int) {
	r.svc.update(r.jobID, func(j *Job) {
		j.StatusMessage = fmt.Sprintf("Processing %s (%d/%d)", label, index+1, total)
		j.ProgressCurrent = index
		j.ProgressTotal = total
	})
}

func (r *jobReporter) OnPlayerProcessed(PlayerResult) {}

func (r *jobReporter) OnProgress(message string, current, total int) {
	r.svc.update(r.jobID, func(j *Job) {
		j.StatusMessage = message
		if total > 0 {
			j.ProgressCurrent = current
			j.ProgressTotal = total
		}
	})
}

func (r *jobReporter) OnJobComplete(summary *Summary) {
	r.svc.update(r.jobID, func(j *Job) {
		j.ProgressCurrent = j.ProgressTotal
		j.StatusMessage = "Job complete"
	})
}

func (r *jobReporter) OnJobError(err error) {
	r.svc.update(r.jobID, func(j *Job) { j.LastError = err.Error() })
}
