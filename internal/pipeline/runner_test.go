package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
	"github.com/fortuna/hockeygame/internal/publisher"
)

const twoPlayers = `Steven Stamkos
Center -- shoots R
Born Feb 7 1990 -- Markham, ONT
Season	Team	Lge	GP	G	A	Pts	PIM	+/-
2008-09	Tampa Bay Lightning	NHL	79	23	23	46	39	-13
2009-10	Tampa Bay Lightning	NHL	82	51	44	95	38	-2

Jacob Fowler
Goalie -- catches L
Born Nov 24 2004 -- Melbourne, FL
Season	Team	Lge	GP	A	PIM	Min	GA	EN	SO	GAA	W	L	T	Svs	Pct
2023-24	Boston College	NCAA	39	2	0	2327	83	0	3	2.14	32	6	1	1032	.926
`

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

type fakeIngester struct {
	pages map[int]string
}

func (f *fakeIngester) IngestPlayer(_ context.Context, id int) (*hockeydb.PlayerData, string, error) {
	text, ok := f.pages[id]
	if !ok {
		return nil, "", errors.New("page not found")
	}
	pd := hockeydb.ParsePlayerData(text)
	return &pd, text, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []string
	fail  map[string]bool
}

func (f *fakeStore) SaveParsed(_ context.Context, pd hockeydb.PlayerData, _ int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[pd.Name] {
		return 0, errors.New("constraint violation")
	}
	f.saved = append(f.saved, pd.Name)
	return len(f.saved), nil
}

type fakeUploader struct{ uploaded []string }

func (f *fakeUploader) UploadPlayerData(_ context.Context, pd hockeydb.PlayerData) (int, error) {
	f.uploaded = append(f.uploaded, pd.Name)
	return 100 + len(f.uploaded), nil
}

type fakePublisher struct {
	parsed []publisher.PlayerParsed
	failed []publisher.PlayerFailed
}

func (f *fakePublisher) PublishPlayerParsed(_ context.Context, e publisher.PlayerParsed) error {
	f.parsed = append(f.parsed, e)
	return nil
}

func (f *fakePublisher) PublishPlayerFailed(_ context.Context, e publisher.PlayerFailed) error {
	f.failed = append(f.failed, e)
	return nil
}

type recordingReporter struct {
	mu        sync.Mutex
	started   bool
	processed []PlayerResult
	completed *Summary
	errs      []error
}

func (r *recordingReporter) OnJobStart(JobSpec) { r.started = true }
func (r *recordingReporter) OnPlayerStart(string, int, int) {}
func (r *recordingReporter) OnPlayerProcessed(res PlayerResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, res)
}
func (r *recordingReporter) OnProgress(string, int, int) {}
func (r *recordingReporter) OnJobComplete(s *Summary) { r.completed = s }
func (r *recordingReporter) OnJobError(err error) { r.errs = append(r.errs, err) }

func TestRunTextJob(t *testing.T) {
	store := &fakeStore{}
	uploader := &fakeUploader{}
	pub := &fakePublisher{}
	runner := NewRunner(Options{Store: store, Uploader: uploader, Publisher: pub, Logger: quiet()})
	rep := &recordingReporter{}

	summary, err := runner.Run(context.Background(), JobSpec{Type: JobTypeText, Text: twoPlayers, Store: true, Upload: true}, rep)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Players)
	assert.Equal(t, 2, summary.SeasonRecords)
	assert.Equal(t, 1, summary.GoalieRecords)
	assert.Equal(t, 2, summary.Stored)
	assert.Equal(t, 2, summary.Uploaded)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, []string{"Steven Stamkos", "Jacob Fowler"}, store.saved)
	assert.Len(t, pub.parsed, 2)
	assert.True(t, pub.parsed[1].IsGoalie)
	assert.Equal(t, 101, summary.Results[0].DirectusID)

	assert.True(t, rep.started)
	assert.Same(t, summary, rep.completed)
	assert.Len(t, rep.processed, 2)
}

func TestRunIsolatesPlayerFailures(t *testing.T) {
	store := &fakeStore{fail: map[string]bool{"Steven Stamkos": true}}
	uploader := &fakeUploader{}
	pub := &fakePublisher{}
	runner := NewRunner(Options{Store: store, Uploader: uploader, Publisher: pub, Logger: quiet()})

	summary, err := runner.Run(context.Background(), JobSpec{Type: JobTypeText, Text: twoPlayers, Store: true, Upload: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Stored)
	assert.Equal(t, []string{"Jacob Fowler"}, uploader.uploaded)
	require.Len(t, pub.failed, 1)
	assert.Equal(t, "Steven Stamkos", pub.failed[0].Name)
	assert.Contains(t, summary.Results[0].Error, "store")
}

func TestRunDryRunWritesNothing(t *testing.T) {
	store := &fakeStore{}
	runner := NewRunner(Options{Store: store, Logger: quiet()})

	summary, err := runner.Run(context.Background(), JobSpec{Type: JobTypeText, Text: twoPlayers, Store: true, DryRun: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Players)
	assert.Empty(t, store.saved)
}

func TestRunFileJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_player.txt")
	require.NoError(t, os.WriteFile(path, []byte(twoPlayers), 0o644))

	runner := NewRunner(Options{Logger: quiet()})
	summary, err := runner.Run(context.Background(), JobSpec{Type: JobTypeFile, File: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Players)

	_, err = runner.Run(context.Background(), JobSpec{Type: JobTypeFile, File: path + ".missing"}, nil)
	assert.Error(t, err)
}

func TestRunScrapeJob(t *testing.T) {
	saveDir := t.TempDir()
	ing := &fakeIngester{pages: map[int]string{85115: twoPlayers}}
	pub := &fakePublisher{}
	runner := NewRunner(Options{Ingester: ing, Publisher: pub, Logger: quiet()})

	summary, err := runner.Run(context.Background(), JobSpec{
		Type:        JobTypeScrape,
		HockeyDBIDs: []int{85115, 404},
		SaveDir:     saveDir,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Players)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 404, pub.failed[0].HockeyDBID)
	assert.FileExists(t, filepath.Join(saveDir, "player_85115.txt"))
	assert.NoFileExists(t, filepath.Join(saveDir, "player_404.txt"))
}

func TestRunExport(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(Options{Logger: quiet()})

	summary, err := runner.Run(context.Background(), JobSpec{Type: JobTypeText, Text: twoPlayers, ExportDir: dir}, nil)
	require.NoError(t, err)
	require.NotNil(t, summary.Export)
	assert.Len(t, summary.Export.Manifest.Players, 1)
	assert.FileExists(t, filepath.Join(dir, "manifest.json"))
}

func TestRunRejectsBadSpecs(t *testing.T) {
	runner := NewRunner(Options{Logger: quiet()})
	ctx := context.Background()

	tests := []struct {
		name string
		spec JobSpec
		want error
	}{
		{"store without repository", JobSpec{Type: JobTypeText, Text: twoPlayers, Store: true}, ErrMissingCollaborator},
		{"upload without client", JobSpec{Type: JobTypeText, Text: twoPlayers, Upload: true}, ErrMissingCollaborator},
		{"scrape without ingester", JobSpec{Type: JobTypeScrape, HockeyDBIDs: []int{1}}, ErrMissingCollaborator},
		{"empty text", JobSpec{Type: JobTypeText, Text: "nothing here"}, ErrNoPlayers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(ctx, tt.spec, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := runner.Run(ctx, JobSpec{Type: "bogus"}, nil)
	assert.Error(t, err)
}

func TestServiceRunsQueuedJobs(t *testing.T) {
	rep := &recordingReporter{}
	svc := NewService(NewRunner(Options{Logger: quiet()}), rep, quiet())
	svc.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	}()

	job, err := svc.Enqueue(JobSpec{Type: JobTypeText, Text: twoPlayers})
	require.NoError(t, err)
	assert.Equal(t, JobStatusQueued, job.Status)

	require.Eventually(t, func() bool {
		j, err := svc.Get(job.ID)
		return err == nil && j.Status == JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	done, err := svc.Get(job.ID)
	require.NoError(t, err)
	require.NotNil(t, done.Summary)
	assert.Equal(t, 2, done.Summary.Players)

	status := svc.GetStatus()
	assert.Nil(t, status.ActiveJob)
	require.Len(t, status.History, 1)

	_, err = svc.Get("job-missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.Enqueue(JobSpec{Type: JobTypeScrape, HockeyDBIDs: []int{1}})
	assert.ErrorIs(t, err, ErrMissingCollaborator)
}
