package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hockeygame/internal/pipeline"
	"github.com/fortuna/hockeygame/internal/store"
)

type fakeTracked struct {
	players []store.TrackedPlayer
	marked  map[int]error
}

func (f *fakeTracked) ListActive(context.Context) ([]store.TrackedPlayer, error) {
	return f.players, nil
}

func (f *fakeTracked) MarkScraped(_ context.Context, id int, err error) error {
	if f.marked == nil {
		f.marked = make(map[int]error)
	}
	f.marked[id] = err
	return nil
}

// fakeRunner fails each id the configured number of times before succeeding
type fakeRunner struct {
	failures map[int]int
	calls    map[int]int
}

func (f *fakeRunner) Run(_ context.Context, spec pipeline.JobSpec, _ pipeline.Reporter) (*pipeline.Summary, error) {
	id := spec.HockeyDBIDs[0]
	f.calls[id]++
	if f.calls[id] <= f.failures[id] {
		return &pipeline.Summary{Results: []pipeline.PlayerResult{{HockeyDBID: id, Error: "store: timeout"}}}, nil
	}
	return &pipeline.Summary{Players: 1, Results: []pipeline.PlayerResult{{HockeyDBID: id}}}, nil
}

func TestRunOnceRetriesAndRecords(t *testing.T) {
	tracked := &fakeTracked{players: []store.TrackedPlayer{
		{HockeyDBID: 1, Label: "Stamkos"},
		{HockeyDBID: 2, Label: "Fowler"},
	}}
	runner := &fakeRunner{
		failures: map[int]int{1: 1, 2: 5},
		calls:    map[int]int{},
	}

	o := NewOrchestrator(tracked, runner, nil, &Config{MaxRetries: 3, RetryDelay: time.Millisecond}, log.New(io.Discard, "", 0))

	res, err := o.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Tracked)
	assert.Equal(t, 1, res.Refreshed)
	assert.Equal(t, 1, res.Failed)

	assert.Equal(t, 2, runner.calls[1])
	assert.Equal(t, 3, runner.calls[2])

	assert.NoError(t, tracked.marked[1])
	assert.EqualError(t, tracked.marked[2], "store: timeout")

	assert.Equal(t, res, o.GetStatus()["last_run"])
}

type errRunner struct{}

func (errRunner) Run(context.Context, pipeline.JobSpec, pipeline.Reporter) (*pipeline.Summary, error) {
	return nil, pipeline.ErrNoPlayers
}

func TestRunOncePropagatesRunnerErrors(t *testing.T) {
	tracked := &fakeTracked{players: []store.TrackedPlayer{{HockeyDBID: 9}}}
	o := NewOrchestrator(tracked, errRunner{}, nil, &Config{MaxRetries: 1}, log.New(io.Discard, "", 0))

	res, err := o.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, errors.Is(tracked.marked[9], pipeline.ErrNoPlayers))
}

func TestStopEndsLoop(t *testing.T) {
	o := NewOrchestrator(&fakeTracked{}, errRunner{}, nil, nil, log.New(io.Discard, "", 0))

	done := make(chan struct{})
	go func() {
		assert.NoError(t, o.Start(context.Background()))
		close(done)
	}()

	require.Eventually(t, func() bool {
		return o.GetStatus()["running"] == true
	}, 2*time.Second, 10*time.Millisecond)
	o.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, false, o.GetStatus()["running"])
}
