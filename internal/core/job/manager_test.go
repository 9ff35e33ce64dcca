package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"fridge-chef/internal/core/pipeline"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
}

func (f *fakeRunner) Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (*pipeline.Result, error) {
	f.started <- struct{}{}
	progress(pipeline.Progress{State: pipeline.StatePromptBuilt, Percent: 10, Recipe: -1})

	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	progress(pipeline.Progress{State: pipeline.StateComplete, Percent: 100, Recipe: -1})
	return &pipeline.Result{RunID: "run-1", Ingredients: req.Ingredients}, nil
}

func waitStatus(t *testing.T, m *Manager, id string, want Status) Job {
	t.Helper()
	var j Job
	require.Eventually(t, func() bool {
		var err error
		j, err = m.Get(id)
		return err == nil && j.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return j
}

func TestManagerRunsJob(t *testing.T) {
	r := newFakeRunner()
	m := NewManager(r, config.QueueConfig{Workers: 1, MaxSize: 4}, 0)
	defer m.Close()

	j, err := m.Enqueue(pipeline.Request{Ingredients: "egg"})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, j.Status)
	assert.NotEmpty(t, j.ID)

	<-r.started
	events, cancel, err := m.Subscribe(j.ID)
	require.NoError(t, err)
	defer cancel()

	first := <-events
	assert.Equal(t, StatusRunning, first.Status)

	close(r.release)

	var last Event
	for ev := range events {
		last = ev
	}
	assert.Equal(t, StatusSucceeded, last.Status)
	assert.Equal(t, 100, last.Progress.Percent)
	require.NotNil(t, last.Result)
	assert.Equal(t, "egg", last.Result.Ingredients)

	done := waitStatus(t, m, j.ID, StatusSucceeded)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.FinishedAt)
	assert.Equal(t, 1, m.Status().ProcessedCount)
}

func TestManagerQueueFull(t *testing.T) {
	r := newFakeRunner()
	m := NewManager(r, config.QueueConfig{Workers: 1, MaxSize: 1}, 0)
	defer m.Close()

	_, err := m.Enqueue(pipeline.Request{Ingredients: "a"})
	require.NoError(t, err)
	<-r.started

	_, err = m.Enqueue(pipeline.Request{Ingredients: "b"})
	require.NoError(t, err)

	_, err = m.Enqueue(pipeline.Request{Ingredients: "c"})
	assert.ErrorIs(t, err, common.ErrQueueFull)

	status := m.Status()
	assert.Equal(t, 1, status.QueueLength)
	assert.Equal(t, 1, status.MaxQueueSize)
	assert.Equal(t, 2, status.Jobs)

	close(r.release)
}

func TestManagerRunnerError(t *testing.T) {
	r := newFakeRunner()
	r.err = errors.New("boom")
	m := NewManager(r, config.QueueConfig{Workers: 1, MaxSize: 1}, 0)
	defer m.Close()

	j, err := m.Enqueue(pipeline.Request{Ingredients: "egg"})
	require.NoError(t, err)
	close(r.release)

	failed := waitStatus(t, m, j.ID, StatusFailed)
	assert.Equal(t, "boom", failed.Error)
	assert.Nil(t, failed.Result)
}

func TestManagerSubscribeFinishedJob(t *testing.T) {
	r := newFakeRunner()
	close(r.release)
	m := NewManager(r, config.QueueConfig{Workers: 1, MaxSize: 1}, 0)
	defer m.Close()

	j, err := m.Enqueue(pipeline.Request{Ingredients: "egg"})
	require.NoError(t, err)
	waitStatus(t, m, j.ID, StatusSucceeded)

	events, cancel, err := m.Subscribe(j.ID)
	require.NoError(t, err)
	defer cancel()

	ev, ok := <-events
	require.True(t, ok)
	assert.Equal(t, StatusSucceeded, ev.Status)
	_, ok = <-events
	assert.False(t, ok)
}

func TestManagerUnknownJob(t *testing.T) {
	m := NewManager(newFakeRunner(), config.QueueConfig{Workers: 1, MaxSize: 1}, 0)
	defer m.Close()

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, common.ErrJobNotFound)

	_, _, err = m.Subscribe("missing")
	assert.ErrorIs(t, err, common.ErrJobNotFound)
}

func TestManagerCloseCancelsRunningJob(t *testing.T) {
	r := newFakeRunner()
	m := NewManager(r, config.QueueConfig{Workers: 1, MaxSize: 1}, 0)

	j, err := m.Enqueue(pipeline.Request{Ingredients: "egg"})
	require.NoError(t, err)
	<-r.started

	m.Close()

	got, err := m.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "context canceled")

	_, err = m.Enqueue(pipeline.Request{Ingredients: "egg"})
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestManagerJobTimeout(t *testing.T) {
	r := newFakeRunner()
	m := NewManager(r, config.QueueConfig{Workers: 1, MaxSize: 1}, 20*time.Millisecond)
	defer m.Close()

	j, err := m.Enqueue(pipeline.Request{Ingredients: "egg"})
	require.NoError(t, err)

	failed := waitStatus(t, m, j.ID, StatusFailed)
	assert.Contains(t, failed.Error, "deadline exceeded")
}

type chattyRunner struct {
	started chan struct{}
	release chan struct{}
	steps   int
}

func (c *chattyRunner) Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (*pipeline.Result, error) {
	close(c.started)
	<-c.release
	for i := 0; i < c.steps; i++ {
		progress(pipeline.Progress{State: pipeline.StateEnriching, Percent: i, Recipe: i % 7})
	}
	return &pipeline.Result{RunID: "run-chatty", Ingredients: req.Ingredients}, nil
}

func TestManagerSlowSubscriberGetsFinalEvent(t *testing.T) {
	r := &chattyRunner{started: make(chan struct{}), release: make(chan struct{}), steps: subscriberBuffer + 3}
	m := NewManager(r, config.QueueConfig{Workers: 1, MaxSize: 1}, 0)
	defer m.Close()

	j, err := m.Enqueue(pipeline.Request{Ingredients: "egg"})
	require.NoError(t, err)
	<-r.started

	events, cancel, err := m.Subscribe(j.ID)
	require.NoError(t, err)
	defer cancel()

	// 不讀取，讓緩衝塞滿
	close(r.release)
	waitStatus(t, m, j.ID, StatusSucceeded)

	var last Event
	count := 0
	for ev := range events {
		last = ev
		count++
	}
	assert.LessOrEqual(t, count, subscriberBuffer)
	assert.Equal(t, StatusSucceeded, last.Status)
	require.NotNil(t, last.Result)
	assert.Equal(t, "run-chatty", last.Result.RunID)
}
