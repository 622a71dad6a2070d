package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string

	mu   sync.Mutex
	runs int
	err  error
	done chan struct{}
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
	if j.done != nil {
		close(j.done)
	}
	return j.err
}

type blockingJob struct {
	name     string
	returned chan struct{}
}

func (j *blockingJob) Name() string     { return j.name }
func (j *blockingJob) Schedule() string { return "@every 1h" }

func (j *blockingJob) Run(ctx context.Context) error {
	<-ctx.Done()
	close(j.returned)
	return ctx.Err()
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:      "test",
		LogLevel: "error",
		Database: config.DatabaseConfig{URL: "dummy"},
	})
}

func TestAddJobDuplicate(t *testing.T) {
	s := New(testLogger())

	require.NoError(t, s.AddJob(&stubJob{name: "scrape", schedule: "@every 1h"}))

	err := s.AddJob(&stubJob{name: "scrape", schedule: "@every 2h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(testLogger())

	err := s.AddJob(&stubJob{name: "broken", schedule: "not a cron spec"})
	require.Error(t, err)
}

func TestRunJobUnknown(t *testing.T) {
	s := New(testLogger())

	err := s.RunJob("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunJobExecutesAndRecordsHistory(t *testing.T) {
	s := New(testLogger())

	job := &stubJob{name: "scrape", schedule: "@every 1h", done: make(chan struct{})}
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("scrape"))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	// History lands after Run returns.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		history, err := s.GetJobHistory("scrape")
		require.NoError(t, err)
		if len(history.Results) == 1 {
			require.True(t, history.Results[0].Success)

			stats := s.GetJobStats()["scrape"]
			assert.Equal(t, 1, stats.TotalRuns)
			assert.Equal(t, 1, stats.SuccessCount)
			assert.Equal(t, 1.0, stats.SuccessRate)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job result never recorded")
}

func TestGetAllJobs(t *testing.T) {
	s := New(testLogger())

	require.NoError(t, s.AddJob(&stubJob{name: "scrape", schedule: "@every 6h"}))
	require.NoError(t, s.AddJob(&stubJob{name: "quote_sync", schedule: "0 30 22 * * *"}))

	jobs := s.GetAllJobs()
	assert.Len(t, jobs, 2)
	assert.ElementsMatch(t, []string{"scrape", "quote_sync"}, jobs)
}

func TestStopCancelsInFlightJob(t *testing.T) {
	s := New(testLogger())

	job := &blockingJob{name: "blocked", returned: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	s.Start()
	require.NoError(t, s.RunJob("blocked"))

	// Give the goroutine a moment to enter Run before cancelling.
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	select {
	case <-job.returned:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe cancellation on Stop")
	}
}

func TestGetJobHistoryUnknown(t *testing.T) {
	s := New(testLogger())

	_, err := s.GetJobHistory("nope")
	require.Error(t, err)
}

func TestJobHistoryCapsResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "scrape", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
	assert.Len(t, h.GetLatestResults(10), 10)
}
