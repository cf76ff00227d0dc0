package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobRecorder struct {
	mu       sync.Mutex
	handled  []Job
	failOnce map[string]bool
}

func (r *jobRecorder) handle(_ context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOnce[job.ID] {
		r.failOnce[job.ID] = false
		return errors.New("transient failure")
	}
	r.handled = append(r.handled, job)
	return nil
}

func (r *jobRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handled)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestQueueProcessesEnqueuedJobs(t *testing.T) {
	rec := &jobRecorder{}
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "notify"}))
	require.NoError(t, q.Enqueue(Job{ID: "job-2", Type: "notify"}))

	waitFor(t, func() bool { return rec.count() == 2 })
	assert.Equal(t, 0, q.Depth())
}

func TestQueueRetriesFailedJob(t *testing.T) {
	rec := &jobRecorder{failOnce: map[string]bool{"job-1": true}}
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "notify"}))

	waitFor(t, func() bool { return rec.count() == 1 })
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.handled[0].Attempt)
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})

	err := q.Enqueue(Job{ID: "job-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}
