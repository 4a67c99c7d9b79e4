package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/employee-service/internal/events"
)

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func TestCacheInvalidationWorkerHandlesEveryWriteEvent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	cache := &countingInvalidator{}
	StartCacheInvalidationWorker(dispatcher, cache, nil)

	for _, eventType := range events.WriteEvents {
		require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(eventType, 1, nil)))
	}
	assert.Equal(t, len(events.WriteEvents), cache.calls)
}

func TestCacheInvalidationWorkerReportsFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	StartCacheInvalidationWorker(dispatcher, &countingInvalidator{err: errors.New("redis down")}, nil)

	err := dispatcher.Publish(context.Background(), events.NewEvent(events.EventEmployeeCreated, 1, nil))
	assert.Error(t, err)
}

type recordingRemover struct {
	mu      sync.Mutex
	removed []string
	done    chan string
}

func newRecordingRemover() *recordingRemover {
	return &recordingRemover{done: make(chan string, 8)}
}

func (r *recordingRemover) DeleteExportFile(path string) error {
	r.mu.Lock()
	r.removed = append(r.removed, path)
	r.mu.Unlock()
	r.done <- path
	return nil
}

func (r *recordingRemover) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

func TestExportCleanerDeletesAfterDelay(t *testing.T) {
	remover := newRecordingRemover()
	cleaner := NewExportCleaner(remover, 20*time.Millisecond, nil)

	cleaner.Schedule("exports/a.csv")
	assert.Equal(t, 1, cleaner.Pending())
	assert.Empty(t, remover.paths())

	select {
	case path := <-remover.done:
		assert.Equal(t, "exports/a.csv", path)
	case <-time.After(2 * time.Second):
		t.Fatal("file was not removed")
	}
	assert.Eventually(t, func() bool { return cleaner.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestExportCleanerStopFlushesPending(t *testing.T) {
	remover := newRecordingRemover()
	cleaner := NewExportCleaner(remover, time.Hour, nil)

	cleaner.Schedule("exports/a.csv")
	cleaner.Schedule("exports/b.pdf")
	cleaner.Stop()

	assert.ElementsMatch(t, []string{"exports/a.csv", "exports/b.pdf"}, remover.paths())
	assert.Zero(t, cleaner.Pending())

	cleaner.Schedule("exports/c.csv")
	assert.Contains(t, remover.paths(), "exports/c.csv")
}

func TestExportCleanerZeroDelayDeletesImmediately(t *testing.T) {
	remover := newRecordingRemover()
	cleaner := NewExportCleaner(remover, 0, nil)

	cleaner.Schedule("exports/a.csv")
	assert.Equal(t, []string{"exports/a.csv"}, remover.paths())
}
