package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileRemover deletes a generated file.
type FileRemover interface {
	DeleteExportFile(path string) error
}

// ExportCleaner deletes export files a fixed delay after they were served.
type ExportCleaner struct {
	remover FileRemover
	delay   time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewExportCleaner builds a cleaner. A zero delay deletes on Schedule.
func NewExportCleaner(remover FileRemover, delay time.Duration, logger *zap.Logger) *ExportCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportCleaner{
		remover: remover,
		delay:   delay,
		logger:  logger,
		pending: make(map[string]*time.Timer),
	}
}

// Schedule arranges for path to be deleted after the configured delay.
func (c *ExportCleaner) Schedule(path string) {
	c.mu.Lock()
	if c.stopped || c.delay <= 0 {
		c.mu.Unlock()
		c.remove(path)
		return
	}
	if t, ok := c.pending[path]; ok {
		t.Stop()
	}
	c.pending[path] = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		delete(c.pending, path)
		c.mu.Unlock()
		c.remove(path)
	})
	c.mu.Unlock()
}

// Pending returns the number of files waiting for deletion.
func (c *ExportCleaner) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop cancels pending timers and deletes their files immediately.
// Files scheduled afterwards are deleted right away.
func (c *ExportCleaner) Stop() {
	c.mu.Lock()
	c.stopped = true
	paths := make([]string, 0, len(c.pending))
	for path, t := range c.pending {
		if t.Stop() {
			paths = append(paths, path)
		}
		delete(c.pending, path)
	}
	c.mu.Unlock()

	for _, path := range paths {
		c.remove(path)
	}
}

func (c *ExportCleaner) remove(path string) {
	if err := c.remover.DeleteExportFile(path); err != nil {
		c.logger.Warn("export cleanup failed", zap.String("path", path), zap.Error(err))
		return
	}
	c.logger.Debug("export file removed", zap.String("path", path))
}
