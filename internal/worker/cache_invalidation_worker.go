package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/employee-service/internal/events"
)

// Invalidator drops a cached value.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// StartCacheInvalidationWorker subscribes to every write event and invalidates the statistics cache.
func StartCacheInvalidationWorker(dispatcher events.Dispatcher, cache Invalidator, logger *zap.Logger) {
	if dispatcher == nil || cache == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, event events.Event) error {
		if err := cache.Invalidate(ctx); err != nil {
			logger.Warn("statistics cache invalidation failed",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.Error(err))
			return err
		}
		logger.Debug("statistics cache invalidated", zap.String("event_type", string(event.Type)))
		return nil
	}
	for _, eventType := range events.WriteEvents {
		dispatcher.Subscribe(eventType, handler)
	}
}
