package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/employee-service/internal/events"
	apperrors "github.com/spec-kit/employee-service/pkg/util/errorutil"
)

// publisher wraps an optional dispatcher. Publication failures never fail the write that caused them.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("entity_id", event.EntityID),
			zap.Error(err))
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	return apperrors.PgErrorCode(err) == apperrors.PgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return apperrors.PgErrorCode(err) == apperrors.PgForeignKeyViolation
}

func searchTerm(search string) *string {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil
	}
	return &search
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
