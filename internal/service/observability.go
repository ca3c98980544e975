package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/budeshi/budeshi/internal/repository"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes use-case events through logger.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	switch {
	case event.Err == nil:
		o.logger.InfoContext(ctx, "use case finished", attrs...)
	case isCallerError(event.Err):
		o.logger.WarnContext(ctx, "use case rejected", append(attrs, "error", event.Err.Error())...)
	default:
		o.logger.ErrorContext(ctx, "use case failed", append(attrs, "error", event.Err.Error())...)
	}
}

// isCallerError covers failures caused by the request rather than the
// store: unknown IDs, duplicates and writes to a read-only backend.
func isCallerError(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrDuplicateID) ||
		errors.Is(err, repository.ErrReadOnly)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// track emits one event for a use case started at startedAt. Call it
// deferred with a pointer to the named error result.
func track(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}
