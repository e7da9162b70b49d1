package worker

import (
	"context"
	"log/slog"

	audit "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them through the
// publisher. It decouples hot-path emitters from storage latency: callers
// enqueue and move on, the worker absorbs the write.
type Worker struct {
	publisher *audit.Publisher
	inbox     <-chan audit.Event
	logger    *slog.Logger
}

func NewWorker(publisher *audit.Publisher, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Append failures are
// logged and skipped; audit persistence is monitored, not load-bearing.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.publisher.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"error", err,
					"action", string(event.Action),
				)
			}
		}
	}
}
