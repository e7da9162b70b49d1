package worker

import (
	"context"
	"errors"

	audit "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
)

// ErrQueueFull is returned when the inbox cannot accept another event.
var ErrQueueFull = errors.New("audit queue full")

// Queue is the buffered front half of the async audit pipeline. Emitters
// enqueue without blocking; the Worker drains into the real Publisher. When
// the buffer is full the event is dropped with an error, never a stall:
// audit is best-effort by contract and must not back-pressure logins.
type Queue struct {
	ch chan audit.Event
}

func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan audit.Event, capacity)}
}

// Emit enqueues the event. Satisfies the same interface as a synchronous
// Publisher, so services cannot tell which wiring they run under.
func (q *Queue) Emit(_ context.Context, event audit.Event) error {
	select {
	case q.ch <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Chan exposes the drain side for the Worker.
func (q *Queue) Chan() <-chan audit.Event {
	return q.ch
}
