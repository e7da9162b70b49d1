package audit

import (
	"context"
	"time"
)

// Store is the append-only persistence boundary for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives a best-effort copy of security events (e.g. a Kafka topic).
// Sink failures never fail the append.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
	sink  Sink // optional
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithSink attaches a best-effort security event sink.
func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) { p.sink = sink }
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Emit appends the event to the store, then fans security events out to the
// sink. The sink error is returned only if the store append also failed;
// durable storage is the contract, fan-out is best-effort.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	err := p.store.Append(ctx, event)
	if p.sink != nil && event.Action.IsSecurity() {
		if sinkErr := p.sink.Publish(ctx, event); sinkErr != nil && err == nil {
			// Storage succeeded; the sink is advisory. Swallow here, the
			// sink implementation is responsible for its own telemetry.
			_ = sinkErr
		}
	}
	return err
}

// List returns events for one actor, newest first.
func (p *Publisher) List(ctx context.Context, actorID string) ([]Event, error) {
	return p.store.ListByActor(ctx, actorID)
}
