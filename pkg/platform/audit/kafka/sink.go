// Package kafka publishes security-category audit events to a Kafka topic
// for SIEM consumption. Durable storage is handled by the audit store; this
// sink is best-effort fan-out and must never block a caller.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
)

// producer is the part of kgo.Client the sink needs. Narrowed for tests.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// Sink publishes audit events to one topic, keyed by actor id so per-actor
// ordering is preserved within a partition.
type Sink struct {
	client producer
	topic  string
	logger *slog.Logger
}

// New connects to the given brokers. The returned Sink owns the client.
func New(brokers []string, topic string, logger *slog.Logger) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic, logger: logger}, nil
}

// NewWithProducer wires an existing producer. Used by tests.
func NewWithProducer(client producer, topic string, logger *slog.Logger) *Sink {
	return &Sink{client: client, topic: topic, logger: logger}
}

type payload struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	ActorKind string `json:"actor_kind"`
	ActorID   string `json:"actor_id,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// Publish produces the event asynchronously. Delivery failures are logged by
// the promise; the caller already persisted the event durably.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(payload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    string(event.Action),
		ActorKind: string(event.ActorKind),
		ActorID:   event.ActorID,
		Details:   event.Details,
		RequestID: event.RequestID,
		IP:        event.IP,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ActorID),
		Value: body,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("kafka audit publish failed",
				"error", err,
				"action", string(event.Action),
			)
		}
	})
	return nil
}

// Close flushes buffered records and releases the client.
func (s *Sink) Close() {
	if client, ok := s.client.(*kgo.Client); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Flush(ctx)
		client.Close()
	}
}
