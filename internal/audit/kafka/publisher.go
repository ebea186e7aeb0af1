// Package kafka ships audit events to a Kafka topic.
//
// The publisher is a sink behind the audit.Store interface: Append produces
// one record per event, keyed by subject so all events for a record land in
// one partition and preserve order. ListBySubject is not served from Kafka;
// wire a queryable store alongside when reads are needed.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"regula/internal/audit"
	dErrors "regula/pkg/domain-errors"
)

// Publisher produces audit events to a Kafka topic.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for produce failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New connects to the brokers and ensures the audit topic exists.
func New(ctx context.Context, brokers []string, topic string, opts ...Option) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	p := &Publisher{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	details, err := adm.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if details.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, 1, -1, nil, topic); err != nil {
		return fmt.Errorf("create audit topic %q: %w", topic, err)
	}
	return nil
}

// Append produces one record per event, keyed by subject.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(struct {
		audit.Event
		Category string
	}{Event: event, Category: string(audit.AuditEvent(event.Action).Category())})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Subject),
		Value: body,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.ErrorContext(ctx, "audit produce failed",
			"subject", event.Subject,
			"action", event.Action,
			"error", err.Error(),
		)
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// ListBySubject says the Kafka sink is write-only.
func (p *Publisher) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, dErrors.New(dErrors.CodeInternal, "kafka audit sink is write-only")
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
