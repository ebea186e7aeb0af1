package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
//
// By default Emit is synchronous and fail-closed: workflow operations that
// cannot record their audit event do not proceed. WithAsyncBuffer switches to
// a buffered channel drained by a background goroutine; in that mode a full
// buffer drops the event rather than blocking the workflow.
type Publisher struct {
	store  Store
	logger *slog.Logger

	inbox chan Event
	done  chan struct{}
	once  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for drop/drain reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an audit event. A zero timestamp is stamped with the current
// time.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
		)
		return nil
	}
}

// List returns the recorded events for one subject.
func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// Close drains any buffered events and stops the background goroutine.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("audit append failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err.Error(),
			)
		}
	}
}
