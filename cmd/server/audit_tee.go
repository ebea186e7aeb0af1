package main

import (
	"context"
	"log/slog"

	"regula/internal/audit"
)

// auditTee writes events to the primary sink and forwards a copy onto a
// channel for background shipping. Forwarding never blocks a workflow: a
// full channel drops the copy, the primary write always happens.
type auditTee struct {
	primary audit.Store
	ship    chan audit.Event
	logger  *slog.Logger
}

func newAuditTee(primary audit.Store, buffer int, logger *slog.Logger) *auditTee {
	return &auditTee{
		primary: primary,
		ship:    make(chan audit.Event, buffer),
		logger:  logger,
	}
}

// Shipments is the channel the background worker drains.
func (t *auditTee) Shipments() <-chan audit.Event {
	return t.ship
}

func (t *auditTee) Append(ctx context.Context, event audit.Event) error {
	if err := t.primary.Append(ctx, event); err != nil {
		return err
	}
	select {
	case t.ship <- event:
	default:
		t.logger.Warn("audit shipment buffer full, dropping copy",
			"action", event.Action,
			"subject", event.Subject,
		)
	}
	return nil
}

func (t *auditTee) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return t.primary.ListBySubject(ctx, subject)
}
