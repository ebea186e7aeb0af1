// Package worker fans audit events out to secondary sinks in the background.
package worker

import (
	"context"

	"regula/internal/audit"
)

// Worker consumes audit events from a channel and persists them to a sink.
// It keeps background shipping (e.g. to Kafka) off the workflow hot path.
type Worker struct {
	sink  audit.Store
	inbox <-chan audit.Event
}

func New(sink audit.Store, inbox <-chan audit.Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

// Run blocks until the context is cancelled or an append fails.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
