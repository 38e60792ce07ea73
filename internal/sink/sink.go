// Package sink delivers emitted document records to their durable
// destinations. Sinks are append-only with at-least-once semantics; a resumed
// run may push a record the previous run already delivered, and every sink
// must tolerate that.
package sink

import (
	"context"
	"errors"

	"github.com/nathanj/recorder-agent/internal/records"
)

// RecordSink accepts one assembled document record at a time.
type RecordSink interface {
	Push(ctx context.Context, doc *records.Document) error
	Close(ctx context.Context) error
}

// Multi fans a record out to several sinks. Every sink sees every record
// even when an earlier one fails; the errors are combined.
type Multi []RecordSink

// Push delivers the record to all sinks.
func (m Multi) Push(ctx context.Context, doc *records.Document) error {
	var errs []error
	for _, s := range m {
		if err := s.Push(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all sinks.
func (m Multi) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
