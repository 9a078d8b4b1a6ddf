// Package export writes recorded correspondences to persistent sinks.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"annotator-go/core/event"
	"annotator-go/domain/correspondence"
)

// Batch is one write request.
type Batch struct {
	RunID   string
	Trigger event.SaveTrigger
	// History is every correspondence of the run, in recording order.
	History []correspondence.Record
	// Unsaved is the subset of History not yet drained by an autosave.
	Unsaved []correspondence.Record
}

// Sink persists batches. Implementations must be safe to call from a
// goroutine other than the one that created them.
type Sink interface {
	Name() string
	Write(ctx context.Context, b Batch) error
}

// Multi writes to every sink in order. A failing sink does not stop the
// others, but any failure fails the whole write.
type Multi []Sink

// Name returns the names of all sinks.
func (m Multi) Name() string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name()
	}
	return "multi[" + strings.Join(names, ",") + "]"
}

// Write writes b to every sink and joins their errors.
func (m Multi) Write(ctx context.Context, b Batch) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, b); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
