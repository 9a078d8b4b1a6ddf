package session

import (
	"context"
	"time"

	"annotator-go/core/event"
	"annotator-go/domain/correspondence"
	"annotator-go/infrastructure/export"
)

// handleSave writes the full history. A save requested while a write is in
// flight runs after it.
func (s *Session) handleSave() {
	if s.writing || s.stopping {
		s.manualQueued = true
		s.logger.Debug("Save queued behind in-flight write")
		return
	}
	s.startWrite(event.TriggerManual)
}

// autosave writes and drains unsaved correspondences. It is skipped while
// another write is in flight or when nothing is unsaved.
func (s *Session) autosave() {
	switch {
	case s.stopping:
		return
	case s.writing:
		s.logger.Debug("Autosave skipped, write in flight")
		return
	case s.ann.Ledger().UnsavedLen() == 0:
		return
	}
	s.startWrite(event.TriggerAutosave)
}

func (s *Session) batch(trigger event.SaveTrigger) export.Batch {
	snap := s.ann.Ledger().Snapshot()
	return export.Batch{
		RunID:   s.runID,
		Trigger: trigger,
		History: snap.History,
		Unsaved: snap.Unsaved,
	}
}

// startWrite snapshots the ledger and writes it on a separate goroutine.
// The result comes back through writeDone.
func (s *Session) startWrite(trigger event.SaveTrigger) {
	b := s.batch(trigger)
	s.writing = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Writes outlive cancellation so a stop does not abort them midway.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.shutdownTimeout)
		defer cancel()
		err := s.sink.Write(ctx, b)
		s.writeDone <- writeResult{trigger: trigger, batch: b, err: err}
	}()
}

// finishWrite applies a completed write. Only the records that were in the
// written snapshot are drained; records appended meanwhile stay unsaved.
func (s *Session) finishWrite(res writeResult) {
	s.writing = false
	s.complete(res)

	if s.manualQueued && !s.stopping {
		s.manualQueued = false
		s.startWrite(event.TriggerManual)
	}
}

func (s *Session) complete(res writeResult) {
	if res.err != nil {
		s.logger.Error("Export failed", "trigger", res.trigger.String(), "sink", s.sink.Name(), "error", res.err)
		s.publishEvent(event.NewExportFailed(s.runID, res.trigger, res.err))
		return
	}

	drained := 0
	if res.trigger.Drains() {
		drained = s.ann.Ledger().Drain(correspondence.Snapshot{
			History: res.batch.History,
			Unsaved: res.batch.Unsaved,
		})
	}
	s.logger.Info("Export written",
		"trigger", res.trigger.String(),
		"rows", len(res.batch.History),
		"drained", drained)
	s.publishEvent(event.NewExportSucceeded(s.runID, res.trigger, len(res.batch.History), drained))
	s.publishView()
}

// shutdown runs on the actor goroutine after cancellation. It processes the
// commands still queued, waits for an in-flight write and flushes what is
// left unsaved.
func (s *Session) shutdown() {
	s.stopping = true

	for drained := false; !drained; {
		select {
		case cmd := <-s.cmdChan:
			s.processCommand(cmd)
		default:
			drained = true
		}
	}

	if s.writing {
		select {
		case res := <-s.writeDone:
			s.finishWrite(res)
		case <-time.After(s.shutdownTimeout):
			s.logger.Warn("In-flight write did not finish before shutdown")
			return
		}
	}

	if s.ann.Ledger().UnsavedLen() == 0 && !s.manualQueued {
		return
	}

	b := s.batch(event.TriggerShutdown)
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.complete(writeResult{trigger: event.TriggerShutdown, batch: b, err: s.sink.Write(ctx, b)})
	s.manualQueued = false
}
