package correspondence

import "time"

// Ledger is the in-memory correspondence list.
//
// history holds every record of the run and is the source of truth for the
// recorded point index and for export contents. unsaved holds the records no
// write has drained yet. Draining removes exactly the records of a snapshot,
// so records appended while a write is in flight stay unsaved.
type Ledger struct {
	history []Record
	unsaved []Record
	nextSeq uint64
	now     func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Append stores a correspondence made in dir and returns its record.
func (l *Ledger) Append(dir string, c Correspondence) Record {
	l.nextSeq++
	rec := Record{
		Seq:            l.nextSeq,
		RecordedAt:     l.now(),
		Directory:      dir,
		Correspondence: c,
	}
	l.history = append(l.history, rec)
	l.unsaved = append(l.unsaved, rec)
	return rec
}

// Len returns the number of records in the run.
func (l *Ledger) Len() int {
	return len(l.history)
}

// UnsavedLen returns the number of records not yet drained.
func (l *Ledger) UnsavedLen() int {
	return len(l.unsaved)
}

// History returns a copy of all records of the run.
func (l *Ledger) History() []Record {
	return cloneRecords(l.history)
}

// Unsaved returns a copy of the records not yet drained.
func (l *Ledger) Unsaved() []Record {
	return cloneRecords(l.unsaved)
}

// Snapshot is an immutable copy of the ledger taken when a write starts.
type Snapshot struct {
	History []Record
	Unsaved []Record
}

// Snapshot copies the current history and unsaved queue.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		History: l.History(),
		Unsaved: l.Unsaved(),
	}
}

// Drain removes the snapshot's unsaved records from the unsaved queue.
// Records appended after the snapshot was taken are kept.
// Returns the number of records removed.
func (l *Ledger) Drain(s Snapshot) int {
	if len(s.Unsaved) == 0 {
		return 0
	}
	written := make(map[uint64]struct{}, len(s.Unsaved))
	for _, r := range s.Unsaved {
		written[r.Seq] = struct{}{}
	}

	kept := l.unsaved[:0]
	removed := 0
	for _, r := range l.unsaved {
		if _, ok := written[r.Seq]; ok {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	l.unsaved = kept
	return removed
}

func cloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	copy(out, in)
	return out
}
