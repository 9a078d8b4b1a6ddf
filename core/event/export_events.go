package event

// SaveTrigger identifies what started an export write.
type SaveTrigger int

const (
	// TriggerAutosave is the periodic timer.
	TriggerAutosave SaveTrigger = iota
	// TriggerManual is the operator's save action.
	TriggerManual
	// TriggerShutdown is the final flush when the application exits.
	TriggerShutdown
)

// String returns the string representation of the trigger.
func (t SaveTrigger) String() string {
	switch t {
	case TriggerAutosave:
		return "autosave"
	case TriggerManual:
		return "manual"
	case TriggerShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Drains reports whether a successful write with this trigger drains the
// written records from the unsaved queue.
func (t SaveTrigger) Drains() bool {
	return t == TriggerAutosave || t == TriggerShutdown
}

// ExportSucceeded is published when a write completes.
type ExportSucceeded struct {
	baseRunEvent
	Trigger SaveTrigger
	// Written is the number of rows in the export.
	Written int
	// Drained is the number of records removed from the unsaved queue.
	Drained int
}

func NewExportSucceeded(runID string, trigger SaveTrigger, written, drained int) *ExportSucceeded {
	return &ExportSucceeded{
		baseRunEvent: baseRunEvent{runID: runID},
		Trigger:      trigger,
		Written:      written,
		Drained:      drained,
	}
}

func (e *ExportSucceeded) EventName() string {
	return "ExportSucceeded"
}

// ExportFailed is published when a write fails. Nothing is drained.
type ExportFailed struct {
	baseRunEvent
	Trigger SaveTrigger
	Error   error
}

func NewExportFailed(runID string, trigger SaveTrigger, err error) *ExportFailed {
	return &ExportFailed{
		baseRunEvent: baseRunEvent{runID: runID},
		Trigger:      trigger,
		Error:        err,
	}
}

func (e *ExportFailed) EventName() string {
	return "ExportFailed"
}
