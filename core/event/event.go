// Package event defines all events that can be published by the application.
// Events represent state changes and are consumed by the presentation layer.
package event

import "annotator-go/domain/annotation"

// Event is the base interface for all events.
// Events are published by the application layer and consumed by subscribers.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// RunEvent is an event that originates from a specific annotation run.
type RunEvent interface {
	Event
	// RunID returns the source run ID
	RunID() string
}

// baseRunEvent provides common implementation for run events.
type baseRunEvent struct {
	runID string
}

func (e *baseRunEvent) RunID() string {
	return e.runID
}

// SessionUpdated is published after every change to the annotation session.
type SessionUpdated struct {
	baseRunEvent
	View annotation.View
}

func NewSessionUpdated(runID string, view annotation.View) *SessionUpdated {
	return &SessionUpdated{
		baseRunEvent: baseRunEvent{runID: runID},
		View:         view,
	}
}

func (e *SessionUpdated) EventName() string {
	return "SessionUpdated"
}

// OperationFailed is published when a command fails for a reason other than
// the specific rejections below.
type OperationFailed struct {
	baseRunEvent
	Operation string
	Error     error
}

func NewOperationFailed(runID, operation string, err error) *OperationFailed {
	return &OperationFailed{
		baseRunEvent: baseRunEvent{runID: runID},
		Operation:    operation,
		Error:        err,
	}
}

func (e *OperationFailed) EventName() string {
	return "OperationFailed"
}
