// Package state defines the point capture state machine.
package state

import "fmt"

// CaptureState represents whether a half-correspondence is waiting for its partner.
type CaptureState int

const (
	// StateIdle means no point has been captured on frame A.
	StateIdle CaptureState = iota
	// StatePending means a point on frame A awaits its partner click on frame B.
	StatePending
)

// String returns the string representation of the state.
func (s CaptureState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePending:
		return "Pending"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Trigger is an input that may move the capture state machine.
type Trigger int

const (
	// TriggerClickA is an accepted click on the left frame.
	TriggerClickA Trigger = iota
	// TriggerClickB is an accepted click on the right frame.
	TriggerClickB
	// TriggerPairLoaded fires whenever a frame pair is (re)loaded.
	TriggerPairLoaded
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerClickA:
		return "ClickA"
	case TriggerClickB:
		return "ClickB"
	case TriggerPairLoaded:
		return "PairLoaded"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// transitions maps (state, trigger) to the next state.
// A missing entry means the trigger is a no-op in that state.
var transitions = map[CaptureState]map[Trigger]CaptureState{
	StateIdle: {
		TriggerClickA:     StatePending,
		TriggerPairLoaded: StateIdle,
	},
	StatePending: {
		TriggerClickA:     StatePending, // overwrites the pending half
		TriggerClickB:     StateIdle,
		TriggerPairLoaded: StateIdle,
	},
}

// Next returns the state reached by applying the trigger.
// ok is false when the trigger has no effect in the current state.
func (s CaptureState) Next(t Trigger) (next CaptureState, ok bool) {
	next, ok = transitions[s][t]
	if !ok {
		return s, false
	}
	return next, true
}

// Fire applies the trigger and returns the new state, or a TransitionError
// when the trigger is not accepted.
func (s CaptureState) Fire(t Trigger) (CaptureState, error) {
	next, ok := s.Next(t)
	if !ok {
		return s, NewTransitionError(s, t, "")
	}
	return next, nil
}

// HasPending returns true if a half-correspondence is waiting.
func (s CaptureState) HasPending() bool {
	return s == StatePending
}

// TransitionError represents a trigger that the current state does not accept.
type TransitionError struct {
	From    CaptureState
	Trigger Trigger
	Reason  string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("trigger %s not accepted in state %s: %s", e.Trigger, e.From, e.Reason)
	}
	return fmt.Sprintf("trigger %s not accepted in state %s", e.Trigger, e.From)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from CaptureState, t Trigger, reason string) *TransitionError {
	return &TransitionError{From: from, Trigger: t, Reason: reason}
}
