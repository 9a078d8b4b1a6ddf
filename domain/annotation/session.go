// Package annotation implements the annotation session: frame pair navigation,
// the point capture state machine and the shared viewport.
//
// A Session is not safe for concurrent use. It is owned by exactly one
// goroutine (the session actor in the application layer).
package annotation

import (
	"errors"
	"fmt"

	"annotator-go/core/state"
	"annotator-go/domain/correspondence"
	"annotator-go/domain/frame"
	"annotator-go/domain/viewport"
)

// Common errors for annotation operations.
var (
	ErrTooFewFrames   = frame.ErrTooFewFrames
	ErrLastPair       = frame.ErrLastPair
	ErrNoFrames       = errors.New("no frames loaded")
	ErrDuplicatePoint = errors.New("this point has already been recorded")
	ErrOutsideFrame   = errors.New("click is outside the frame")
)

// DuplicateError reports a click too close to a point already recorded in a frame.
type DuplicateError struct {
	Side     Side
	Frame    int
	Clicked  correspondence.Point
	Existing correspondence.Point
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("frame %d: point %s is within range of recorded point %s", e.Frame, e.Clicked, e.Existing)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicatePoint
}

// Side identifies one of the two displayed frames.
type Side int

const (
	// SideA is the left frame (pair index + 1).
	SideA Side = iota
	// SideB is the right frame (pair index + 2).
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Options configures a Session.
type Options struct {
	// DuplicateRadius rejects clicks closer than this on both axes to a recorded point.
	DuplicateRadius int
	// FitBudget is the display size of an image's longer side at zoom 1.
	FitBudget float64
	// ZoomStep is the factor applied by ZoomIn/ZoomOut.
	ZoomStep float64
	// WheelStep is the factor applied per wheel notch.
	WheelStep float64
}

// DefaultOptions returns the standard annotation settings.
func DefaultOptions() Options {
	return Options{
		DuplicateRadius: 10,
		FitBudget:       viewport.DefaultFitBudget,
		ZoomStep:        viewport.DefaultZoomStep,
		WheelStep:       viewport.DefaultWheelStep,
	}
}

// frameSize is the natural size of a displayed frame; zero until known.
type frameSize struct {
	width, height int
}

func (s frameSize) known() bool {
	return s.width > 0 && s.height > 0
}

// Session holds all mutable annotation state.
type Session struct {
	opts Options

	frames    frame.Sequence
	pairIndex int
	loaded    bool

	ledger  *correspondence.Ledger
	index   *correspondence.Index
	capture state.CaptureState
	pending *correspondence.Half

	view  viewport.Viewport
	sizes [2]frameSize
}

// New creates an empty session.
func New(opts Options) *Session {
	def := DefaultOptions()
	if opts.DuplicateRadius <= 0 {
		opts.DuplicateRadius = def.DuplicateRadius
	}
	if opts.FitBudget <= 0 {
		opts.FitBudget = def.FitBudget
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = def.ZoomStep
	}
	if opts.WheelStep <= 1 {
		opts.WheelStep = def.WheelStep
	}

	return &Session{
		opts:    opts,
		ledger:  correspondence.NewLedger(),
		index:   correspondence.NewIndex(),
		capture: state.StateIdle,
		view:    viewport.New(),
	}
}

// Load binds a frame sequence and shows its first pair.
// Sequences with fewer than two frames are rejected and leave the session untouched.
// Correspondences recorded earlier in the run are kept.
func (s *Session) Load(seq frame.Sequence) error {
	if seq.Len() < 2 {
		return fmt.Errorf("%w: found %d", ErrTooFewFrames, seq.Len())
	}
	s.frames = seq
	s.pairIndex = 0
	s.loaded = true
	s.loadPair()
	return nil
}

// Loaded reports whether a frame sequence is bound.
func (s *Session) Loaded() bool {
	return s.loaded
}

// AdvancePair moves forward to the next frame pair.
func (s *Session) AdvancePair() error {
	if !s.loaded {
		return ErrNoFrames
	}
	if s.pairIndex >= s.frames.Len()-2 {
		return ErrLastPair
	}
	s.pairIndex++
	s.loadPair()
	return nil
}

// loadPair is the single place where per-pair state is reset and the
// recorded point index is rebuilt from the ledger.
func (s *Session) loadPair() {
	s.capture, _ = s.capture.Next(state.TriggerPairLoaded)
	s.pending = nil
	s.view.Reset()
	s.sizes = [2]frameSize{}
	s.index.Rebuild(s.frames.Dir(), s.ledger.History())
}

// Pair returns the current frame pair.
func (s *Session) Pair() (frame.Pair, bool) {
	if !s.loaded {
		return frame.Pair{}, false
	}
	return s.frames.Pair(s.pairIndex)
}

// Frames returns the bound frame sequence.
func (s *Session) Frames() frame.Sequence {
	return s.frames
}

// HasNextPair reports whether AdvancePair would succeed.
func (s *Session) HasNextPair() bool {
	return s.loaded && s.pairIndex < s.frames.Len()-2
}

// SetFrameSize records the natural size of a displayed frame, which sets its
// fit scale and enables the out-of-bounds click check.
func (s *Session) SetFrameSize(side Side, width, height int) {
	if side != SideA && side != SideB {
		return
	}
	s.sizes[side] = frameSize{width: width, height: height}
}

// FitScale returns the fit-to-display scale of a side.
func (s *Session) FitScale(side Side) float64 {
	if side != SideA && side != SideB {
		return 1
	}
	sz := s.sizes[side]
	if !sz.known() {
		return 1
	}
	return viewport.FitScale(sz.width, sz.height, s.opts.FitBudget)
}

// Transform returns the composed display transform of a side.
func (s *Session) Transform(side Side) viewport.Transform {
	return s.view.Transform(s.FitScale(side))
}

// frameNumber returns the 1-based frame number shown on a side.
func (s *Session) frameNumber(side Side) int {
	if side == SideA {
		return s.pairIndex + 1
	}
	return s.pairIndex + 2
}

// Outcome describes what a click did.
type Outcome int

const (
	// OutcomeIgnored means the click changed nothing (frame B while idle).
	OutcomeIgnored Outcome = iota
	// OutcomePending means a half-correspondence was captured on frame A.
	OutcomePending
	// OutcomeRecorded means a correspondence was completed on frame B.
	OutcomeRecorded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "Ignored"
	case OutcomePending:
		return "Pending"
	case OutcomeRecorded:
		return "Recorded"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ClickResult is the result of a click on a frame.
type ClickResult struct {
	Outcome Outcome
	Frame   int
	Point   correspondence.Point
	// Record is set when Outcome is OutcomeRecorded.
	Record correspondence.Record
}

// Click handles a click at display coordinates (relative to the frame panel)
// on one side of the pair.
func (s *Session) Click(side Side, displayX, displayY float64) (ClickResult, error) {
	if !s.loaded {
		return ClickResult{}, ErrNoFrames
	}
	if side != SideA && side != SideB {
		return ClickResult{}, fmt.Errorf("unknown side %d", int(side))
	}

	px := s.Transform(side).NaturalPixel(displayX, displayY)
	p := correspondence.Point{X: px.X, Y: px.Y}
	num := s.frameNumber(side)
	res := ClickResult{Frame: num, Point: p}

	if sz := s.sizes[side]; sz.known() {
		if p.X < 0 || p.Y < 0 || p.X >= sz.width || p.Y >= sz.height {
			return res, fmt.Errorf("%w: %s not in %dx%d", ErrOutsideFrame, p, sz.width, sz.height)
		}
	}

	trigger := state.TriggerClickA
	if side == SideB {
		trigger = state.TriggerClickB
	}
	next, err := s.capture.Fire(trigger)
	if err != nil {
		// Frame B while idle has nothing to pair with.
		res.Outcome = OutcomeIgnored
		return res, nil
	}

	if m, dup := s.index.Near(num, p, s.opts.DuplicateRadius); dup {
		return res, &DuplicateError{Side: side, Frame: num, Clicked: p, Existing: m.Point}
	}

	if side == SideA {
		s.capture = next
		s.pending = &correspondence.Half{Frame: num, Point: p}
		res.Outcome = OutcomePending
		return res, nil
	}

	c := correspondence.Complete(*s.pending, num, p)
	rec := s.ledger.Append(s.frames.Dir(), c)
	s.index.AddCorrespondence(c)
	s.pending = nil
	s.capture = next

	res.Outcome = OutcomeRecorded
	res.Record = rec
	return res, nil
}

// Capture returns the capture state.
func (s *Session) Capture() state.CaptureState {
	return s.capture
}

// Pending returns the pending half-correspondence, if any.
func (s *Session) Pending() (correspondence.Half, bool) {
	if s.pending == nil {
		return correspondence.Half{}, false
	}
	return *s.pending, true
}

// Ledger returns the correspondence ledger.
func (s *Session) Ledger() *correspondence.Ledger {
	return s.ledger
}

// Viewport operations.

// ZoomIn multiplies the zoom by the zoom step.
func (s *Session) ZoomIn() {
	s.view.ZoomBy(s.opts.ZoomStep)
}

// ZoomOut divides the zoom by the zoom step.
func (s *Session) ZoomOut() {
	s.view.ZoomBy(1 / s.opts.ZoomStep)
}

// Wheel applies one wheel notch.
func (s *Session) Wheel(in bool) {
	s.view.Wheel(in, s.opts.WheelStep)
}

// ResetView restores zoom 1 and pan (0,0).
func (s *Session) ResetView() {
	s.view.Reset()
}

// BeginPan starts a pan drag at a screen position.
func (s *Session) BeginPan(x, y float64) {
	s.view.BeginPan(x, y)
}

// PanTo moves an active pan drag. Returns false when no drag is active.
func (s *Session) PanTo(x, y float64) bool {
	return s.view.PanTo(x, y)
}

// EndPan finishes the pan drag.
func (s *Session) EndPan() {
	s.view.EndPan()
}

// Viewport returns a copy of the viewport.
func (s *Session) Viewport() viewport.Viewport {
	return s.view
}
