package annotation

import (
	"annotator-go/core/state"
	"annotator-go/domain/correspondence"
	"annotator-go/domain/viewport"
)

// MarkerKind selects how a marker is drawn. Newly clicked points and points
// that were already recorded when the pair was loaded always use distinct kinds.
type MarkerKind int

const (
	// MarkerRecorded is a point that existed when the pair was loaded.
	MarkerRecorded MarkerKind = iota
	// MarkerNew is a point recorded since the pair was loaded.
	MarkerNew
	// MarkerPending is the unconfirmed half on frame A.
	MarkerPending
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerRecorded:
		return "recorded"
	case MarkerNew:
		return "new"
	case MarkerPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Marker is a point to draw on a frame, in natural coordinates.
type Marker struct {
	Point correspondence.Point
	Kind  MarkerKind
}

// FrameView is what one frame panel displays.
type FrameView struct {
	Number    int
	Path      string
	Transform viewport.Transform
	Markers   []Marker
}

// View is an immutable snapshot of the session for rendering.
type View struct {
	Loaded      bool
	Directory   string
	FrameCount  int
	PairIndex   int
	HasNextPair bool
	A           FrameView
	B           FrameView
	Capture     state.CaptureState
	Zoom        float64
	PanX        float64
	PanY        float64
	Recorded    int
	Unsaved     int
}

// Markers derives the markers of a side from the recorded point index and the
// pending half. The result depends only on state, so rendering the same pair
// twice without clicks yields identical markers.
func (s *Session) Markers(side Side) []Marker {
	if !s.loaded {
		return nil
	}
	num := s.frameNumber(side)
	marks := s.index.Marks(num)

	out := make([]Marker, 0, len(marks)+1)
	for _, m := range marks {
		kind := MarkerNew
		if m.Persisted {
			kind = MarkerRecorded
		}
		out = append(out, Marker{Point: m.Point, Kind: kind})
	}
	if side == SideA && s.pending != nil && s.pending.Frame == num {
		out = append(out, Marker{Point: s.pending.Point, Kind: MarkerPending})
	}
	return out
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	v := View{
		Loaded:   s.loaded,
		Capture:  s.capture,
		Zoom:     s.view.Zoom,
		PanX:     s.view.PanX,
		PanY:     s.view.PanY,
		Recorded: s.ledger.Len(),
		Unsaved:  s.ledger.UnsavedLen(),
	}
	pair, ok := s.Pair()
	if !ok {
		return v
	}

	v.Directory = s.frames.Dir()
	v.FrameCount = s.frames.Len()
	v.PairIndex = pair.Index
	v.HasNextPair = s.HasNextPair()
	v.A = FrameView{
		Number:    pair.NumberA(),
		Path:      pair.PathA,
		Transform: s.Transform(SideA),
		Markers:   s.Markers(SideA),
	}
	v.B = FrameView{
		Number:    pair.NumberB(),
		Path:      pair.PathB,
		Transform: s.Transform(SideB),
		Markers:   s.Markers(SideB),
	}
	return v
}

// Frame returns the view of one side.
func (v View) Frame(side Side) FrameView {
	if side == SideB {
		return v.B
	}
	return v.A
}
