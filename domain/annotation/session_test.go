package annotation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"annotator-go/core/state"
	"annotator-go/domain/correspondence"
	"annotator-go/domain/frame"
)

func threeFrames() frame.Sequence {
	return frame.NewSequence("/frames", []string{"/frames/f1.png", "/frames/f2.png", "/frames/f3.png"})
}

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := New(DefaultOptions())
	require.NoError(t, s.Load(threeFrames()))
	return s
}

func TestSession_LoadRejectsTooFewFrames(t *testing.T) {
	s := New(DefaultOptions())

	err := s.Load(frame.NewSequence("/empty", nil))
	require.ErrorIs(t, err, ErrTooFewFrames)

	err = s.Load(frame.NewSequence("/one", []string{"/one/1.png"}))
	require.ErrorIs(t, err, ErrTooFewFrames)
	require.False(t, s.Loaded())

	_, err = s.Click(SideA, 1, 1)
	require.ErrorIs(t, err, ErrNoFrames)
	require.ErrorIs(t, s.AdvancePair(), ErrNoFrames)
}

func TestSession_RejectedLoadKeepsPriorSession(t *testing.T) {
	s := loadedSession(t)
	require.NoError(t, s.AdvancePair())

	require.ErrorIs(t, s.Load(frame.NewSequence("/one", []string{"/one/1.png"})), ErrTooFewFrames)

	pair, ok := s.Pair()
	require.True(t, ok)
	require.Equal(t, 1, pair.Index)
	require.Equal(t, "/frames/f2.png", pair.PathA)
}

func TestSession_Scenario(t *testing.T) {
	s := loadedSession(t)

	v := s.View()
	require.Equal(t, 1, v.A.Number)
	require.Equal(t, 2, v.B.Number)
	require.Equal(t, "/frames/f1.png", v.A.Path)
	require.Equal(t, "/frames/f2.png", v.B.Path)

	res, err := s.Click(SideA, 10, 10)
	require.NoError(t, err)
	require.Equal(t, OutcomePending, res.Outcome)
	require.Equal(t, state.StatePending, s.Capture())

	res, err = s.Click(SideB, 20, 20)
	require.NoError(t, err)
	require.Equal(t, OutcomeRecorded, res.Outcome)
	require.Equal(t, correspondence.Correspondence{FrameA: 1, XA: 10, YA: 10, FrameB: 2, XB: 20, YB: 20}, res.Record.Correspondence)
	require.Equal(t, state.StateIdle, s.Capture())
	require.Equal(t, 1, s.Ledger().Len())

	require.NoError(t, s.AdvancePair())
	v = s.View()
	require.Equal(t, 2, v.A.Number)
	require.Equal(t, 3, v.B.Number)
	require.Equal(t, "/frames/f2.png", v.A.Path)
	require.Equal(t, "/frames/f3.png", v.B.Path)
	require.Equal(t, []Marker{{Point: correspondence.Point{X: 20, Y: 20}, Kind: MarkerRecorded}}, v.A.Markers)
	require.Empty(t, v.B.Markers)
	require.False(t, v.HasNextPair)

	require.ErrorIs(t, s.AdvancePair(), ErrLastPair)
}

func TestSession_ClickBWhileIdleIsNoop(t *testing.T) {
	s := loadedSession(t)

	res, err := s.Click(SideB, 50, 50)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, res.Outcome)
	require.Equal(t, 0, s.Ledger().Len())
	require.Empty(t, s.Markers(SideB))
}

func TestSession_SecondClickAOverwritesPending(t *testing.T) {
	s := loadedSession(t)

	_, err := s.Click(SideA, 10, 10)
	require.NoError(t, err)
	_, err = s.Click(SideA, 100, 100)
	require.NoError(t, err)

	h, ok := s.Pending()
	require.True(t, ok)
	require.Equal(t, correspondence.Point{X: 100, Y: 100}, h.Point)
	require.Equal(t, []Marker{{Point: correspondence.Point{X: 100, Y: 100}, Kind: MarkerPending}}, s.Markers(SideA))

	res, err := s.Click(SideB, 5, 5)
	require.NoError(t, err)
	require.Equal(t, 100, res.Record.XA)
}

func TestSession_DuplicateRejected(t *testing.T) {
	s := loadedSession(t)
	_, err := s.Click(SideA, 10, 10)
	require.NoError(t, err)
	_, err = s.Click(SideB, 20, 20)
	require.NoError(t, err)

	// Near the recorded point on frame A: rejected, no pending half.
	_, err = s.Click(SideA, 19, 1)
	require.ErrorIs(t, err, ErrDuplicatePoint)
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, 1, dup.Frame)
	require.Equal(t, correspondence.Point{X: 10, Y: 10}, dup.Existing)
	require.Equal(t, state.StateIdle, s.Capture())
	_, pending := s.Pending()
	require.False(t, pending)

	// Pending on A, then a duplicate on B: rejected, pending kept.
	_, err = s.Click(SideA, 200, 200)
	require.NoError(t, err)
	_, err = s.Click(SideB, 25, 15)
	require.ErrorIs(t, err, ErrDuplicatePoint)
	require.Equal(t, 1, s.Ledger().Len())
	require.Equal(t, state.StatePending, s.Capture())

	// Exactly 10 away is accepted.
	res, err := s.Click(SideB, 30, 20)
	require.NoError(t, err)
	require.Equal(t, OutcomeRecorded, res.Outcome)
	require.Equal(t, 2, s.Ledger().Len())
}

func TestSession_AdvanceDiscardsPending(t *testing.T) {
	s := loadedSession(t)
	_, err := s.Click(SideA, 10, 10)
	require.NoError(t, err)
	s.ZoomIn()

	require.NoError(t, s.AdvancePair())

	_, ok := s.Pending()
	require.False(t, ok)
	require.Equal(t, state.StateIdle, s.Capture())
	require.Equal(t, 1.0, s.Viewport().Zoom)
	require.Equal(t, 0, s.Ledger().Len())

	res, err := s.Click(SideB, 10, 10)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, res.Outcome)
}

func TestSession_ReloadIsIdempotent(t *testing.T) {
	s := loadedSession(t)
	_, err := s.Click(SideA, 10, 10)
	require.NoError(t, err)
	_, err = s.Click(SideB, 20, 20)
	require.NoError(t, err)

	// Before reload the new points are drawn as new.
	require.Equal(t, []Marker{{Point: correspondence.Point{X: 10, Y: 10}, Kind: MarkerNew}}, s.Markers(SideA))

	require.NoError(t, s.Load(threeFrames()))
	first := s.View()
	require.NoError(t, s.Load(threeFrames()))
	second := s.View()

	require.Equal(t, first.A.Markers, second.A.Markers)
	require.Equal(t, first.B.Markers, second.B.Markers)
	require.Equal(t, []Marker{{Point: correspondence.Point{X: 10, Y: 10}, Kind: MarkerRecorded}}, second.A.Markers)
	require.Equal(t, []Marker{{Point: correspondence.Point{X: 20, Y: 20}, Kind: MarkerRecorded}}, second.B.Markers)
}

func TestSession_ClickMapsThroughViewport(t *testing.T) {
	s := loadedSession(t)
	// 1000x800 natural: fit 0.5. Zoom 1.2*1.2 and pan (30, 40).
	s.SetFrameSize(SideA, 1000, 800)
	s.SetFrameSize(SideB, 400, 300)
	s.ZoomIn()
	s.ZoomIn()
	s.BeginPan(0, 0)
	require.True(t, s.PanTo(30, 40))
	s.EndPan()

	require.InDelta(t, 0.5, s.FitScale(SideA), 1e-9)
	require.InDelta(t, 1.0, s.FitScale(SideB), 1e-9)

	// display = pan + 1.44 * 0.5 * natural
	res, err := s.Click(SideA, 30+0.72*500, 40+0.72*250)
	require.NoError(t, err)
	require.Equal(t, correspondence.Point{X: 500, Y: 250}, res.Point)

	// display = pan + 1.44 * natural
	res, err = s.Click(SideB, 30+1.44*100, 40+1.44*200)
	require.NoError(t, err)
	require.Equal(t, correspondence.Correspondence{FrameA: 1, XA: 500, YA: 250, FrameB: 2, XB: 100, YB: 200}, res.Record.Correspondence)
}

func TestSession_ClickOutsideFrameIgnored(t *testing.T) {
	s := loadedSession(t)
	s.SetFrameSize(SideA, 100, 100)

	_, err := s.Click(SideA, 150, 50)
	require.ErrorIs(t, err, ErrOutsideFrame)
	_, err = s.Click(SideA, -3, 50)
	require.ErrorIs(t, err, ErrOutsideFrame)
	require.Equal(t, state.StateIdle, s.Capture())
}

func TestSession_ViewportOperations(t *testing.T) {
	s := loadedSession(t)

	s.ZoomIn()
	s.ZoomIn()
	require.InDelta(t, 1.44, s.View().Zoom, 1e-9)

	s.ZoomOut()
	require.InDelta(t, 1.2, s.View().Zoom, 1e-9)

	s.Wheel(true)
	require.InDelta(t, 1.32, s.View().Zoom, 1e-9)
	s.Wheel(false)
	require.InDelta(t, 1.2, s.View().Zoom, 1e-9)

	s.BeginPan(10, 10)
	s.PanTo(20, 5)
	require.Equal(t, 10.0, s.View().PanX)
	require.Equal(t, -5.0, s.View().PanY)

	s.ResetView()
	v := s.View()
	require.Equal(t, 1.0, v.Zoom)
	require.Equal(t, 0.0, v.PanX)
	require.Equal(t, 0.0, v.PanY)
}

func TestSession_LedgerSurvivesDirectoryReload(t *testing.T) {
	s := loadedSession(t)
	_, _ = s.Click(SideA, 10, 10)
	_, _ = s.Click(SideB, 20, 20)

	require.NoError(t, s.Load(frame.NewSequence("/other", []string{"/other/a1.png", "/other/a2.png"})))
	v := s.View()
	require.Equal(t, 1, v.Recorded)
	require.Equal(t, "/other", v.Directory)
	require.Equal(t, 0, v.PairIndex)
}

func TestSession_MarkersStayWithTheirDirectory(t *testing.T) {
	s := loadedSession(t)
	_, err := s.Click(SideA, 10, 10)
	require.NoError(t, err)
	res, err := s.Click(SideB, 20, 20)
	require.NoError(t, err)
	require.Equal(t, "/frames", res.Record.Directory)

	require.NoError(t, s.Load(frame.NewSequence("/other", []string{"/other/a1.png", "/other/a2.png"})))
	require.Empty(t, s.Markers(SideA))
	require.Empty(t, s.Markers(SideB))

	// The same position in a different directory is a fresh point.
	res, err = s.Click(SideA, 12, 12)
	require.NoError(t, err)
	require.Equal(t, OutcomePending, res.Outcome)
	res, err = s.Click(SideB, 20, 20)
	require.NoError(t, err)
	require.Equal(t, "/other", res.Record.Directory)

	// Returning to the first directory shows its points again.
	require.NoError(t, s.Load(threeFrames()))
	require.Equal(t, []Marker{{Point: correspondence.Point{X: 10, Y: 10}, Kind: MarkerRecorded}}, s.Markers(SideA))
	_, err = s.Click(SideA, 12, 12)
	require.ErrorIs(t, err, ErrDuplicatePoint)
}

func TestNew_InvalidOptionsFallBack(t *testing.T) {
	s := New(Options{})
	require.Equal(t, DefaultOptions(), s.opts)
}
