// Package viewport holds the zoom/pan state shared by both frame panels and the
// pure display <-> natural coordinate transform.
package viewport

// Default steps.
const (
	DefaultZoomStep  = 1.2
	DefaultWheelStep = 1.1
	DefaultFitBudget = 500.0
)

// Viewport is the zoom factor and pan offset (display units) applied to both
// frames of the current pair, plus the state of an active pan drag.
// Zoom is not clamped.
type Viewport struct {
	Zoom float64
	PanX float64
	PanY float64

	panning      bool
	lastX, lastY float64
}

// New returns the default viewport: zoom 1, no pan.
func New() Viewport {
	return Viewport{Zoom: 1}
}

// Reset restores zoom 1 and pan (0,0) and ends any pan drag.
func (v *Viewport) Reset() {
	*v = New()
}

// ZoomBy multiplies the zoom factor. Non-positive factors are ignored.
func (v *Viewport) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	v.Zoom *= factor
}

// Wheel applies one wheel notch: multiply by step when zooming in,
// divide by step otherwise.
func (v *Viewport) Wheel(in bool, step float64) {
	if step <= 0 {
		return
	}
	if in {
		v.ZoomBy(step)
	} else {
		v.ZoomBy(1 / step)
	}
}

// BeginPan starts a pan drag at the given screen position.
func (v *Viewport) BeginPan(x, y float64) {
	v.panning = true
	v.lastX, v.lastY = x, y
}

// PanTo accumulates the screen delta since the last position.
// Returns false when no pan drag is active.
func (v *Viewport) PanTo(x, y float64) bool {
	if !v.panning {
		return false
	}
	v.PanX += x - v.lastX
	v.PanY += y - v.lastY
	v.lastX, v.lastY = x, y
	return true
}

// EndPan finishes the pan drag.
func (v *Viewport) EndPan() {
	v.panning = false
}

// Panning reports whether a pan drag is active.
func (v Viewport) Panning() bool {
	return v.panning
}

// Transform composes the viewport with an image's fit-to-display scale.
func (v Viewport) Transform(fit float64) Transform {
	return NewTransform(v.Zoom, fit, v.PanX, v.PanY)
}
