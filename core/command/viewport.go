package command

// ZoomIn multiplies the zoom by the zoom step.
type ZoomIn struct{}

func (c *ZoomIn) CommandName() string {
	return "ZoomIn"
}

// ZoomOut divides the zoom by the zoom step.
type ZoomOut struct{}

func (c *ZoomOut) CommandName() string {
	return "ZoomOut"
}

// Wheel applies one mouse wheel notch.
type Wheel struct {
	In bool
}

func (c *Wheel) CommandName() string {
	return "Wheel"
}

// ResetView restores zoom 1 and no pan.
type ResetView struct{}

func (c *ResetView) CommandName() string {
	return "ResetView"
}

// BeginPan starts a pan drag at a screen position.
type BeginPan struct {
	X, Y float64
}

func (c *BeginPan) CommandName() string {
	return "BeginPan"
}

// PanTo moves an active pan drag to a screen position.
type PanTo struct {
	X, Y float64
}

func (c *PanTo) CommandName() string {
	return "PanTo"
}

// EndPan finishes a pan drag.
type EndPan struct{}

func (c *EndPan) CommandName() string {
	return "EndPan"
}
