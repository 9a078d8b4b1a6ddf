package viewport

import (
	"image"
	"math"
)

// Transform maps natural image coordinates to display coordinates:
//
//	display = offset + scale * natural
//
// where scale = zoom * fit and offset is the pan.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewTransform composes translate(pan) then scale(zoom) with the base fit scale.
func NewTransform(zoom, fit, panX, panY float64) Transform {
	return Transform{
		Scale:   zoom * fit,
		OffsetX: panX,
		OffsetY: panY,
	}
}

// ToDisplay maps a natural point to display space.
func (t Transform) ToDisplay(x, y float64) (float64, float64) {
	return t.OffsetX + t.Scale*x, t.OffsetY + t.Scale*y
}

// ToNatural maps a display point back to natural space. It is the exact
// inverse of ToDisplay for Scale > 0.
func (t Transform) ToNatural(x, y float64) (float64, float64) {
	if t.Scale == 0 {
		return 0, 0
	}
	return (x - t.OffsetX) / t.Scale, (y - t.OffsetY) / t.Scale
}

// NaturalPixel maps a display point to the nearest natural pixel.
func (t Transform) NaturalPixel(x, y float64) image.Point {
	nx, ny := t.ToNatural(x, y)
	return image.Pt(int(math.Round(nx)), int(math.Round(ny)))
}

// Scaled returns the transform expressed in a device space that is s times
// the display space (e.g. canvas pixels on a HiDPI screen).
func (t Transform) Scaled(s float64) Transform {
	return Transform{
		Scale:   t.Scale * s,
		OffsetX: t.OffsetX * s,
		OffsetY: t.OffsetY * s,
	}
}

// FitScale returns the base scale that shrinks an image so its longer side
// fits budget display units. It never enlarges.
func FitScale(width, height int, budget float64) float64 {
	longer := max(width, height)
	if longer <= 0 || budget <= 0 {
		return 1
	}
	return math.Min(1, budget/float64(longer))
}
