// Package correspondence defines matched points between frames and the in-memory ledger that holds them.
package correspondence

import (
	"fmt"
	"strconv"
	"time"
)

// Point is an integer pixel position in a frame's natural resolution.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Half is a point captured on the left frame, waiting for its partner.
type Half struct {
	Frame int
	Point Point
}

// Correspondence claims that a point in FrameA matches a point in FrameB.
// Frame numbers are 1-based.
type Correspondence struct {
	FrameA int
	XA, YA int
	FrameB int
	XB, YB int
}

// Complete combines a pending half with the partner point on frameB.
func Complete(h Half, frameB int, p Point) Correspondence {
	return Correspondence{
		FrameA: h.Frame,
		XA:     h.Point.X,
		YA:     h.Point.Y,
		FrameB: frameB,
		XB:     p.X,
		YB:     p.Y,
	}
}

// PointA returns the endpoint on FrameA.
func (c Correspondence) PointA() Point {
	return Point{X: c.XA, Y: c.YA}
}

// PointB returns the endpoint on FrameB.
func (c Correspondence) PointB() Point {
	return Point{X: c.XB, Y: c.YB}
}

// Header is the fixed export column order.
var Header = []string{"FRAME1", "X1", "Y1", "FRAME2", "X2", "Y2"}

// Row renders the correspondence in Header column order.
func (c Correspondence) Row() []string {
	return []string{
		strconv.Itoa(c.FrameA),
		strconv.Itoa(c.XA),
		strconv.Itoa(c.YA),
		strconv.Itoa(c.FrameB),
		strconv.Itoa(c.XB),
		strconv.Itoa(c.YB),
	}
}

func (c Correspondence) String() string {
	return fmt.Sprintf("%d%s->%d%s", c.FrameA, c.PointA(), c.FrameB, c.PointB())
}

// Record is a correspondence stored in the ledger.
type Record struct {
	// Seq is unique and increasing within one ledger.
	Seq        uint64
	RecordedAt time.Time
	// Directory is the frame directory the correspondence was made in.
	Directory string
	Correspondence
}
