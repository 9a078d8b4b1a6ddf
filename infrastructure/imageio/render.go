package imageio

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/gift"

	"annotator-go/domain/annotation"
	"annotator-go/domain/viewport"
)

// Background fills the parts of a panel not covered by the frame.
var Background = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}

// markerStyle describes how one marker kind is drawn, in display units.
type markerStyle struct {
	fill        color.Color // nil for an unfilled ring
	radius      float64
	border      color.Color
	borderWidth float64
}

var markerStyles = map[annotation.MarkerKind]markerStyle{
	annotation.MarkerRecorded: {
		fill:        color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 204},
		radius:      6,
		border:      color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 204},
		borderWidth: 1.5,
	},
	annotation.MarkerNew: {
		fill:        color.NRGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
		radius:      4,
		border:      color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		borderWidth: 1.5,
	},
	annotation.MarkerPending: {
		radius:      7,
		border:      color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
		borderWidth: 2,
	},
}

// Frame is everything needed to draw one panel.
type Frame struct {
	Image     image.Image
	Transform viewport.Transform
	Markers   []annotation.Marker
	// MarkerScale multiplies marker sizes, e.g. for HiDPI canvases. Zero means 1.
	MarkerScale float64
}

// Render draws f into a w x h raster. The transform maps natural image
// coordinates, relative to the image's top-left corner, to raster pixels.
func Render(w, h int, f Frame) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	if w <= 0 || h <= 0 {
		return dst
	}

	if f.Image != nil && f.Transform.Scale > 0 {
		drawFrame(dst, f.Image, f.Transform)
	}

	scale := f.MarkerScale
	if scale <= 0 {
		scale = 1
	}
	for _, m := range f.Markers {
		x, y := f.Transform.ToDisplay(float64(m.Point.X), float64(m.Point.Y))
		drawMarker(dst, x, y, markerStyles[m.Kind], scale)
	}
	return dst
}

// VisibleRegion returns the part of a width x height image that t maps into
// a w x h raster, in natural coordinates.
func VisibleRegion(width, height, w, h int, t viewport.Transform) image.Rectangle {
	if t.Scale <= 0 {
		return image.Rectangle{}
	}
	x0, y0 := t.ToNatural(0, 0)
	x1, y1 := t.ToNatural(float64(w), float64(h))
	r := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	)
	return r.Intersect(image.Rect(0, 0, width, height))
}

func drawFrame(dst *image.RGBA, src image.Image, t viewport.Transform) {
	b := src.Bounds()
	region := VisibleRegion(b.Dx(), b.Dy(), dst.Bounds().Dx(), dst.Bounds().Dy(), t)
	if region.Empty() {
		return
	}

	dx0, dy0 := t.ToDisplay(float64(region.Min.X), float64(region.Min.Y))
	dx1, dy1 := t.ToDisplay(float64(region.Max.X), float64(region.Max.Y))
	target := image.Rect(
		int(math.Round(dx0)), int(math.Round(dy0)),
		int(math.Round(dx1)), int(math.Round(dy1)),
	)
	if target.Dx() <= 0 || target.Dy() <= 0 {
		return
	}

	resampling := gift.LinearResampling
	if t.Scale > 1 {
		resampling = gift.NearestNeighborResampling
	}
	g := gift.New(
		gift.Crop(region.Add(b.Min)),
		gift.Resize(target.Dx(), target.Dy(), resampling),
	)
	scaled := image.NewRGBA(g.Bounds(b))
	g.Draw(scaled, src)

	draw.Draw(dst, target, scaled, scaled.Bounds().Min, draw.Over)
}

func drawMarker(dst *image.RGBA, x, y float64, style markerStyle, scale float64) {
	r := style.radius * scale
	bw := style.borderWidth * scale

	if style.fill != nil {
		fillMask := &ring{cx: x, cy: y, inner: -1, outer: r}
		draw.DrawMask(dst, fillMask.Bounds(), image.NewUniform(style.fill), image.Point{}, fillMask, fillMask.Bounds().Min, draw.Over)
	}
	if style.border != nil && bw > 0 {
		inner, outer := r, r+bw
		if style.fill == nil {
			inner, outer = r-bw, r
		}
		borderMask := &ring{cx: x, cy: y, inner: inner, outer: outer}
		draw.DrawMask(dst, borderMask.Bounds(), image.NewUniform(style.border), image.Point{}, borderMask, borderMask.Bounds().Min, draw.Over)
	}
}

// ring is an alpha mask that is opaque where inner < distance <= outer from
// the center. A negative inner radius gives a filled disc.
type ring struct {
	cx, cy       float64
	inner, outer float64
}

func (r *ring) ColorModel() color.Model {
	return color.AlphaModel
}

func (r *ring) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.cx-r.outer)), int(math.Floor(r.cy-r.outer)),
		int(math.Ceil(r.cx+r.outer))+1, int(math.Ceil(r.cy+r.outer))+1,
	)
}

func (r *ring) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - r.cx
	dy := float64(y) + 0.5 - r.cy
	d := math.Hypot(dx, dy)
	if d > r.inner && d <= r.outer {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
