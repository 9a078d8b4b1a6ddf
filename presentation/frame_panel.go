package presentation

import (
	"image"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"annotator-go/domain/annotation"
	"annotator-go/infrastructure/imageio"
)

// ImageSource loads decoded frames.
type ImageSource interface {
	Load(path string) (image.Image, error)
}

// PanelHandlers receives the input gestures of a FramePanel, in panel coordinates.
type PanelHandlers struct {
	OnClick    func(x, y float64)
	OnPanBegin func(x, y float64)
	OnPanMove  func(x, y float64)
	OnPanEnd   func()
	OnWheel    func(in bool)
	OnHover    func(x, y float64, inside bool)
}

// gesture tracks which mouse interaction is in progress.
type gesture int

const (
	gestureNone gesture = iota
	gestureClick
	gesturePan
)

// FramePanel displays one frame of the current pair with its markers and
// turns mouse input into annotation and viewport gestures.
type FramePanel struct {
	widget.BaseWidget

	raster *canvas.Raster
	images ImageSource
	logger *slog.Logger

	// uiDo runs a function on the UI goroutine.
	uiDo func(func())

	mu       sync.RWMutex
	view     annotation.FrameView
	img      image.Image
	loadGen  uint64
	handlers PanelHandlers

	gesture gesture
	// panned is set once a pan gesture has moved, so the release is not a click.
	panned bool
}

// NewFramePanel creates an empty frame panel.
func NewFramePanel(images ImageSource, logger *slog.Logger) *FramePanel {
	if logger == nil {
		logger = slog.Default()
	}
	p := &FramePanel{
		images: images,
		logger: logger,
		uiDo:   fyne.Do,
	}
	p.raster = canvas.NewRaster(p.generate)
	p.ExtendBaseWidget(p)
	return p
}

// SetHandlers sets the gesture handlers.
func (p *FramePanel) SetHandlers(h PanelHandlers) {
	p.mu.Lock()
	p.handlers = h
	p.mu.Unlock()
}

// SetView updates what the panel displays. When the frame path changes the
// old image is dropped and the new one is decoded off the UI goroutine.
func (p *FramePanel) SetView(fv annotation.FrameView) {
	p.mu.Lock()
	changed := fv.Path != p.view.Path
	p.view = fv
	var gen uint64
	if changed {
		p.img = nil
		p.loadGen++
		gen = p.loadGen
	}
	p.mu.Unlock()

	if changed && fv.Path != "" && p.images != nil {
		go p.loadFrame(fv.Path, gen)
	}
	p.raster.Refresh()
}

// loadFrame decodes path and hands the image to the UI goroutine.
func (p *FramePanel) loadFrame(path string, gen uint64) {
	img, err := p.images.Load(path)
	if err != nil {
		p.logger.Error("Failed to load frame", "path", path, "error", err)
		return
	}
	p.uiDo(func() {
		if p.setImage(gen, img) {
			p.raster.Refresh()
		}
	})
}

// setImage installs img unless a newer SetView superseded load gen.
func (p *FramePanel) setImage(gen uint64, img image.Image) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.loadGen {
		return false
	}
	p.img = img
	return true
}

// View returns the displayed frame view.
func (p *FramePanel) View() annotation.FrameView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view
}

// generate renders the raster. w and h are device pixels.
func (p *FramePanel) generate(w, h int) image.Image {
	p.mu.RLock()
	fv := p.view
	img := p.img
	p.mu.RUnlock()

	scale := deviceScale(w, p.Size().Width)
	return imageio.Render(w, h, imageio.Frame{
		Image:       img,
		Transform:   fv.Transform.Scaled(scale),
		Markers:     fv.Markers,
		MarkerScale: scale,
	})
}

// deviceScale returns raster pixels per panel unit.
func deviceScale(pixels int, units float32) float64 {
	if pixels <= 0 || units <= 0 {
		return 1
	}
	return float64(pixels) / float64(units)
}

// CreateRenderer creates the widget renderer.
func (p *FramePanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.raster)
}

// MinSize returns the minimum size of the panel.
func (p *FramePanel) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// Cursor implements desktop.Cursorable.
func (p *FramePanel) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

func (p *FramePanel) getHandlers() PanelHandlers {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.handlers
}

// Tapped handles a primary click.
func (p *FramePanel) Tapped(e *fyne.PointEvent) {
	if p.gesture == gesturePan || p.panned {
		p.panned = false
		return
	}
	if h := p.getHandlers(); h.OnClick != nil {
		h.OnClick(float64(e.Position.X), float64(e.Position.Y))
	}
}

// isPanButton reports whether a press starts a pan: the middle button, or
// the primary button with ctrl held.
func isPanButton(button desktop.MouseButton, modifier fyne.KeyModifier) bool {
	if button == desktop.MouseButtonTertiary {
		return true
	}
	return button == desktop.MouseButtonPrimary && modifier&fyne.KeyModifierControl != 0
}

// MouseDown implements desktop.Mouseable.
func (p *FramePanel) MouseDown(e *desktop.MouseEvent) {
	if !isPanButton(e.Button, e.Modifier) {
		p.gesture = gestureClick
		p.panned = false
		return
	}
	p.gesture = gesturePan
	p.panned = false
	if h := p.getHandlers(); h.OnPanBegin != nil {
		h.OnPanBegin(float64(e.Position.X), float64(e.Position.Y))
	}
}

// MouseUp implements desktop.Mouseable.
func (p *FramePanel) MouseUp(e *desktop.MouseEvent) {
	if p.gesture == gesturePan {
		// A ctrl+click that never moved still must not record a point.
		p.panned = e.Button == desktop.MouseButtonPrimary
		p.endPan()
	}
	p.gesture = gestureNone
}

func (p *FramePanel) panMove(pos fyne.Position) {
	if p.gesture != gesturePan {
		return
	}
	p.panned = true
	if h := p.getHandlers(); h.OnPanMove != nil {
		h.OnPanMove(float64(pos.X), float64(pos.Y))
	}
}

func (p *FramePanel) endPan() {
	if h := p.getHandlers(); h.OnPanEnd != nil {
		h.OnPanEnd()
	}
}

// Dragged implements fyne.Draggable.
func (p *FramePanel) Dragged(e *fyne.DragEvent) {
	p.panMove(e.Position)
}

// DragEnd implements fyne.Draggable.
func (p *FramePanel) DragEnd() {
	if p.gesture == gesturePan {
		p.endPan()
		p.gesture = gestureNone
	}
}

// MouseIn implements desktop.Hoverable.
func (p *FramePanel) MouseIn(e *desktop.MouseEvent) {
	p.hover(e.Position, true)
}

// MouseMoved implements desktop.Hoverable.
func (p *FramePanel) MouseMoved(e *desktop.MouseEvent) {
	p.panMove(e.Position)
	p.hover(e.Position, true)
}

// MouseOut implements desktop.Hoverable.
func (p *FramePanel) MouseOut() {
	p.hover(fyne.Position{}, false)
}

func (p *FramePanel) hover(pos fyne.Position, inside bool) {
	if h := p.getHandlers(); h.OnHover != nil {
		h.OnHover(float64(pos.X), float64(pos.Y), inside)
	}
}

// Scrolled implements fyne.Scrollable. Scrolling up zooms in.
func (p *FramePanel) Scrolled(e *fyne.ScrollEvent) {
	if e.Scrolled.DY == 0 {
		return
	}
	if h := p.getHandlers(); h.OnWheel != nil {
		h.OnWheel(e.Scrolled.DY > 0)
	}
}

var (
	_ fyne.Tappable      = (*FramePanel)(nil)
	_ fyne.Draggable     = (*FramePanel)(nil)
	_ fyne.Scrollable    = (*FramePanel)(nil)
	_ desktop.Mouseable  = (*FramePanel)(nil)
	_ desktop.Hoverable  = (*FramePanel)(nil)
	_ desktop.Cursorable = (*FramePanel)(nil)
)
