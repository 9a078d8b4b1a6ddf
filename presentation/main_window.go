package presentation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"annotator-go/core/command"
	"annotator-go/core/event"
	"annotator-go/core/state"
	"annotator-go/domain/annotation"
	"annotator-go/domain/correspondence"
)

const appTitle = "Frame Annotator"

// MainWindow is the main application window.
type MainWindow struct {
	window fyne.Window
	bridge *UIEventBridge
	logger *slog.Logger

	// UI components - Toolbar
	openBtn    *widget.Button
	nextBtn    *widget.Button
	saveBtn    *widget.Button
	zoomInBtn  *widget.Button
	zoomOutBtn *widget.Button
	resetBtn   *widget.Button

	// UI components - Frames
	panels [2]*FramePanel
	titles [2]*widget.Label

	// UI components - Status bar
	statusLabel  *widget.Label
	pointerLabel *widget.Label

	// Data, only touched on the UI thread
	view     annotation.View
	lastSave time.Time

	// Cleanup
	cleanupOnce sync.Once
}

// MainWindowConfig holds configuration for MainWindow.
type MainWindowConfig struct {
	App    fyne.App
	Bridge *UIEventBridge
	Images ImageSource
	Logger *slog.Logger
}

// NewMainWindow creates a new main window.
func NewMainWindow(cfg *MainWindowConfig) *MainWindow {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &MainWindow{
		window: cfg.App.NewWindow(appTitle),
		bridge: cfg.Bridge,
		logger: cfg.Logger,
	}

	w.init(cfg.Images)
	w.setupEventCallbacks()

	w.window.SetOnClosed(func() {
		w.Cleanup()
		cfg.App.Quit()
	})

	return w
}

func (w *MainWindow) init(images ImageSource) {
	toolbar := w.createToolbar()

	frames := make([]fyne.CanvasObject, 0, 2)
	for i, side := range []command.Side{command.SideA, command.SideB} {
		panel := NewFramePanel(images, w.logger)
		panel.SetHandlers(w.panelHandlers(side))
		title := widget.NewLabelWithStyle(frameTitle(0), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

		w.panels[i] = panel
		w.titles[i] = title
		frames = append(frames, container.NewBorder(title, nil, nil, nil, panel))
	}

	w.statusLabel = widget.NewLabel(statusText(w.view, w.lastSave))
	w.pointerLabel = widget.NewLabel("")
	statusBar := container.NewHBox(w.statusLabel, layout.NewSpacer(), w.pointerLabel)

	content := container.NewBorder(toolbar, statusBar, nil, nil, container.NewGridWithColumns(2, frames...))
	w.window.SetContent(content)
	w.window.Resize(fyne.NewSize(1100, 650))
	w.applyView(w.view)
}

func (w *MainWindow) panelHandlers(side command.Side) PanelHandlers {
	return PanelHandlers{
		OnClick: func(x, y float64) {
			_ = w.bridge.Click(side, x, y)
		},
		OnPanBegin: func(x, y float64) {
			_ = w.bridge.BeginPan(x, y)
		},
		OnPanMove: func(x, y float64) {
			_ = w.bridge.PanTo(x, y)
		},
		OnPanEnd: func() {
			_ = w.bridge.EndPan()
		},
		OnWheel: func(in bool) {
			_ = w.bridge.Wheel(in)
		},
		OnHover: func(x, y float64, inside bool) {
			w.pointerLabel.SetText(pointerText(w.view.Frame(toAnnotationSide(side)), x, y, inside))
		},
	}
}

func (w *MainWindow) setupEventCallbacks() {
	if w.bridge == nil {
		return
	}

	w.bridge.SetCallbacks(&UICallbacks{
		OnSessionUpdated: func(view annotation.View) {
			// UI update must run on main thread
			fyne.Do(func() {
				w.applyView(view)
			})
		},
		OnFramesLoaded: func(dir string, count int) {
			w.logger.Info("Frames loaded", "dir", dir, "count", count)
		},
		OnFramesRejected: func(dir string, count int, err error) {
			w.logger.Warn("Frames rejected", "dir", dir, "count", count, "error", err)
			fyne.Do(func() {
				dialog.ShowInformation("Not Enough Frames",
					fmt.Sprintf("%s contains %d image(s).\nAt least two frames are needed.", dir, count),
					w.window)
			})
		},
		OnPointPending: func(frame int, p correspondence.Point) {
			w.logger.Debug("Point pending", "frame", frame, "point", p)
		},
		OnCorrespondenceRecorded: func(rec correspondence.Record) {
			w.logger.Debug("Correspondence recorded", "seq", rec.Seq, "row", rec.Row())
		},
		OnDuplicateRejected: func(frame int, p correspondence.Point) {
			fyne.Do(func() {
				dialog.ShowInformation("Duplicate Point", "This point has already been recorded!", w.window)
			})
		},
		OnExportSucceeded: func(trigger event.SaveTrigger, written, drained int) {
			fyne.Do(func() {
				w.lastSave = time.Now()
				w.statusLabel.SetText(statusText(w.view, w.lastSave))
				if trigger == event.TriggerManual {
					dialog.ShowInformation("Saved", "CSV saved!", w.window)
				}
			})
		},
		OnExportFailed: func(trigger event.SaveTrigger, err error) {
			fyne.Do(func() {
				dialog.ShowError(fmt.Errorf("%s save failed: %w", trigger, err), w.window)
			})
		},
		OnOperationFailed: func(operation string, err error) {
			fyne.Do(func() {
				dialog.ShowError(fmt.Errorf("%s: %w", operation, err), w.window)
			})
		},
	})
}

func (w *MainWindow) createToolbar() fyne.CanvasObject {
	w.openBtn = widget.NewButtonWithIcon("Open Folder", theme.FolderOpenIcon(), w.handleOpenFolder)
	w.nextBtn = widget.NewButtonWithIcon("Next Pair", theme.NavigateNextIcon(), func() {
		_ = w.bridge.NextPair()
	})
	w.saveBtn = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		_ = w.bridge.Save()
	})
	w.zoomInBtn = widget.NewButtonWithIcon("Zoom In", theme.ZoomInIcon(), func() {
		_ = w.bridge.ZoomIn()
	})
	w.zoomOutBtn = widget.NewButtonWithIcon("Zoom Out", theme.ZoomOutIcon(), func() {
		_ = w.bridge.ZoomOut()
	})
	w.resetBtn = widget.NewButtonWithIcon("Reset View", theme.ZoomFitIcon(), func() {
		_ = w.bridge.ResetView()
	})

	// [Open] [Next] | [Save] | spacer | [Zoom In] [Zoom Out] [Reset]
	return container.NewHBox(
		w.openBtn,
		w.nextBtn,
		widget.NewSeparator(),
		w.saveBtn,
		layout.NewSpacer(),
		w.zoomInBtn,
		w.zoomOutBtn,
		w.resetBtn,
	)
}

func (w *MainWindow) handleOpenFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if uri == nil {
			w.logger.Info("Folder selection cancelled")
			return
		}

		dir := uri.Path()
		// Listing touches the disk; failures come back as events.
		go func() {
			_ = w.bridge.LoadDirectory(dir)
		}()
	}, w.window)
}

// applyView pushes a session snapshot into the widgets.
func (w *MainWindow) applyView(view annotation.View) {
	w.view = view

	for i, side := range []annotation.Side{annotation.SideA, annotation.SideB} {
		fv := view.Frame(side)
		w.titles[i].SetText(frameTitle(fv.Number))
		w.panels[i].SetView(fv)
	}

	setEnabled(w.nextBtn, view.Loaded && view.HasNextPair)
	for _, btn := range []*widget.Button{w.zoomInBtn, w.zoomOutBtn, w.resetBtn} {
		setEnabled(btn, view.Loaded)
	}

	w.statusLabel.SetText(statusText(view, w.lastSave))
	w.window.SetTitle(windowTitle(view))
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

func toAnnotationSide(side command.Side) annotation.Side {
	if side == command.SideB {
		return annotation.SideB
	}
	return annotation.SideA
}

// frameTitle returns a panel title; zero means no frame.
func frameTitle(number int) string {
	if number <= 0 {
		return "Frame -"
	}
	return fmt.Sprintf("Frame %d", number)
}

func windowTitle(view annotation.View) string {
	if !view.Loaded || view.Directory == "" {
		return appTitle
	}
	return fmt.Sprintf("%s - %s", appTitle, filepath.Base(view.Directory))
}

// statusText summarizes the session for the status bar.
func statusText(view annotation.View, lastSave time.Time) string {
	if !view.Loaded {
		return "Open a folder of frames to start"
	}

	capture := "click a point on the left frame"
	if view.Capture == state.StatePending {
		capture = "click the matching point on the right frame"
	}

	saved := "not saved yet"
	if !lastSave.IsZero() {
		saved = "last save " + lastSave.Format(time.TimeOnly)
	}

	return fmt.Sprintf("Pair %d/%d | %s | zoom %.0f%% | %d recorded, %d unsaved | %s",
		view.PairIndex+1, view.FrameCount-1, capture, view.Zoom*100, view.Recorded, view.Unsaved, saved)
}

// pointerText shows the natural pixel under the pointer.
func pointerText(fv annotation.FrameView, x, y float64, inside bool) string {
	if !inside || fv.Number <= 0 || fv.Transform.Scale <= 0 {
		return ""
	}
	p := fv.Transform.NaturalPixel(x, y)
	return fmt.Sprintf("Frame %d (%d, %d)", fv.Number, p.X, p.Y)
}

// Public methods

// Show displays the main window.
func (w *MainWindow) Show() {
	w.window.Show()
}

// Cleanup releases resources.
func (w *MainWindow) Cleanup() {
	w.cleanupOnce.Do(func() {
		w.logger.Info("Starting cleanup...")

		if w.bridge != nil {
			w.bridge.Close()
		}

		w.logger.Info("Cleanup completed")
	})
}
