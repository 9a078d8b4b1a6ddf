// Package presentation provides the UI layer with event bridging to the application layer.
package presentation

import (
	"log/slog"
	"sync"

	"annotator-go/core/command"
	"annotator-go/core/event"
	"annotator-go/core/eventbus"
	"annotator-go/domain/annotation"
	"annotator-go/domain/correspondence"
)

// Dispatcher accepts commands for the application layer.
type Dispatcher interface {
	Dispatch(cmd command.Command) error
}

// UIEventBridge bridges UI events to the application layer and routes events back to UI.
// It provides a clean separation between UI and business logic.
type UIEventBridge struct {
	coordinator Dispatcher
	eventBus    eventbus.EventBus
	logger      *slog.Logger

	// UI callbacks - set by UI components
	callbacks   *UICallbacks
	callbacksMu sync.RWMutex

	// Subscription management
	subscriptionID string
}

// UICallbacks contains callbacks for UI updates. They are invoked on the
// event bus goroutine; UI changes must hop to the main thread.
type UICallbacks struct {
	OnSessionUpdated func(view annotation.View)

	// Frames
	OnFramesLoaded   func(dir string, count int)
	OnFramesRejected func(dir string, count int, err error)

	// Capture
	OnPointPending           func(frame int, p correspondence.Point)
	OnCorrespondenceRecorded func(rec correspondence.Record)
	OnDuplicateRejected      func(frame int, p correspondence.Point)

	// Export
	OnExportSucceeded func(trigger event.SaveTrigger, written, drained int)
	OnExportFailed    func(trigger event.SaveTrigger, err error)

	OnOperationFailed func(operation string, err error)
}

// BridgeConfig holds configuration for UIEventBridge.
type BridgeConfig struct {
	Coordinator Dispatcher
	EventBus    eventbus.EventBus
	Logger      *slog.Logger
}

// NewUIEventBridge creates a new UI event bridge.
func NewUIEventBridge(cfg *BridgeConfig) *UIEventBridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &UIEventBridge{
		coordinator: cfg.Coordinator,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
		callbacks:   &UICallbacks{},
	}

	// Subscribe to events
	if b.eventBus != nil {
		b.subscriptionID = b.eventBus.Subscribe(b.handleEvent)
	}

	return b
}

// SetCallbacks sets the UI callbacks.
func (b *UIEventBridge) SetCallbacks(callbacks *UICallbacks) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = callbacks
}

// Close unsubscribes from the event bus.
func (b *UIEventBridge) Close() {
	if b.eventBus != nil && b.subscriptionID != "" {
		b.eventBus.Unsubscribe(b.subscriptionID)
	}
}

// Command dispatching methods

func (b *UIEventBridge) dispatch(cmd command.Command) error {
	if b.coordinator == nil {
		return nil
	}
	err := b.coordinator.Dispatch(cmd)
	if err != nil {
		b.logger.Warn("Dispatch failed", "command", cmd.CommandName(), "error", err)
	}
	return err
}

// LoadDirectory lists a directory's frames and starts annotating them.
func (b *UIEventBridge) LoadDirectory(dir string) error {
	return b.dispatch(&command.LoadDirectory{Dir: dir})
}

// NextPair advances to the next frame pair.
func (b *UIEventBridge) NextPair() error {
	return b.dispatch(&command.NextPair{})
}

// Click reports a click on a frame panel at panel coordinates.
func (b *UIEventBridge) Click(side command.Side, x, y float64) error {
	return b.dispatch(command.NewClick(side, x, y))
}

// ZoomIn zooms both frames in by one step.
func (b *UIEventBridge) ZoomIn() error {
	return b.dispatch(&command.ZoomIn{})
}

// ZoomOut zooms both frames out by one step.
func (b *UIEventBridge) ZoomOut() error {
	return b.dispatch(&command.ZoomOut{})
}

// Wheel zooms by one wheel notch.
func (b *UIEventBridge) Wheel(in bool) error {
	return b.dispatch(&command.Wheel{In: in})
}

// ResetView restores zoom 1 and no pan.
func (b *UIEventBridge) ResetView() error {
	return b.dispatch(&command.ResetView{})
}

// BeginPan starts a pan gesture at panel coordinates.
func (b *UIEventBridge) BeginPan(x, y float64) error {
	return b.dispatch(&command.BeginPan{X: x, Y: y})
}

// PanTo moves an active pan gesture.
func (b *UIEventBridge) PanTo(x, y float64) error {
	return b.dispatch(&command.PanTo{X: x, Y: y})
}

// EndPan finishes a pan gesture.
func (b *UIEventBridge) EndPan() error {
	return b.dispatch(&command.EndPan{})
}

// Save writes all correspondences to the export file.
func (b *UIEventBridge) Save() error {
	return b.dispatch(&command.Save{})
}

// Event handling

func (b *UIEventBridge) handleEvent(e event.Event) {
	b.callbacksMu.RLock()
	callbacks := b.callbacks
	b.callbacksMu.RUnlock()

	if callbacks == nil {
		return
	}

	switch evt := e.(type) {
	case *event.SessionUpdated:
		if callbacks.OnSessionUpdated != nil {
			callbacks.OnSessionUpdated(evt.View)
		}

	case *event.FramesLoaded:
		if callbacks.OnFramesLoaded != nil {
			callbacks.OnFramesLoaded(evt.Dir, evt.Count)
		}

	case *event.FramesRejected:
		if callbacks.OnFramesRejected != nil {
			callbacks.OnFramesRejected(evt.Dir, evt.Count, evt.Error)
		}

	case *event.PointPending:
		if callbacks.OnPointPending != nil {
			callbacks.OnPointPending(evt.Frame, evt.Point)
		}

	case *event.CorrespondenceRecorded:
		if callbacks.OnCorrespondenceRecorded != nil {
			callbacks.OnCorrespondenceRecorded(evt.Record)
		}

	case *event.DuplicateRejected:
		if callbacks.OnDuplicateRejected != nil {
			callbacks.OnDuplicateRejected(evt.Frame, evt.Point)
		}

	case *event.ExportSucceeded:
		if callbacks.OnExportSucceeded != nil {
			callbacks.OnExportSucceeded(evt.Trigger, evt.Written, evt.Drained)
		}

	case *event.ExportFailed:
		if callbacks.OnExportFailed != nil {
			callbacks.OnExportFailed(evt.Trigger, evt.Error)
		}

	case *event.OperationFailed:
		if callbacks.OnOperationFailed != nil {
			callbacks.OnOperationFailed(evt.Operation, evt.Error)
		}
	}
}
