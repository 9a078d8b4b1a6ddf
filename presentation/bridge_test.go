package presentation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"annotator-go/core/command"
	"annotator-go/core/event"
	"annotator-go/core/eventbus"
	"annotator-go/domain/annotation"
	"annotator-go/domain/correspondence"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	cmds []command.Command
	err  error
}

func (d *recordingDispatcher) Dispatch(cmd command.Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmds = append(d.cmds, cmd)
	return d.err
}

func (d *recordingDispatcher) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.cmds))
	for i, c := range d.cmds {
		out[i] = c.CommandName()
	}
	return out
}

func TestUICallbacks_Nil(t *testing.T) {
	// Test that nil callbacks don't panic
	b := NewUIEventBridge(&BridgeConfig{})

	b.handleEvent(event.NewSessionUpdated("r1", annotation.View{}))
	b.handleEvent(event.NewExportFailed("r1", event.TriggerManual, errors.New("disk full")))

	b.SetCallbacks(nil)
	b.handleEvent(event.NewFramesLoaded("r1", "/frames", 2))
}

func TestUIEventBridge_Commands(t *testing.T) {
	d := &recordingDispatcher{}
	b := NewUIEventBridge(&BridgeConfig{Coordinator: d})

	_ = b.LoadDirectory("/frames")
	_ = b.Click(command.SideB, 3, 4)
	_ = b.NextPair()
	_ = b.ZoomIn()
	_ = b.ZoomOut()
	_ = b.Wheel(true)
	_ = b.ResetView()
	_ = b.BeginPan(1, 1)
	_ = b.PanTo(2, 2)
	_ = b.EndPan()
	_ = b.Save()

	want := []string{
		"LoadDirectory", "Click", "NextPair", "ZoomIn", "ZoomOut", "Wheel",
		"ResetView", "BeginPan", "PanTo", "EndPan", "Save",
	}
	got := d.names()
	if len(got) != len(want) {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	click := d.cmds[1].(*command.Click)
	if click.Side != command.SideB || click.X != 3 || click.Y != 4 {
		t.Errorf("click = %+v, want side B at (3,4)", click)
	}
}

func TestUIEventBridge_DispatchError(t *testing.T) {
	d := &recordingDispatcher{err: errors.New("command queue full")}
	b := NewUIEventBridge(&BridgeConfig{Coordinator: d})

	if err := b.Save(); err == nil {
		t.Error("Save() error = nil, want dispatch error")
	}
}

func TestUIEventBridge_NilCoordinator(t *testing.T) {
	b := NewUIEventBridge(&BridgeConfig{})
	if err := b.NextPair(); err != nil {
		t.Errorf("NextPair() error = %v, want nil", err)
	}
}

func TestUIEventBridge_RoutesEvents(t *testing.T) {
	bus := eventbus.New(10)
	defer bus.Close()

	b := NewUIEventBridge(&BridgeConfig{EventBus: bus})
	defer b.Close()

	views := make(chan annotation.View, 1)
	dups := make(chan int, 1)
	saves := make(chan event.SaveTrigger, 1)
	b.SetCallbacks(&UICallbacks{
		OnSessionUpdated:    func(v annotation.View) { views <- v },
		OnDuplicateRejected: func(frame int, p correspondence.Point) { dups <- frame },
		OnExportSucceeded:   func(trigger event.SaveTrigger, written, drained int) { saves <- trigger },
	})

	bus.Publish(event.NewSessionUpdated("r1", annotation.View{Loaded: true, FrameCount: 3}))
	bus.Publish(event.NewDuplicateRejected("r1", &annotation.DuplicateError{Side: annotation.SideB, Frame: 2}))
	bus.Publish(event.NewExportSucceeded("r1", event.TriggerManual, 4, 0))

	select {
	case v := <-views:
		if !v.Loaded || v.FrameCount != 3 {
			t.Errorf("view = %+v, want loaded with 3 frames", v)
		}
	case <-time.After(time.Second):
		t.Fatal("OnSessionUpdated not called")
	}

	select {
	case frame := <-dups:
		if frame != 2 {
			t.Errorf("duplicate frame = %d, want 2", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("OnDuplicateRejected not called")
	}

	select {
	case trigger := <-saves:
		if trigger != event.TriggerManual {
			t.Errorf("trigger = %v, want manual", trigger)
		}
	case <-time.After(time.Second):
		t.Fatal("OnExportSucceeded not called")
	}
}

func TestUIEventBridge_CloseUnsubscribes(t *testing.T) {
	bus := eventbus.New(10)
	defer bus.Close()

	b := NewUIEventBridge(&BridgeConfig{EventBus: bus})
	called := make(chan struct{}, 1)
	b.SetCallbacks(&UICallbacks{
		OnFramesLoaded: func(dir string, count int) { called <- struct{}{} },
	})
	b.Close()

	bus.Publish(event.NewFramesLoaded("r1", "/frames", 2))

	select {
	case <-called:
		t.Error("callback called after Close")
	case <-time.After(100 * time.Millisecond):
	}
}
