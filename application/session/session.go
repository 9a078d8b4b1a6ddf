// Package session implements the Session Actor that owns the annotation state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"annotator-go/core/command"
	"annotator-go/core/event"
	"annotator-go/core/eventbus"
	"annotator-go/domain/annotation"
	"annotator-go/domain/frame"
	"annotator-go/infrastructure/export"
)

// Sizer reports the natural size of an image without decoding it.
type Sizer interface {
	Size(path string) (width, height int, err error)
}

// Session is the annotation session as an Actor.
// It processes commands serially through a command queue; the annotation
// state is only touched by the actor goroutine.
type Session struct {
	runID string
	ann   *annotation.Session

	// Dependencies
	sink     export.Sink
	sizer    Sizer
	eventBus eventbus.EventBus
	logger   *slog.Logger

	// Command processing
	cmdChan   chan command.Command
	writeDone chan writeResult
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	// Export state, owned by the actor goroutine
	autosaveInterval time.Duration
	shutdownTimeout  time.Duration
	writing          bool
	manualQueued     bool
	stopping         bool
}

// Config holds configuration for creating a new Session.
type Config struct {
	RunID            string
	Options          annotation.Options
	Sink             export.Sink
	Sizer            Sizer
	EventBus         eventbus.EventBus
	Logger           *slog.Logger
	CommandBuffer    int
	AutosaveInterval time.Duration
	ShutdownTimeout  time.Duration
}

// writeResult is delivered back into the actor loop when a write completes.
type writeResult struct {
	trigger event.SaveTrigger
	batch   export.Batch
	err     error
}

// viewRequest asks the actor for a snapshot of the annotation state. It
// travels through the command queue so it observes every earlier command.
type viewRequest struct {
	reply chan annotation.View
}

func (r *viewRequest) CommandName() string {
	return "viewRequest"
}

// New creates a new Session actor.
func New(cfg *Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 100
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 30 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Sink == nil {
		cfg.Sink = export.NewCSVSink(export.DefaultCSVPath, cfg.Logger)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		runID:            cfg.RunID,
		ann:              annotation.New(cfg.Options),
		sink:             cfg.Sink,
		sizer:            cfg.Sizer,
		eventBus:         cfg.EventBus,
		logger:           cfg.Logger.With("run_id", cfg.RunID),
		cmdChan:          make(chan command.Command, cfg.CommandBuffer),
		writeDone:        make(chan writeResult, 1),
		ctx:              ctx,
		cancel:           cancel,
		autosaveInterval: cfg.AutosaveInterval,
		shutdownTimeout:  cfg.ShutdownTimeout,
	}
}

// Start begins the session's command processing loop.
func (s *Session) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("Session started", "autosave_interval", s.autosaveInterval)
}

// Stop signals the session to stop, flushes unsaved correspondences and
// waits for cleanup with timeout. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		// Waiting for an in-flight write and the final flush are each bounded.
		select {
		case <-done:
			s.logger.Info("Session stopped")
		case <-time.After(2*s.shutdownTimeout + time.Second):
			s.logger.Warn("Session stop timeout")
		}
	})
}

// Send sends a command to the session for processing.
// Returns an error if the session is not accepting commands.
func (s *Session) Send(cmd command.Command) error {
	if s.ctx.Err() != nil {
		return fmt.Errorf("session is stopped")
	}
	select {
	case s.cmdChan <- cmd:
		return nil
	case <-s.ctx.Done():
		return fmt.Errorf("session is stopped")
	default:
		return fmt.Errorf("command queue full")
	}
}

// Snapshot returns the annotation state after every command sent before it
// has been processed.
func (s *Session) Snapshot(ctx context.Context) (annotation.View, error) {
	req := &viewRequest{reply: make(chan annotation.View, 1)}

	select {
	case s.cmdChan <- req:
	case <-s.ctx.Done():
		return annotation.View{}, fmt.Errorf("session is stopped")
	case <-ctx.Done():
		return annotation.View{}, ctx.Err()
	}

	select {
	case v := <-req.reply:
		return v, nil
	case <-s.ctx.Done():
		return annotation.View{}, fmt.Errorf("session is stopped")
	case <-ctx.Done():
		return annotation.View{}, ctx.Err()
	}
}

// RunID returns the run identifier.
func (s *Session) RunID() string {
	return s.runID
}

// run is the main command processing loop.
func (s *Session) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.autosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return
		case cmd := <-s.cmdChan:
			s.processCommand(cmd)
		case res := <-s.writeDone:
			s.finishWrite(res)
		case <-ticker.C:
			s.autosave()
		}
	}
}

// processCommand handles a single command.
func (s *Session) processCommand(cmd command.Command) {
	s.logger.Debug("Processing command", "command", cmd.CommandName())

	switch c := cmd.(type) {
	// Frames and navigation
	case *command.LoadFrames:
		s.handleLoadFrames(c)
	case *command.NextPair:
		s.handleNextPair(c)
	case *command.Click:
		s.handleClick(c)

	// Viewport
	case *command.ZoomIn:
		s.ann.ZoomIn()
		s.publishView()
	case *command.ZoomOut:
		s.ann.ZoomOut()
		s.publishView()
	case *command.Wheel:
		s.ann.Wheel(c.In)
		s.publishView()
	case *command.ResetView:
		s.ann.ResetView()
		s.publishView()
	case *command.BeginPan:
		s.ann.BeginPan(c.X, c.Y)
	case *command.PanTo:
		if s.ann.PanTo(c.X, c.Y) {
			s.publishView()
		}
	case *command.EndPan:
		s.ann.EndPan()

	// Export
	case *command.Save:
		s.handleSave()
	case *command.Autosave:
		s.autosave()

	case *viewRequest:
		c.reply <- s.ann.View()

	default:
		s.logger.Warn("Unknown command", "command", fmt.Sprintf("%T", cmd))
	}
}

func (s *Session) publishEvent(e event.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(e)
	}
}

func (s *Session) publishView() {
	s.publishEvent(event.NewSessionUpdated(s.runID, s.ann.View()))
}

// Command handlers

func (s *Session) handleLoadFrames(cmd *command.LoadFrames) {
	seq := frame.NewSequence(cmd.Dir, cmd.Paths)
	if err := s.ann.Load(seq); err != nil {
		s.logger.Warn("Frames rejected", "dir", cmd.Dir, "count", len(cmd.Paths), "error", err)
		s.publishEvent(event.NewFramesRejected(s.runID, cmd.Dir, len(cmd.Paths), err))
		return
	}

	s.sizePair()
	s.logger.Info("Frames loaded", "dir", cmd.Dir, "count", seq.Len())
	s.publishEvent(event.NewFramesLoaded(s.runID, cmd.Dir, seq.Len()))
	s.publishView()
}

func (s *Session) handleNextPair(cmd *command.NextPair) {
	if err := s.ann.AdvancePair(); err != nil {
		s.logger.Warn("Cannot advance pair", "error", err)
		return
	}

	s.sizePair()
	pair, _ := s.ann.Pair()
	s.logger.Info("Pair advanced", "frame_a", pair.NumberA(), "frame_b", pair.NumberB())
	s.publishView()
}

// sizePair reads the natural sizes of the displayed frames, which fixes their
// fit scale. A frame whose size cannot be read keeps fit 1.
func (s *Session) sizePair() {
	if s.sizer == nil {
		return
	}
	pair, ok := s.ann.Pair()
	if !ok {
		return
	}

	for _, side := range []annotation.Side{annotation.SideA, annotation.SideB} {
		path := pair.PathA
		if side == annotation.SideB {
			path = pair.PathB
		}
		w, h, err := s.sizer.Size(path)
		if err != nil {
			s.logger.Error("Failed to read frame size", "path", path, "error", err)
			s.publishEvent(event.NewOperationFailed(s.runID, "read_frame", err))
			continue
		}
		s.ann.SetFrameSize(side, w, h)
	}
}

func (s *Session) handleClick(cmd *command.Click) {
	res, err := s.ann.Click(toAnnotationSide(cmd.Side), cmd.X, cmd.Y)
	if err != nil {
		var dup *annotation.DuplicateError
		switch {
		case errors.As(err, &dup):
			s.logger.Info("Duplicate point rejected", "frame", dup.Frame, "point", dup.Clicked.String())
			s.publishEvent(event.NewDuplicateRejected(s.runID, dup))
		case errors.Is(err, annotation.ErrOutsideFrame), errors.Is(err, annotation.ErrNoFrames):
			s.logger.Debug("Click ignored", "side", cmd.Side, "error", err)
		default:
			s.logger.Error("Click failed", "error", err)
			s.publishEvent(event.NewOperationFailed(s.runID, "click", err))
		}
		return
	}

	switch res.Outcome {
	case annotation.OutcomeIgnored:
		s.logger.Debug("Click ignored, no pending point", "side", cmd.Side)
		return
	case annotation.OutcomePending:
		s.logger.Debug("Point pending", "frame", res.Frame, "point", res.Point.String())
		s.publishEvent(event.NewPointPending(s.runID, res.Frame, res.Point))
	case annotation.OutcomeRecorded:
		s.logger.Info("Correspondence recorded", "correspondence", res.Record.String(), "seq", res.Record.Seq)
		s.publishEvent(event.NewCorrespondenceRecorded(s.runID, res.Record))
	}
	s.publishView()
}

func toAnnotationSide(side command.Side) annotation.Side {
	if side == command.SideB {
		return annotation.SideB
	}
	return annotation.SideA
}
