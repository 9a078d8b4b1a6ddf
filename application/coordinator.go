// Package application provides the application layer that orchestrates the
// annotation session.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"annotator-go/application/session"
	"annotator-go/core/command"
	"annotator-go/core/event"
	"annotator-go/core/eventbus"
	"annotator-go/domain/annotation"
	"annotator-go/domain/frame"
	"annotator-go/infrastructure/export"
	"annotator-go/infrastructure/hostshell"
)

// Coordinator routes commands to the session actor and handles the ones that
// need the host shell first.
type Coordinator struct {
	runID   string
	session *session.Session

	// Dependencies
	eventBus eventbus.EventBus
	lister   hostshell.Lister
	logger   *slog.Logger
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	// RunID identifies this annotation run. Empty generates a new one.
	RunID            string
	EventBus         eventbus.EventBus
	Lister           hostshell.Lister
	Sizer            session.Sizer
	Sink             export.Sink
	Options          annotation.Options
	CommandBuffer    int
	AutosaveInterval time.Duration
	ShutdownTimeout  time.Duration
	Logger           *slog.Logger
}

// NewCoordinator creates a new coordinator and its session.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Lister == nil {
		cfg.Lister = hostshell.NewDirLister(cfg.Logger)
	}

	sess := session.New(&session.Config{
		RunID:            cfg.RunID,
		Options:          cfg.Options,
		Sink:             cfg.Sink,
		Sizer:            cfg.Sizer,
		EventBus:         cfg.EventBus,
		Logger:           cfg.Logger,
		CommandBuffer:    cfg.CommandBuffer,
		AutosaveInterval: cfg.AutosaveInterval,
		ShutdownTimeout:  cfg.ShutdownTimeout,
	})

	return &Coordinator{
		runID:    cfg.RunID,
		session:  sess,
		eventBus: cfg.EventBus,
		lister:   cfg.Lister,
		logger:   cfg.Logger.With("run_id", cfg.RunID),
	}
}

// Start begins the coordinator.
func (c *Coordinator) Start() {
	c.session.Start()
	c.logger.Info("Coordinator started")
}

// Stop shuts down the session, flushing unsaved correspondences.
func (c *Coordinator) Stop() {
	c.session.Stop()
	c.logger.Info("Coordinator stopped")
}

// RunID returns the run identifier.
func (c *Coordinator) RunID() string {
	return c.runID
}

// Snapshot returns the current annotation state.
func (c *Coordinator) Snapshot(ctx context.Context) (annotation.View, error) {
	return c.session.Snapshot(ctx)
}

// Dispatch sends a command to the appropriate handler.
func (c *Coordinator) Dispatch(cmd command.Command) error {
	c.logger.Debug("Dispatching command", "command", cmd.CommandName())

	switch cmd := cmd.(type) {
	case *command.LoadDirectory:
		return c.handleLoadDirectory(cmd)
	default:
		return c.session.Send(cmd)
	}
}

func (c *Coordinator) handleLoadDirectory(cmd *command.LoadDirectory) error {
	paths, err := c.lister.List(cmd.Dir)
	if err != nil {
		c.logger.Error("Failed to list frames", "dir", cmd.Dir, "error", err)
		c.publishEvent(event.NewOperationFailed(c.runID, "load_directory", err))
		return err
	}

	if len(paths) < 2 {
		err := fmt.Errorf("%s has %d image(s): %w", cmd.Dir, len(paths), frame.ErrTooFewFrames)
		c.logger.Warn("Frames rejected", "dir", cmd.Dir, "count", len(paths))
		c.publishEvent(event.NewFramesRejected(c.runID, cmd.Dir, len(paths), err))
		return nil
	}

	return c.session.Send(&command.LoadFrames{Dir: cmd.Dir, Paths: paths})
}

func (c *Coordinator) publishEvent(e event.Event) {
	if c.eventBus != nil {
		c.eventBus.Publish(e)
	}
}
