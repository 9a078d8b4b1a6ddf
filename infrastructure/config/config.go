// Package config loads application settings from YAML.
//
// Settings come from an embedded default document, overlaid key by key with
// the first overlay file that exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"annotator-go/infrastructure/logging"
)

// Config holds all application settings.
type Config struct {
	Export     ExportConfig
	Annotation AnnotationConfig
	Viewport   ViewportConfig
	Session    SessionConfig
	Logging    LoggingConfig
	Archive    ArchiveConfig
}

// ExportConfig configures the CSV export.
type ExportConfig struct {
	Path             string
	AutosaveInterval time.Duration
}

// AnnotationConfig configures correspondence capture.
type AnnotationConfig struct {
	DuplicateRadius int
}

// ViewportConfig configures the shared pan/zoom state.
type ViewportConfig struct {
	FitBudget float64
	ZoomStep  float64
	WheelStep float64
}

// SessionConfig configures the session actor.
type SessionConfig struct {
	CommandBuffer   int
	ShutdownTimeout time.Duration
}

// LoggingConfig configures the log output.
type LoggingConfig struct {
	Level string
	Dir   string
}

// ArchiveConfig configures optional archive sinks.
type ArchiveConfig struct {
	MongoDB MongoDBConfig
}

// MongoDBConfig configures the MongoDB archive sink.
type MongoDBConfig struct {
	Enabled        bool
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

// Default returns the built-in settings. It matches the embedded default document.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Path:             "associations.csv",
			AutosaveInterval: 30 * time.Second,
		},
		Annotation: AnnotationConfig{
			DuplicateRadius: 10,
		},
		Viewport: ViewportConfig{
			FitBudget: 500,
			ZoomStep:  1.2,
			WheelStep: 1.1,
		},
		Session: SessionConfig{
			CommandBuffer:   100,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Archive: ArchiveConfig{
			MongoDB: MongoDBConfig{
				Enabled:        false,
				URI:            "mongodb://localhost:27017",
				Database:       "annotator",
				Collection:     "correspondences",
				ConnectTimeout: 10 * time.Second,
				PingTimeout:    5 * time.Second,
			},
		},
	}
}

// DefaultOverlayPaths returns the overlay files in lookup order: the working
// directory first, then the user configuration directory.
func DefaultOverlayPaths() []string {
	paths := []string{"annotator.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "annotator", "config.yaml"))
	}
	return paths
}

// Validate checks every setting. Invalid values are replaced with their
// defaults and reported together in the returned error.
func (c *Config) Validate() error {
	def := Default()
	var errs []error

	invalid := func(key string, value any) {
		errs = append(errs, fmt.Errorf("%s: invalid value %v, using default", key, value))
	}

	if c.Export.Path == "" {
		invalid("export.path", `""`)
		c.Export.Path = def.Export.Path
	}
	if c.Export.AutosaveInterval <= 0 {
		invalid("export.autosave_interval", c.Export.AutosaveInterval)
		c.Export.AutosaveInterval = def.Export.AutosaveInterval
	}
	if c.Annotation.DuplicateRadius < 1 {
		invalid("annotation.duplicate_radius", c.Annotation.DuplicateRadius)
		c.Annotation.DuplicateRadius = def.Annotation.DuplicateRadius
	}
	if c.Viewport.FitBudget <= 0 {
		invalid("viewport.fit_budget", c.Viewport.FitBudget)
		c.Viewport.FitBudget = def.Viewport.FitBudget
	}
	if c.Viewport.ZoomStep <= 1 {
		invalid("viewport.zoom_step", c.Viewport.ZoomStep)
		c.Viewport.ZoomStep = def.Viewport.ZoomStep
	}
	if c.Viewport.WheelStep <= 1 {
		invalid("viewport.wheel_step", c.Viewport.WheelStep)
		c.Viewport.WheelStep = def.Viewport.WheelStep
	}
	if c.Session.CommandBuffer <= 0 {
		invalid("session.command_buffer", c.Session.CommandBuffer)
		c.Session.CommandBuffer = def.Session.CommandBuffer
	}
	if c.Session.ShutdownTimeout <= 0 {
		invalid("session.shutdown_timeout", c.Session.ShutdownTimeout)
		c.Session.ShutdownTimeout = def.Session.ShutdownTimeout
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w, using default", err))
		c.Logging.Level = def.Logging.Level
	}

	m := &c.Archive.MongoDB
	if m.Enabled {
		if m.URI == "" {
			invalid("archive.mongodb.uri", `""`)
			m.URI = def.Archive.MongoDB.URI
		}
		if m.Database == "" {
			invalid("archive.mongodb.database", `""`)
			m.Database = def.Archive.MongoDB.Database
		}
		if m.Collection == "" {
			invalid("archive.mongodb.collection", `""`)
			m.Collection = def.Archive.MongoDB.Collection
		}
	}
	if m.ConnectTimeout <= 0 {
		invalid("archive.mongodb.connect_timeout", m.ConnectTimeout)
		m.ConnectTimeout = def.Archive.MongoDB.ConnectTimeout
	}
	if m.PingTimeout <= 0 {
		invalid("archive.mongodb.ping_timeout", m.PingTimeout)
		m.PingTimeout = def.Archive.MongoDB.PingTimeout
	}

	return errors.Join(errs...)
}
