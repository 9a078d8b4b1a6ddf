// Package main is the entry point for the frame annotator.
package main

import (
	"context"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"

	"annotator-go/application"
	"annotator-go/core/eventbus"
	"annotator-go/domain/annotation"
	"annotator-go/infrastructure/config"
	"annotator-go/infrastructure/export"
	"annotator-go/infrastructure/imageio"
	"annotator-go/infrastructure/logging"
	"annotator-go/infrastructure/repository"
	"annotator-go/presentation"
	"annotator-go/resources"
)

func main() {
	// Load settings before logging so the level and directory apply
	cfgResult, err := config.Load(resources.DefaultConfig, config.DefaultOverlayPaths()...)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	cfg := cfgResult.Config

	// Initialize logging (dev: console only, prod: rotating file)
	logCfg := logging.DefaultConfig()
	logCfg.Dir = cfg.Logging.Dir
	if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		logCfg.Level = level
	}
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		// Fallback to stderr if logging setup fails
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting annotator", "config_overlay", cfgResult.Overlay)
	if cfgResult.Invalid != nil {
		logger.Warn("Invalid settings reset to defaults", "error", cfgResult.Invalid)
	}

	ctx := context.Background()

	// Initialize export sinks
	var sink export.Sink = export.NewCSVSink(cfg.Export.Path, logger)
	if mc := cfg.Archive.MongoDB; mc.Enabled {
		mongoDB, err := repository.Connect(ctx, repository.MongoDBConfig{
			URI:            mc.URI,
			Database:       mc.Database,
			Collection:     mc.Collection,
			ConnectTimeout: mc.ConnectTimeout,
			PingTimeout:    mc.PingTimeout,
		}, logger)
		if err != nil {
			// The archive is optional; the CSV export still works.
			logger.Error("Failed to initialize MongoDB archive", "error", err)
		} else {
			defer mongoDB.Close(cfg.Session.ShutdownTimeout)
			archive := repository.NewMongoCorrespondenceRepository(mongoDB, mc.Collection, logger)
			if err := archive.EnsureIndexes(ctx); err != nil {
				logger.Warn("Failed to create archive indexes", "error", err)
			}
			sink = export.Multi{sink, archive}
		}
	}

	// Initialize image loader
	images := imageio.NewLoader(imageio.LoaderConfig{Logger: logger})

	// Initialize event bus
	eventBus := eventbus.NewWithConfig(eventbus.Config{
		BufferSize: 100,
		Logger:     logger.With("component", "eventbus"),
	})
	defer eventBus.Close()

	// Initialize coordinator
	coordinator := application.NewCoordinator(&application.CoordinatorConfig{
		EventBus: eventBus,
		Sizer:    images,
		Sink:     sink,
		Options: annotation.Options{
			DuplicateRadius: cfg.Annotation.DuplicateRadius,
			FitBudget:       cfg.Viewport.FitBudget,
			ZoomStep:        cfg.Viewport.ZoomStep,
			WheelStep:       cfg.Viewport.WheelStep,
		},
		CommandBuffer:    cfg.Session.CommandBuffer,
		AutosaveInterval: cfg.Export.AutosaveInterval,
		ShutdownTimeout:  cfg.Session.ShutdownTimeout,
		Logger:           logger,
	})
	coordinator.Start()
	// Stopping flushes unsaved correspondences to the sinks
	defer coordinator.Stop()

	// Initialize UI event bridge
	bridge := presentation.NewUIEventBridge(&presentation.BridgeConfig{
		Coordinator: coordinator,
		EventBus:    eventBus,
		Logger:      logger,
	})
	defer bridge.Close()

	// Initialize Fyne app
	fyneApp := app.New()
	fyneApp.SetIcon(theme.MediaPhotoIcon())

	// Initialize main window
	mainWindow := presentation.NewMainWindow(&presentation.MainWindowConfig{
		App:    fyneApp,
		Bridge: bridge,
		Images: images,
		Logger: logger,
	})
	defer mainWindow.Cleanup()

	// Show and run
	mainWindow.Show()
	fyneApp.Run()

	// Force exit if the final flush hangs past the shutdown budget
	go func() {
		time.Sleep(2*cfg.Session.ShutdownTimeout + 5*time.Second)
		logger.Warn("Shutdown timeout, forcing exit")
		os.Exit(0)
	}()

	logger.Info("Application shutdown complete")
}
