package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleetlens/config"
	"fleetlens/internal/ai"
	"fleetlens/internal/annotate"
	"fleetlens/internal/api"
	"fleetlens/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	log.WithField("path", cfg.DatabasePath).Info("database ready")

	store, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload directory: %v", err)
	}

	gateway := ai.NewGateway(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.AITimeout, log)

	gin.SetMode(gin.ReleaseMode)
	server := api.New(api.Options{
		Log:            log,
		Analyzer:       gateway,
		Store:          store,
		Annotator:      annotate.New(store, log),
		Inspections:    storage.NewInspectionRepository(db),
		Cars:           storage.NewCarRepository(db),
		Bookings:       storage.NewBookingRepository(db),
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	if err := server.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
