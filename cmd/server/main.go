package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/quizgest/internal/api"
	"github.com/dgallion1/quizgest/internal/config"
	"github.com/dgallion1/quizgest/internal/extract"
	"github.com/dgallion1/quizgest/internal/media"
	"github.com/dgallion1/quizgest/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		log.Error("media storage", "error", err)
		os.Exit(1)
	}

	engine := extract.New(media.Sink(uploader), log, extract.Options{
		MarkerClass: cfg.AnswerMarkerClass,
		Durations:   cfg.AllowedDurations,
	})

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, engine, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: stop accepting uploads before closing the queue.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting quizgest",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"s3", cfg.UsesS3(),
		"durations", cfg.AllowedDurations,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}

// newUploader picks S3 when a bucket is configured and the local media
// directory otherwise. Local images are linked under /media unless a public
// URL is set.
func newUploader(ctx context.Context, cfg config.Config) (media.Uploader, error) {
	if cfg.UsesS3() {
		return media.NewS3Uploader(ctx, media.S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicURL:      cfg.S3PublicURL,
			KeyPrefix:      cfg.S3KeyPrefix,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
	}
	publicURL := cfg.MediaPublicURL
	if publicURL == "" {
		publicURL = "/media"
	}
	return media.NewDirStore(cfg.MediaDir, publicURL)
}
