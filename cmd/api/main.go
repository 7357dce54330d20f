package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stylematch/internal/config"
	"stylematch/internal/events"
	"stylematch/internal/generation"
	"stylematch/internal/media"
	"stylematch/internal/server"
	"stylematch/internal/storage"
	"stylematch/internal/styling"
	"stylematch/internal/vision"
	"stylematch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to init store", zap.Error(err))
	}
	defer store.Close()

	var persister media.Persister
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		persister, err = media.NewS3Persister(ctx, media.S3Config{
			Bucket:         cfg.Media.Bucket,
			Region:         cfg.Media.Region,
			Endpoint:       cfg.Media.Endpoint,
			PublicURL:      cfg.Media.PublicURL,
			KeyPrefix:      cfg.Media.KeyPrefix,
			ForcePathStyle: cfg.Media.ForcePathStyle,
		})
		if err != nil {
			zlog.Fatal("failed to init s3 artifact storage", zap.Error(err))
		}
		zlog.Info("artifact storage: S3", zap.String("bucket", cfg.Media.Bucket))
	} else {
		persister, err = media.NewLocalPersister(cfg.OutputDir, cfg.PublicBaseURL)
		if err != nil {
			zlog.Fatal("failed to init local artifact storage", zap.Error(err))
		}
		zlog.Info("artifact storage: local", zap.String("dir", cfg.OutputDir))
	}

	var analyzer vision.Analyzer
	if strings.EqualFold(cfg.Vision.Provider, "gemini") && cfg.Vision.GeminiKey != "" {
		analyzer = vision.NewGeminiAnalyzer(cfg.Vision.GeminiKey, cfg.Vision.GeminiModel, 60*time.Second)
		zlog.Info("vision analyzer ready: Gemini")
	} else {
		analyzer = vision.NewOpenAIAnalyzer(cfg.Vision.OpenAIKey, cfg.Vision.OpenAIModel, 60*time.Second)
		zlog.Info("vision analyzer ready: OpenAI")
	}

	var transformer generation.Transformer
	if strings.EqualFold(cfg.Generation.Provider, "imagen") && cfg.Generation.Imagen.ProjectID != "" {
		transformer = generation.NewImagenTransformer(generation.ImagenConfig{
			ProjectID:          cfg.Generation.Imagen.ProjectID,
			Location:           cfg.Generation.Imagen.Location,
			Model:              cfg.Generation.Imagen.Model,
			APIKey:             cfg.Generation.Imagen.APIKey,
			ServiceAccountJSON: cfg.Generation.Imagen.ServiceAccountJSON,
		})
		zlog.Info("image transformer ready: Vertex Imagen")
	} else {
		transformer = generation.NewReplicateTransformer(cfg.Generation.ReplicateToken, cfg.Generation.ReplicateModel)
		zlog.Info("image transformer ready: Replicate", zap.String("model", cfg.Generation.ReplicateModel))
	}

	handler := styling.Handler{
		Analyzer:            analyzer,
		Transformer:         transformer,
		Artifacts:           persister,
		Store:               store,
		Events:              events.NewBroker(),
		MaxUploadBytes:      cfg.MaxUploadBytes,
		Production:          cfg.Production(),
		OpenAIConfigured:    cfg.Vision.OpenAIKey != "",
		ReplicateConfigured: cfg.Generation.ReplicateToken != "",
		Log:                 zlog,
	}

	srv := server.New(cfg.Port, cfg.OutputDir, handler)
	zlog.Info("server ready", zap.String("addr", srv.Addr),
		zap.String("artifacts", cfg.PublicBaseURL+"/generated/"))

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		zlog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
