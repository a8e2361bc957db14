package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tharun0024/gen-ai-25/config"
	"github.com/Tharun0024/gen-ai-25/handler"
	"github.com/Tharun0024/gen-ai-25/middleware"
	"github.com/Tharun0024/gen-ai-25/pkg/idgen"
	"github.com/Tharun0024/gen-ai-25/pkg/logger"
	"github.com/Tharun0024/gen-ai-25/pkg/telemetry"
	"github.com/Tharun0024/gen-ai-25/service"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	cfg, err := loadConfig("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	slog.Info("configuration loaded",
		"stale_policy", cfg.Session.StalePolicy,
		"max_sessions", cfg.Session.MaxSessions,
		"upload_url", cfg.Analysis.UploadURL,
	)

	if err := idgen.Init(cfg.Session.NodeID); err != nil {
		slog.Error("failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	client := service.NewAnalysisClient(&cfg.Analysis)
	store := service.NewWorkspaceStore(cfg, client, client)

	if cfg.Archive.Enabled {
		archive, err := service.NewMinioArchive(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize document archive", "error", err)
			os.Exit(1)
		}
		if err := archive.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
		store.WithArchive(archive)
		slog.Info("document archive enabled", "endpoint", cfg.Archive.Endpoint, "bucket", cfg.Archive.Bucket)
	}

	sessionHandler := handler.NewSessionHandler(store, cfg.Upload)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, time.Duration(cfg.Server.RateWindowSeconds)*time.Second))

	router.GET("/health", sessionHandler.Health)
	sessionHandler.Register(router.Group("/api"))

	// Questions hold the response open until the answer endpoint replies.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: time.Duration(cfg.Analysis.TimeoutSeconds+10) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if err := tel.Shutdown(ctx); err != nil {
		slog.Error("failed to flush traces", "error", err)
	}

	slog.Info("server exited gracefully")
}

// loadConfig reads path, falling back to defaults and environment when the
// file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}
