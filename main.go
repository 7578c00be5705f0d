package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"azv-admin-api/handlers"
	"azv-admin-api/initializers"
	"azv-admin-api/pkg/appenv"
	"azv-admin-api/repository"
	"azv-admin-api/upstream"
	"azv-admin-api/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := initializers.LoadConfig()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if err != nil {
		fatal("invalid configuration", err)
	}

	if cfg.Env == appenv.Production || os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initializers.ConnectDatabase(cfg.DatabaseURL, 10)
	if err != nil {
		fatal("database unavailable", err)
	}
	defer db.Close()
	if err := initializers.RunMigrations(db, "file://migrations"); err != nil {
		fatal("migrations failed", err)
	}

	rdb, err := initializers.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		fatal("redis unavailable", err)
	}
	defer rdb.Close()

	deps := handlers.Deps{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Backend:  upstream.New(upstream.Options{BaseURL: cfg.UpstreamBaseURL, Timeout: cfg.UpstreamTimeout, RetryCount: cfg.UpstreamRetries}, slog.Default()),
		Sessions: repository.NewSessionsRepository(rdb, cfg.SessionTTL),
		Views:    repository.NewSavedViewsRepository(db),
		Media:    repository.NewMediaRepository(db),
		Hub:      websocket.NewHub(),
	}
	defer deps.Hub.Stop()

	if cfg.Media.Enabled() {
		store, err := initializers.InitMediaStore(ctx, cfg.Media)
		if err != nil {
			fatal("media store unavailable", err)
		}
		deps.Archive = store
	} else {
		slog.Info("MINIO_ENDPOINT not set, menu images are not archived")
	}

	router, err := handlers.NewRouter(deps)
	if err != nil {
		fatal("router setup failed", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("listening", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
