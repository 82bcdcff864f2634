package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edustack/teachstore/pkg/teachstore/api"
	"github.com/edustack/teachstore/pkg/teachstore/auth"
	"github.com/edustack/teachstore/pkg/teachstore/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	svc, err := cfg.BuildService(ctx)
	if err != nil {
		slog.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL)

	router := api.NewRouter(api.RouterConfig{
		Service:   svc,
		Tokens:    tokens,
		MaxUpload: cfg.MaxUploadBytes,
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		slog.Info("teachstore server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"upload_dir", cfg.UploadDir)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}
