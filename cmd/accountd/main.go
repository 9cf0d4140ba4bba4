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

	"github.com/hollowpoint-games/accountsync/internal/config"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/clock"
	"github.com/hollowpoint-games/accountsync/internal/remote/server"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadServer()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serverCfg := server.DefaultConfig()
	if cfg.SigningKey != "" {
		serverCfg.SigningKey = []byte(cfg.SigningKey)
	} else {
		logger.Warn("ACCOUNTD_SIGNING_KEY not set, using development key")
	}
	serverCfg.AccessTTL = cfg.AccessTTL
	serverCfg.RefreshTTL = cfg.RefreshTTL

	svc := server.New(server.NewStore(), clock.New(), logger, serverCfg)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      svc.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	logger.Info("account service started", slog.String("addr", cfg.ListenAddr))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("account service stopped")
}
