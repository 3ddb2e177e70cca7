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

	"github.com/vkarasev/tube-snap/app/analytics"
	"github.com/vkarasev/tube-snap/app/api"
	"github.com/vkarasev/tube-snap/app/catalog"
	"github.com/vkarasev/tube-snap/app/cfg"
	"github.com/vkarasev/tube-snap/app/database"
	"github.com/vkarasev/tube-snap/app/pipeline"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Tube Snap server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	// Explicit dependency objects, shared across runs; each run only
	// carries its own run_id and snapshot date.
	repo := database.NewSnapshotRepository(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	catalogClient := catalog.NewClient(httpClient, appCfg.APIKey, appCfg.UploadsPlaylistID, appCfg.UserAgent)
	analyticsClient := analytics.NewClient(context.Background(), analytics.Credentials{
		ClientID:     appCfg.OAuthClientID,
		ClientSecret: appCfg.OAuthClientSecret,
		RefreshToken: appCfg.OAuthRefreshToken,
	})

	runner := pipeline.NewRunner(catalogClient, analyticsClient, repo, appCfg.LookbackDays)

	handler := api.NewHandler(runner, repo)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	// A full run is ~60+ videos at two metered calls each plus retries;
	// the write timeout has to cover the whole synchronous run.
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		slog.Info("Endpoints available",
			"run", "POST /run",
			"backfill", "POST /backfill?start=YYYY-MM-DD&end=YYYY-MM-DD",
			"health", "GET /health")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Tube Snap server shutdown complete")
}
