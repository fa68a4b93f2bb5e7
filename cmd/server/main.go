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

	"github.com/joho/godotenv"

	h "github.com/dhru84/Audio-Translation-Pipeline/internal/api/http"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/audio"
	cfgpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/config"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/pipeline"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/registry"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/sarvam"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	reg, err := registry.New(cfg.StateFile, slog.Default())
	if err != nil {
		slog.Error("failed to initialize task registry", "error", err)
		os.Exit(1)
	}

	workspace := storage.NewWorkspace(cfg.WorkDir)
	splitter := pipeline.NewSplitter(cfg.ChunkDuration, cfg.MinAudioDuration)
	merger := pipeline.NewMerger(slog.Default())

	processorFor := func(apiKey string) *pipeline.Processor {
		client := sarvam.New(cfg.SarvamBaseURL, apiKey, slog.Default(),
			sarvam.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			sarvam.WithRetryAttempts(cfg.RetryAttempts),
		)
		return pipeline.NewProcessor(client, client, client, audio.NewGate(), slog.Default())
	}

	driver := pipeline.NewDriver(reg, workspace, splitter, merger, processorFor,
		cfg.ChunkWorkers, cfg.SampleRate, slog.Default())
	service := pipeline.NewService(reg, workspace, driver, slog.Default())

	router := h.NewRouter(service, cfg.MaxUploadSize, slog.Default())
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := driver.Shutdown(shutdownCtx); err != nil {
		slog.Error("pipeline shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}
}
