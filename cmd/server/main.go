package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qvkare/mirror-search/internal/adapter/backend"
	"github.com/qvkare/mirror-search/internal/adapter/httpapi"
	"github.com/qvkare/mirror-search/internal/anonymizer"
	"github.com/qvkare/mirror-search/internal/infra/config"
	"github.com/qvkare/mirror-search/internal/infra/logger"
	"github.com/qvkare/mirror-search/internal/infra/tracer"
	"github.com/qvkare/mirror-search/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Anonymization engine
	engine := anonymizer.NewEngine(anonymizer.DefaultRuleTable(), log)

	// 4. Backend chain
	backends, err := backend.Build(cfg.Search, log)
	if err != nil {
		return fmt.Errorf("backends: %w", err)
	}

	// 5. Orchestrator & HTTP server
	orch := usecase.NewOrchestrator(engine, backends, cfg.Search, log)
	srv := httpapi.NewServer(cfg.Server, orch, cfg.Anonymizer.Enabled, log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := srv.Start(runCtx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("mirror-search started",
		"addr", srv.Addr(),
		"backends", len(backends),
		"anonymizer", cfg.Anonymizer.Enabled,
	)

	// 6. Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("stopped")
	return nil
}
