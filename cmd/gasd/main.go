package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qsearchlab/gas-core/internal/gasd"
	"github.com/qsearchlab/gas-core/pkg/config"
	"github.com/qsearchlab/gas-core/pkg/logger"
)

func main() {
	var configPath string
	var jobPath string
	var httpAddr string
	var logLevel string
	var logFormat string

	flag.StringVar(&configPath, "config", "", "path to daemon config YAML")
	flag.StringVar(&jobPath, "job", "", "solve a single job file and exit")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error; overrides config)")
	flag.StringVar(&logFormat, "log-format", "", "log format (text, json; overrides config)")
	flag.Parse()

	cfg := &config.Config{
		LogLevel:  config.DefaultLogLevel,
		LogFormat: config.DefaultLogFormat,
		HTTPAddr:  config.DefaultHTTPAddr,
	}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	logger.SetDefault(logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout))

	if jobPath != "" {
		if err := solveOnce(jobPath); err != nil {
			logger.Error("job failed", "path", jobPath, "error", err)
			os.Exit(1)
		}
		return
	}

	serve(cfg)
}

// solveOnce runs a single job file to completion and prints the report.
func solveOnce(path string) error {
	spec, err := config.LoadJob(path)
	if err != nil {
		return err
	}

	store := gasd.NewJobStore()
	executor := gasd.NewJobExecutor(store)

	rec, err := store.Create("", spec)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := executor.Start(rec.Job.ID); err != nil {
		return err
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if _, err := executor.Stop(rec.Job.ID); err != nil {
				logger.Warn("stop failed", "job_id", rec.Job.ID, "error", err)
			}
			return ctx.Err()
		case <-ticker.C:
		}

		current, ok := store.Get(rec.Job.ID)
		if !ok {
			continue
		}
		if !current.Job.Status.Terminal() {
			continue
		}
		if current.Job.Status != gasd.StatusCompleted {
			return fmt.Errorf("job ended %s: %s", current.Job.Status, current.Job.Error)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(current.Report)
	}
}

// serve runs the HTTP daemon until interrupted.
func serve(cfg *config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	store := gasd.NewJobStore()
	executor := gasd.NewJobExecutor(store)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           gasd.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
