package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"stockviz/internal/config"
	apierrors "stockviz/internal/errors"
	"stockviz/internal/infrastructure"
	"stockviz/internal/services"

	"github.com/google/subcommands"
)

// defaultInput is read when no input path is given.
const defaultInput = "product_stock.csv"

// env carries the global flags and the process streams shared by every
// subcommand.
type env struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	metricsFile string
	logLevel    string
}

// session is what a subcommand needs once configuration is loaded.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
	service   *services.StockService
	closeLog  io.Closer
}

// setup loads configuration and builds the logger, telemetry and service.
func (e *env) setup() (*session, error) {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err).
			WithContext("path", e.configPath)
	}
	if e.logLevel != "" {
		cfg.Logging.Level = e.logLevel
	}
	if e.metricsFile != "" {
		cfg.Telemetry.MetricsFile = e.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, apierrors.NewConfigError("invalid flags", err).
			WithContext("log_level", e.logLevel)
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging, e.stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, e.stderr, logger)
	if err != nil {
		closeLog.Close()
		return nil, err
	}

	return &session{
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		service:   services.NewStockService(cfg, tel, logger),
		closeLog:  closeLog,
	}, nil
}

// close flushes telemetry, writes the metrics textfile when configured and
// closes the log file.
func (s *session) close(ctx context.Context) {
	if path := s.cfg.Telemetry.MetricsFile; path != "" {
		if err := s.telemetry.WriteMetricsFile(path); err != nil {
			s.logger.WarnContext(ctx, "failed to write metrics file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
	if err := s.telemetry.Shutdown(ctx); err != nil {
		s.logger.WarnContext(ctx, "telemetry shutdown failed",
			slog.String("error", err.Error()))
	}
	s.closeLog.Close()
}

// fail prints err to stderr and returns the failure exit status.
func (e *env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// inputPath returns the single positional argument or defaultInput.
func inputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return defaultInput, nil
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("expected at most one input file, got %d", len(args))
	}
}
