package services

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"stockviz/internal/config"
	"stockviz/internal/dataprocessing"
	"stockviz/internal/exporter"
	"stockviz/pkg/contracts"
	"stockviz/pkg/contracts/domain"
)

// Health status values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// HealthService reports what the stock API accepts and whether it can render.
type HealthService struct {
	version   string
	startTime time.Time
	limits    InputLimits
	chartOpts exporter.ChartOptions
	logger    *slog.Logger
}

// InputLimits describes the bodies the stock endpoints accept.
type InputLimits struct {
	Formats      []dataprocessing.Format `json:"formats"`
	MaxBodyBytes int64                   `json:"max_body_bytes"`
	MaxInputSize int64                   `json:"max_input_bytes"`
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	GoVersion     string            `json:"go_version"`
	Input         InputLimits       `json:"input"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// NewHealthService creates a health service for the given configuration.
func NewHealthService(cfg *config.Config, logger *slog.Logger) *HealthService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// The readiness render only has to exercise fonts and rasterizer.
	opts := exporter.ChartOptionsFromConfig(cfg.Chart)
	opts.Width, opts.Height = 240, 160

	return &HealthService{
		version:   contracts.Version,
		startTime: time.Now(),
		limits: InputLimits{
			Formats:      []dataprocessing.Format{dataprocessing.FormatCSV, dataprocessing.FormatXLSX},
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			MaxInputSize: cfg.Input.MaxBytes,
		},
		chartOpts: opts,
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:        StatusOK,
		Timestamp:     time.Now(),
		Version:       hs.version,
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		GoVersion:     runtime.Version(),
		Input:         hs.limits,
	}
}

// ReadinessCheck renders a small pie chart with the configured chart options.
// The status is degraded when rendering fails.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := hs.HealthCheck(ctx)
	status.Checks = map[string]string{"renderer": StatusOK}

	if err := hs.renderCheck(); err != nil {
		hs.logger.ErrorContext(ctx, "readiness check failed",
			slog.String("check", "renderer"),
			slog.String("error", err.Error()))
		status.Status = StatusDegraded
		status.Checks["renderer"] = err.Error()
	}
	return status
}

func (hs *HealthService) renderCheck() error {
	chart, err := exporter.BuildChart(&domain.StatsSummary{
		Total: 4,
		Count: 2,
		Shares: []domain.ItemShare{
			{Product: "ready", Stock: 3, Percent: 75},
			{Product: "check", Stock: 1, Percent: 25},
		},
	}, hs.chartOpts)
	if err != nil {
		return err
	}
	return chart.Render(io.Discard)
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
