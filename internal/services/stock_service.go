package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"stockviz/internal/config"
	"stockviz/internal/dataprocessing"
	apierrors "stockviz/internal/errors"
	"stockviz/internal/exporter"
	"stockviz/internal/infrastructure"
	"stockviz/internal/validation"
	"stockviz/pkg/contracts/domain"
)

// Operation names used for spans and metrics.
const (
	OpChart   = "chart"
	OpReport  = "report"
	OpExport  = "export"
	OpSummary = "summary"
)

// Analysis is the outcome of loading and aggregating one input.
type Analysis struct {
	Table   *domain.StockTable
	Summary *domain.StatsSummary
}

// Report returns the console report of the analysis.
func (a *Analysis) Report() string {
	return exporter.FormatReport(a.Summary)
}

// Markdown returns the markdown report of the analysis.
func (a *Analysis) Markdown() string {
	return exporter.FormatMarkdown(a.Summary)
}

// StockService runs the stock pipeline.
type StockService struct {
	loader    *dataprocessing.Loader
	files     *validation.FileValidator
	workbook  *exporter.WorkbookExporter
	csv       *exporter.CSVWriter
	chartOpts exporter.ChartOptions
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
	logger    *slog.Logger
}

// NewStockService creates the service. tel may be nil, in which case spans
// and metrics are not recorded.
func NewStockService(cfg *config.Config, tel *infrastructure.Telemetry, logger *slog.Logger) *StockService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	s := &StockService{
		loader:    dataprocessing.NewLoader(logger, cfg.Input.MaxBytes),
		files:     validation.NewFileValidator(logger),
		workbook:  exporter.NewWorkbookExporter(logger, cfg.Chart.Title),
		csv:       exporter.NewCSVWriter(logger),
		chartOpts: exporter.ChartOptionsFromConfig(cfg.Chart),
		tracer:    noop.NewTracerProvider().Tracer(infrastructure.MeterName),
		logger:    infrastructure.WithComponent(logger, "stock_service"),
	}
	if tel != nil {
		s.tracer = tel.Tracer
		s.metrics = tel.Metrics
	}
	return s
}

// GenerateChart loads input, writes the pie chart to output and returns the
// analysis. No image is written when any stage fails.
func (s *StockService) GenerateChart(ctx context.Context, input, output string) (*Analysis, error) {
	var analysis *Analysis
	err := s.run(ctx, OpChart, func(ctx context.Context) (int, error) {
		if err := s.preflight(ctx, input, output); err != nil {
			return 0, err
		}
		var err error
		analysis, err = s.analyzeFile(ctx, input)
		if err != nil {
			return 0, err
		}
		return analysis.Table.Len(), s.stage(ctx, "render", func(ctx context.Context) error {
			chart, err := exporter.BuildChart(analysis.Summary, s.chartOpts)
			if err != nil {
				return err
			}
			if err := chart.Save(output); err != nil {
				return err
			}
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.String("chart.path", output),
				attribute.Int("chart.slices", len(chart.Slices)))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// Report loads input and returns its analysis.
func (s *StockService) Report(ctx context.Context, input string) (*Analysis, error) {
	var analysis *Analysis
	err := s.run(ctx, OpReport, func(ctx context.Context) (int, error) {
		if err := s.preflight(ctx, input, ""); err != nil {
			return 0, err
		}
		var err error
		analysis, err = s.analyzeFile(ctx, input)
		if err != nil {
			return 0, err
		}
		return analysis.Table.Len(), nil
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// Export loads input and writes an XLSX workbook to workbookPath and, when
// sharesPath is not empty, the per-product shares as CSV.
func (s *StockService) Export(ctx context.Context, input, workbookPath, sharesPath string) (*Analysis, error) {
	var analysis *Analysis
	err := s.run(ctx, OpExport, func(ctx context.Context) (int, error) {
		if err := s.preflight(ctx, input, workbookPath); err != nil {
			return 0, err
		}
		if sharesPath != "" {
			if err := s.files.ValidateOutputFile(sharesPath); err != nil {
				return 0, err
			}
		}
		var err error
		analysis, err = s.analyzeFile(ctx, input)
		if err != nil {
			return 0, err
		}
		return analysis.Table.Len(), s.stage(ctx, "export", func(ctx context.Context) error {
			if err := s.workbook.Save(analysis.Summary, workbookPath); err != nil {
				return err
			}
			if sharesPath == "" {
				return nil
			}
			return s.csv.WriteSharesCSV(sharesPath, analysis.Summary)
		})
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// Summarize loads and aggregates a table read from r.
func (s *StockService) Summarize(ctx context.Context, r io.Reader, format dataprocessing.Format) (*Analysis, error) {
	var analysis *Analysis
	err := s.run(ctx, OpSummary, func(ctx context.Context) (int, error) {
		var err error
		analysis, err = s.analyze(ctx, r, format)
		if err != nil {
			return 0, err
		}
		return analysis.Table.Len(), nil
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// WorkbookXLSX loads a table read from r and encodes its workbook export.
func (s *StockService) WorkbookXLSX(ctx context.Context, r io.Reader, format dataprocessing.Format) ([]byte, *Analysis, error) {
	var (
		analysis *Analysis
		xlsx     bytes.Buffer
	)
	err := s.run(ctx, OpExport, func(ctx context.Context) (int, error) {
		var err error
		analysis, err = s.analyze(ctx, r, format)
		if err != nil {
			return 0, err
		}
		return analysis.Table.Len(), s.stage(ctx, "export", func(ctx context.Context) error {
			return s.workbook.Write(analysis.Summary, &xlsx)
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return xlsx.Bytes(), analysis, nil
}

// ChartPNG loads a table read from r and renders its pie chart as PNG.
func (s *StockService) ChartPNG(ctx context.Context, r io.Reader, format dataprocessing.Format) ([]byte, *Analysis, error) {
	var (
		analysis *Analysis
		png      bytes.Buffer
	)
	err := s.run(ctx, OpChart, func(ctx context.Context) (int, error) {
		var err error
		analysis, err = s.analyze(ctx, r, format)
		if err != nil {
			return 0, err
		}
		return analysis.Table.Len(), s.stage(ctx, "render", func(ctx context.Context) error {
			chart, err := exporter.BuildChart(analysis.Summary, s.chartOpts)
			if err != nil {
				return err
			}
			return chart.Render(&png)
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return png.Bytes(), analysis, nil
}

func (s *StockService) preflight(ctx context.Context, input, output string) error {
	return s.stage(ctx, "validate", func(ctx context.Context) error {
		if err := s.files.ValidateInputFile(input); err != nil {
			return err
		}
		if output == "" {
			return nil
		}
		return s.files.ValidateOutputFile(output)
	})
}

func (s *StockService) analyzeFile(ctx context.Context, input string) (*Analysis, error) {
	var table *domain.StockTable
	err := s.stage(ctx, "load", func(ctx context.Context) error {
		var err error
		table, err = s.loader.LoadFile(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, table)
}

func (s *StockService) analyze(ctx context.Context, r io.Reader, format dataprocessing.Format) (*Analysis, error) {
	var table *domain.StockTable
	err := s.stage(ctx, "load", func(ctx context.Context) error {
		var err error
		table, err = s.loader.Load(ctx, r, format)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, table)
}

func (s *StockService) aggregate(ctx context.Context, table *domain.StockTable) (*Analysis, error) {
	var summary *domain.StatsSummary
	err := s.stage(ctx, "aggregate", func(ctx context.Context) error {
		var err error
		summary, err = dataprocessing.Aggregate(table)
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.Int("stock.total", summary.Total),
				attribute.Int("stock.products", summary.Count))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Analysis{Table: table, Summary: summary}, nil
}

// run wraps one pipeline operation in a span and records its metrics.
func (s *StockService) run(ctx context.Context, operation string, fn func(ctx context.Context) (int, error)) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "stock."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("stock.operation", operation),
			attribute.String("trace_id", infrastructure.GetTraceID(ctx)),
		),
	)
	defer span.End()

	records, err := fn(ctx)
	elapsed := time.Since(start)

	errType := ""
	if err != nil {
		errType = string(apierrors.TypeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "stock pipeline failed",
			slog.String("operation", operation),
			slog.String("error_type", errType),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed))
	} else {
		span.SetStatus(codes.Ok, "")
		s.logger.InfoContext(ctx, "stock pipeline completed",
			slog.String("operation", operation),
			slog.Int("records", records),
			slog.Duration("elapsed", elapsed))
	}

	s.metrics.RecordRun(ctx, operation, records, elapsed, errType)
	return err
}

// stage runs fn in a child span.
func (s *StockService) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "stock."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
