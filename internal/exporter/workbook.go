package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apierrors "stockviz/internal/errors"
	"stockviz/internal/infrastructure"
	"stockviz/pkg/contracts/domain"
)

const (
	StockSheet   = "Stock"
	SummarySheet = "Summary"
)

// WorkbookExporter writes the records, the summary and a native pie chart
// into an XLSX workbook.
type WorkbookExporter struct {
	logger *slog.Logger
	title  string
}

// NewWorkbookExporter creates an exporter whose chart carries title.
func NewWorkbookExporter(logger *slog.Logger, title string) *WorkbookExporter {
	return &WorkbookExporter{
		logger: infrastructure.WithComponent(logger, "workbook"),
		title:  title,
	}
}

// Save builds the workbook and writes it to path.
func (e *WorkbookExporter) Save(summary *domain.StatsSummary, path string) error {
	f, err := e.build(summary)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}

	e.logger.Info("workbook exported",
		slog.String("path", path),
		slog.Int("products", summary.Count))
	return nil
}

// Write builds the workbook and streams it to w.
func (e *WorkbookExporter) Write(summary *domain.StatsSummary, w io.Writer) error {
	f, err := e.build(summary)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return apierrors.NewIOError("write", "workbook", err)
	}
	return nil
}

func (e *WorkbookExporter) build(summary *domain.StatsSummary) (*excelize.File, error) {
	if summary == nil || len(summary.Shares) == 0 {
		return nil, apierrors.NewEmptyDataError("no records to export")
	}

	f := excelize.NewFile()
	if err := e.fill(f, summary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return f, nil
}

func (e *WorkbookExporter) fill(f *excelize.File, summary *domain.StatsSummary) error {
	if err := f.SetSheetName(f.GetSheetName(0), StockSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	oneDecimal := "0.0"
	percent, err := f.NewStyle(&excelize.Style{CustomNumFmt: &oneDecimal})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(StockSheet, "A1", &[]interface{}{"Product", "Stock", "Share (%)"}); err != nil {
		return err
	}
	for i, share := range summary.Shares {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{share.Product, share.Stock, roundOne(share.Percent)}
		if err := f.SetSheetRow(StockSheet, cell, &row); err != nil {
			return err
		}
	}
	last := len(summary.Shares) + 1
	if err := f.SetCellStyle(StockSheet, "A1", "C1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(StockSheet, "C2", fmt.Sprintf("C%d", last), percent); err != nil {
		return err
	}
	if err := f.SetColWidth(StockSheet, "A", "A", 28); err != nil {
		return err
	}

	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Stock", summary.Total},
		{"Products", summary.Count},
		{"Average Stock", roundOne(summary.Average)},
		{"Highest", describeShare(summary.Max)},
		{"Lowest", describeShare(summary.Min)},
	}
	for i := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &summaryRows[i]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "B", 32); err != nil {
		return err
	}

	return f.AddChart(StockSheet, "E2", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", StockSheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", StockSheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", StockSheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: e.title}},
		Legend: excelize.ChartLegend{Position: "right"},
		PlotArea: excelize.ChartPlotArea{
			ShowPercent: true,
		},
		Dimension: excelize.ChartDimension{Width: 640, Height: 480},
	})
}

func roundOne(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
