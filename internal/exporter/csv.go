package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"stockviz/internal/infrastructure"
	"stockviz/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: infrastructure.WithComponent(logger, "csv")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write encodes the options to out.
func (w *CSVWriter) Write(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile encodes the options and replaces path with the result.
func (w *CSVWriter) WriteFile(path string, options WriteOptions) error {
	w.logger.Debug("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	var buf bytes.Buffer
	if err := w.Write(&buf, options); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

// WriteSharesCSV writes one row per product with its stock and share.
func (w *CSVWriter) WriteSharesCSV(path string, summary *domain.StatsSummary) error {
	return w.WriteFile(path, SharesOptions(summary))
}

// SharesOptions lays out the per-product shares of summary.
func SharesOptions(summary *domain.StatsSummary) WriteOptions {
	opts := WriteOptions{
		Headers:   []string{"Product", "Stock", "Percent"},
		BOMPrefix: true,
	}
	if summary == nil {
		return opts
	}
	opts.Records = make([][]string, 0, len(summary.Shares))
	for _, s := range summary.Shares {
		opts.Records = append(opts.Records, []string{
			s.Product,
			strconv.Itoa(s.Stock),
			FormatOneDecimal(s.Percent),
		})
	}
	return opts
}
