package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	apierrors "stockviz/internal/errors"
	"stockviz/internal/infrastructure"
	"stockviz/pkg/contracts/domain"
)

// Format identifies the encoding of an input file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultMaxBytes bounds the input read by a Loader created with a zero limit.
const DefaultMaxBytes int64 = 32 << 20

const (
	roleProduct = "product"
	roleStock   = "stock"
)

// columnAliases maps normalized header names to the column role they fill.
var columnAliases = map[string]string{
	"product":      roleProduct,
	"product name": roleProduct,
	"name":         roleProduct,
	"item":         roleProduct,
	"stock":        roleStock,
	"quantity":     roleStock,
	"qty":          roleStock,
	"units":        roleStock,
}

// FormatFromPath picks the input format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", apierrors.NewHeaderError("", apierrors.ReasonUnsupportedInput).
		WithDetail("%s: expected .csv or .xlsx", filepath.Base(path))
}

// ContentTypeXLSX is the media type of an XLSX workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FormatFromContentType picks the input format from an HTTP Content-Type.
// Anything that is not a spreadsheet is read as CSV.
func FormatFromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "spreadsheetml") || strings.HasSuffix(ct, "/xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Loader reads inventory files into a StockTable.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
	maxBytes int64
}

// NewLoader creates a loader. maxBytes <= 0 selects DefaultMaxBytes.
func NewLoader(logger *slog.Logger, maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{
		logger:   infrastructure.WithComponent(logger, "loader"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		maxBytes: maxBytes,
	}
}

// LoadFile opens path and loads it in the format given by its extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.StockTable, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewIOError("open", path, err)
	}
	defer f.Close()

	return l.load(ctx, f, format, path)
}

// Load reads a whole table from r. On failure no table is returned.
func (l *Loader) Load(ctx context.Context, r io.Reader, format Format) (*domain.StockTable, error) {
	return l.load(ctx, r, format, "")
}

func (l *Loader) load(ctx context.Context, r io.Reader, format Format, source string) (*domain.StockTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, apierrors.NewIOError("read", source, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, apierrors.NewHeaderError("", apierrors.ReasonInputTooLarge).
			WithDetail("input exceeds %d bytes", l.maxBytes)
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = readCSVRows(data)
	case FormatXLSX:
		rows, err = readXLSXRows(data)
	default:
		return nil, apierrors.NewHeaderError("", apierrors.ReasonUnsupportedInput).
			WithDetail("format %q", format)
	}
	if err != nil {
		return nil, err
	}

	table, err := l.buildTable(ctx, rows)
	if err != nil {
		l.logger.DebugContext(ctx, "load rejected",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return nil, err
	}
	table.Source = source

	l.logger.DebugContext(ctx, "stock table loaded",
		slog.String("source", source),
		slog.String("format", string(format)),
		slog.Int("records", table.Len()))
	return table, nil
}

func readCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			return nil, apierrors.NewHeaderError("", apierrors.ReasonMalformedInput).
				WithDetail("line %d: %v", parseErr.Line, parseErr.Err)
		}
		return nil, apierrors.NewHeaderError("", apierrors.ReasonMalformedInput).WithDetail("%v", err)
	}
	return rows, nil
}

func readXLSXRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apierrors.NewHeaderError("", apierrors.ReasonMalformedInput).
			WithDetail("not a valid xlsx workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apierrors.NewHeaderError("", apierrors.ReasonMalformedInput).
			WithDetail("sheet %q: %v", sheets[0], err)
	}
	return rows, nil
}

// header records where each role lives and how the file spelled it.
type header struct {
	index map[string]int
	name  map[string]string
}

func parseHeader(cells []string) (*header, error) {
	h := &header{index: map[string]int{}, name: map[string]string{}}
	for i, cell := range cells {
		raw := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		role, ok := columnAliases[strings.ToLower(raw)]
		if !ok {
			continue
		}
		if prev, dup := h.name[role]; dup {
			return nil, apierrors.NewHeaderError(raw, apierrors.ReasonDuplicateColumn).
				WithDetail("%q and %q both name the %s column", prev, raw, role)
		}
		h.index[role] = i
		h.name[role] = raw
	}

	for _, role := range []string{roleProduct, roleStock} {
		if _, ok := h.index[role]; !ok {
			return nil, apierrors.NewHeaderError(role, apierrors.ReasonMissingColumn)
		}
	}
	return h, nil
}

func (l *Loader) buildTable(ctx context.Context, rows [][]string) (*domain.StockTable, error) {
	var h *header
	table := &domain.StockTable{}
	firstSeen := make(map[string]int)
	row := 0

	for _, cells := range rows {
		if isBlank(cells) {
			continue
		}
		if h == nil {
			parsed, err := parseHeader(cells)
			if err != nil {
				return nil, err
			}
			h = parsed
			continue
		}

		row++
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := l.parseRecord(h, cells, row)
		if err != nil {
			return nil, err
		}
		if first, dup := firstSeen[record.Product]; dup {
			return nil, apierrors.NewValidationError(row, h.name[roleProduct], apierrors.ReasonDuplicateProduct, record.Product).
				WithDetail("first seen at row %d", first)
		}
		firstSeen[record.Product] = row
		table.Records = append(table.Records, record)
	}

	if h == nil {
		return nil, apierrors.NewEmptyDataError("no header row")
	}
	if table.Len() == 0 {
		return nil, apierrors.NewEmptyDataError("no data rows")
	}
	return table, nil
}

func (l *Loader) parseRecord(h *header, cells []string, row int) (domain.StockRecord, error) {
	productCol, stockCol := h.index[roleProduct], h.index[roleStock]
	if productCol >= len(cells) {
		return domain.StockRecord{}, apierrors.NewValidationError(row, h.name[roleProduct], apierrors.ReasonMissingColumn, "")
	}
	if stockCol >= len(cells) {
		return domain.StockRecord{}, apierrors.NewValidationError(row, h.name[roleStock], apierrors.ReasonMissingColumn, "")
	}

	product := strings.TrimSpace(cells[productCol])
	rawStock := strings.TrimSpace(cells[stockCol])

	// An empty product is reported before a bad stock value on the same row.
	if product != "" {
		if _, err := strconv.Atoi(rawStock); err != nil {
			verr := apierrors.NewValidationError(row, h.name[roleStock], apierrors.ReasonNonNumericStock, rawStock)
			if stderrors.Is(err, strconv.ErrRange) {
				verr.WithDetail("value out of range")
			}
			return domain.StockRecord{}, verr
		}
	}
	stock, _ := strconv.Atoi(rawStock)

	record := domain.StockRecord{Product: product, Stock: stock}
	if err := l.validate.Struct(record); err != nil {
		return domain.StockRecord{}, recordError(err, h, row, rawStock)
	}
	return record, nil
}

// recordError converts the first struct validation failure into a ValidationError.
func recordError(err error, h *header, row int, rawStock string) error {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate row %d: %w", row, err)
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Product":
		return apierrors.NewValidationError(row, h.name[roleProduct], apierrors.ReasonEmptyProduct, "")
	case "Stock":
		return apierrors.NewValidationError(row, h.name[roleStock], apierrors.ReasonNegativeStock, rawStock)
	}
	return apierrors.NewValidationError(row, fe.Field(), apierrors.ReasonMalformedInput, fmt.Sprint(fe.Value())).
		WithDetail("failed %q", fe.Tag())
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")) != "" {
			return false
		}
	}
	return true
}
