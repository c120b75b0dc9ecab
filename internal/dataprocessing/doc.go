// Package dataprocessing turns inventory files into statistics.
//
// A Loader reads a CSV file, or the first sheet of an XLSX workbook, into a
// domain.StockTable. The header row is matched case-insensitively against a
// small set of aliases (product, product name, name, item for the product
// column; stock, quantity, qty, units for the stock column) and every data
// row is validated before the table is returned:
//
//	loader := dataprocessing.NewLoader(logger, 0)
//	table, err := loader.LoadFile(ctx, "stock.csv")
//
// Rows are numbered from 1, counting data rows only. Row 0 refers to the
// header. A product name may appear only once per file.
//
// Aggregate derives a domain.StatsSummary from a table:
//
//	summary, err := dataprocessing.Aggregate(table)
//
// Failures are reported with the typed errors of internal/errors:
// ValidationError for bad input, EmptyDataError for a file without data rows
// or with zero total stock, IOError when the file cannot be read.
package dataprocessing
