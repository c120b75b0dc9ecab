// Package exporter renders a domain.StatsSummary for people and other tools.
//
// BuildChart lays out a pie chart in memory; Chart.Render draws it as PNG and
// Chart.Save writes it through a temporary file so a failed render never
// leaves a partial image behind:
//
//	c, err := exporter.BuildChart(summary, exporter.DefaultChartOptions())
//	if err != nil {
//	    return err
//	}
//	err = c.Save("stock_chart.png")
//
// FormatReport and FormatMarkdown produce the console and markdown reports.
// WorkbookExporter writes an XLSX workbook with a native pie chart, and
// CSVWriter writes the per-product shares with a UTF-8 BOM for Excel.
package exporter
