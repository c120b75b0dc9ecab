package exporter

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stockviz/pkg/contracts/domain"
)

const reportRule = "=================================================="

var printer = message.NewPrinter(language.English)

// FormatReport renders the console statistics report. The output depends
// only on the summary.
//
//	==================================================
//	STOCK ANALYSIS
//	==================================================
//	Total Stock: 220 units
//	Products: 3
//	Average Stock: 73.3 units
//	Highest: Mouse (120 units, 54.5%)
//	Lowest: Camera (15 units, 6.8%)
func FormatReport(summary *domain.StatsSummary) string {
	if summary == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(reportRule + "\n")
	b.WriteString("STOCK ANALYSIS\n")
	b.WriteString(reportRule + "\n")
	printer.Fprintf(&b, "Total Stock: %d units\n", summary.Total)
	printer.Fprintf(&b, "Products: %d\n", summary.Count)
	b.WriteString("Average Stock: " + FormatOneDecimal(summary.Average) + " units\n")
	b.WriteString("Highest: " + describeShare(summary.Max) + "\n")
	b.WriteString("Lowest: " + describeShare(summary.Min) + "\n")
	return b.String()
}

// FormatMarkdown renders the summary and every product share as markdown.
func FormatMarkdown(summary *domain.StatsSummary) string {
	if summary == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Stock Analysis\n\n")
	printer.Fprintf(&b, "- **Total Stock:** %d units\n", summary.Total)
	printer.Fprintf(&b, "- **Products:** %d\n", summary.Count)
	b.WriteString("- **Average Stock:** " + FormatOneDecimal(summary.Average) + " units\n")
	b.WriteString("- **Highest:** " + describeShare(summary.Max) + "\n")
	b.WriteString("- **Lowest:** " + describeShare(summary.Min) + "\n\n")

	b.WriteString("| Product | Stock | Share |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, share := range summary.Shares {
		printer.Fprintf(&b, "| %s | %d | %s%% |\n",
			escapeMarkdownCell(share.Product), share.Stock, FormatOneDecimal(share.Percent))
	}
	return b.String()
}

// FormatOneDecimal rounds v half away from zero to one decimal place.
func FormatOneDecimal(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1)
}

func describeShare(s domain.ItemShare) string {
	return printer.Sprintf("%s (%d units, %s%%)", s.Product, s.Stock, FormatOneDecimal(s.Percent))
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
