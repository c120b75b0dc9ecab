package exporter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stockviz/internal/config"
	apierrors "stockviz/internal/errors"
	"stockviz/pkg/contracts/domain"
)

// Palette is cycled through in table order.
var Palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
}

// LegendTitle heads the legend box.
const LegendTitle = "Stock Units"

// ChartOptions controls the rendered chart.
type ChartOptions struct {
	Title            string
	Width            int
	Height           int
	DPI              float64
	ExplodeThreshold int
}

// DefaultChartOptions returns the options used when no configuration is given.
func DefaultChartOptions() ChartOptions {
	return ChartOptionsFromConfig(config.Default().Chart)
}

// ChartOptionsFromConfig converts the chart section of the configuration.
func ChartOptionsFromConfig(cfg config.ChartConfig) ChartOptions {
	return ChartOptions{
		Title:            cfg.Title,
		Width:            cfg.Width,
		Height:           cfg.Height,
		DPI:              cfg.DPI,
		ExplodeThreshold: cfg.ExplodeThreshold,
	}
}

// Slice is one drawn wedge.
type Slice struct {
	Product  string
	Label    string
	Value    int
	Percent  float64
	Color    string
	Exploded bool
}

// LegendEntry is one line of the legend.
type LegendEntry struct {
	Text  string
	Color string
}

// Chart is a pie chart built in memory. Zero-valued products appear in the
// legend but have no slice.
type Chart struct {
	Title       string
	Slices      []Slice
	LegendTitle string
	Legend      []LegendEntry

	opts ChartOptions
}

// BuildChart lays out the chart for summary.
func BuildChart(summary *domain.StatsSummary, opts ChartOptions) (*Chart, error) {
	if summary == nil || len(summary.Shares) == 0 {
		return nil, apierrors.NewEmptyDataError("no slices to draw")
	}
	if summary.Total <= 0 {
		return nil, apierrors.NewEmptyDataError("all stock values are zero")
	}

	c := &Chart{
		Title:       opts.Title,
		LegendTitle: LegendTitle,
		Legend:      make([]LegendEntry, 0, len(summary.Shares)),
		opts:        opts,
	}
	for i, share := range summary.Shares {
		color := Palette[i%len(Palette)]
		c.Legend = append(c.Legend, LegendEntry{
			Text:  printer.Sprintf("%s: %d", share.Product, share.Stock),
			Color: color,
		})
		if share.Stock == 0 {
			continue
		}
		c.Slices = append(c.Slices, Slice{
			Product:  share.Product,
			Label:    fmt.Sprintf("%s (%s%%)", share.Product, FormatOneDecimal(share.Percent)),
			Value:    share.Stock,
			Percent:  share.Percent,
			Color:    color,
			Exploded: share.Stock < opts.ExplodeThreshold,
		})
	}
	return c, nil
}

// Render writes the chart to w as PNG.
func (c *Chart) Render(w io.Writer) error {
	values := make([]chart.Value, 0, len(c.Slices))
	for _, s := range c.Slices {
		style := chart.Style{
			FillColor:   hexColor(s.Color),
			StrokeColor: drawing.ColorWhite,
			StrokeWidth: 2,
			FontColor:   drawing.ColorBlack,
			FontSize:    10,
		}
		if s.Exploded {
			style.StrokeColor = outlineColor
			style.StrokeWidth = 4
		}
		values = append(values, chart.Value{
			Value: float64(s.Value),
			Label: s.Label,
			Style: style,
		})
	}

	pie := chart.PieChart{
		Title: c.Title,
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Width:    c.opts.Width,
		Height:   c.opts.Height,
		DPI:      c.opts.DPI,
		Values:   values,
		Elements: []chart.Renderable{c.legend()},
	}

	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// Save renders the chart and writes it to path. Nothing is written when
// rendering fails.
func (c *Chart) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

var outlineColor = drawing.Color{R: 51, G: 51, B: 51, A: 255}

// legend draws the legend box along the right edge of the image.
func (c *Chart) legend() chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		const (
			padding  = 8
			swatch   = 12
			fontSize = 10.0
		)

		r.SetFont(defaults.GetFont())
		r.SetFontSize(fontSize)
		r.SetFontColor(drawing.ColorBlack)

		titleBox := r.MeasureText(c.LegendTitle)
		lineHeight := titleBox.Height()
		textWidth := titleBox.Width()
		for _, e := range c.Legend {
			tb := r.MeasureText(e.Text)
			if tb.Width() > textWidth {
				textWidth = tb.Width()
			}
			if tb.Height() > lineHeight {
				lineHeight = tb.Height()
			}
		}
		if swatch > lineHeight {
			lineHeight = swatch
		}

		width := padding*3 + swatch + textWidth
		height := padding*2 + (lineHeight+padding)*(len(c.Legend)+1)

		left := canvas.Right + padding*2
		if left+width > c.opts.Width-padding {
			left = c.opts.Width - width - padding
		}
		top := canvas.Top
		box := chart.Box{Top: top, Left: left, Right: left + width, Bottom: top + height}

		chart.Draw.Box(r, box, chart.Style{
			FillColor:   drawing.ColorWhite,
			StrokeColor: drawing.Color{R: 180, G: 180, B: 180, A: 255},
			StrokeWidth: 1,
		})

		r.SetFont(defaults.GetFont())
		r.SetFontSize(fontSize)
		r.SetFontColor(drawing.ColorBlack)

		y := top + padding + lineHeight
		r.Text(c.LegendTitle, left+padding, y)

		for _, e := range c.Legend {
			y += lineHeight + padding
			sx := left + padding
			sy := y - swatch

			r.SetFillColor(hexColor(e.Color))
			r.SetStrokeColor(hexColor(e.Color))
			r.SetStrokeWidth(1)
			r.MoveTo(sx, sy)
			r.LineTo(sx+swatch, sy)
			r.LineTo(sx+swatch, sy+swatch)
			r.LineTo(sx, sy+swatch)
			r.Close()
			r.FillStroke()

			r.SetFontColor(drawing.ColorBlack)
			r.Text(e.Text, sx+swatch+padding, y)
		}
	}
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
