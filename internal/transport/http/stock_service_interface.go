package http

import (
	"context"
	"io"

	"stockviz/internal/dataprocessing"
	"stockviz/internal/services"
)

// StockServiceInterface is the part of services.StockService the handlers use.
type StockServiceInterface interface {
	Summarize(ctx context.Context, r io.Reader, format dataprocessing.Format) (*services.Analysis, error)
	ChartPNG(ctx context.Context, r io.Reader, format dataprocessing.Format) ([]byte, *services.Analysis, error)
	WorkbookXLSX(ctx context.Context, r io.Reader, format dataprocessing.Format) ([]byte, *services.Analysis, error)
}
