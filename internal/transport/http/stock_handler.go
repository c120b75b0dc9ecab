package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"stockviz/internal/dataprocessing"
	apierrors "stockviz/internal/errors"
	"stockviz/internal/services"
	"stockviz/pkg/contracts/domain"
)

// SummaryResponse is the body of POST /summary.
type SummaryResponse struct {
	Summary *domain.StatsSummary `json:"summary"`
	Report  string               `json:"report"`
}

// StockHandler serves the stock pipeline endpoints.
type StockHandler struct {
	service      StockServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service StockServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StockHandler {
	return &StockHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "stock_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the stock routes
func (h *StockHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/summary", h.Summary)
	r.Post("/chart", h.Chart)
	r.Post("/report", h.Report)
	return r
}

// Summary handles POST /summary
func (h *StockHandler) Summary(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.Summarize(r.Context(), r.Body, requestFormat(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, SummaryResponse{
		Summary: analysis.Summary,
		Report:  analysis.Report(),
	})
}

// Chart handles POST /chart
func (h *StockHandler) Chart(w http.ResponseWriter, r *http.Request) {
	png, analysis, err := h.service.ChartPNG(r.Context(), r.Body, requestFormat(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeBody(w, r, "image/png", png, analysis)
}

// Report handles POST /report. The format query parameter selects text
// (default), markdown or an XLSX workbook.
func (h *StockHandler) Report(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "", "text", "markdown":
	case "xlsx":
		h.workbook(w, r)
		return
	default:
		problem := apierrors.NewProblemDetails(http.StatusBadRequest, apierrors.TypeValidation,
			"Unsupported Report Format", "format must be one of text, markdown, xlsx", r.URL.Path).
			WithExtension("format", format)
		render.Render(w, r, problem)
		return
	}

	analysis, err := h.service.Summarize(r.Context(), r.Body, requestFormat(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == "markdown" {
		h.writeBody(w, r, "text/markdown; charset=utf-8", []byte(analysis.Markdown()), analysis)
		return
	}
	render.PlainText(w, r, analysis.Report())
}

func (h *StockHandler) workbook(w http.ResponseWriter, r *http.Request) {
	xlsx, analysis, err := h.service.WorkbookXLSX(r.Context(), r.Body, requestFormat(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="stock_report.xlsx"`)
	h.writeBody(w, r, dataprocessing.ContentTypeXLSX, xlsx, analysis)
}

func (h *StockHandler) writeBody(w http.ResponseWriter, r *http.Request, contentType string, body []byte, analysis *services.Analysis) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Stock-Total", strconv.Itoa(analysis.Summary.Total))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write response",
			slog.String("content_type", contentType),
			slog.String("error", err.Error()))
	}
}

func requestFormat(r *http.Request) dataprocessing.Format {
	return dataprocessing.FormatFromContentType(r.Header.Get("Content-Type"))
}
