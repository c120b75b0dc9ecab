package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"stockviz/internal/config"
	apierrors "stockviz/internal/errors"
	"stockviz/internal/infrastructure"
	customMiddleware "stockviz/internal/middleware"
	"stockviz/internal/services"
	handlers "stockviz/internal/transport/http"
	"stockviz/pkg/contracts"
)

// Application represents the HTTP application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	StockService  *services.StockService
	HealthService *services.HealthService
	Telemetry     *infrastructure.Telemetry
	Logger        *slog.Logger
}

// NewApplication wires services, handlers and middleware. tel may be nil, in
// which case requests are not traced and /metrics is not served.
func NewApplication(cfg *config.Config, tel *infrastructure.Telemetry, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, apierrors.NewConfigError("application requires a configuration", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	a := &Application{
		Config:        cfg,
		Telemetry:     tel,
		Logger:        logger.With(slog.String("component", "app")),
		StockService:  services.NewStockService(cfg, tel, logger),
		HealthService: services.NewHealthService(cfg, logger),
	}

	a.setupRouter(logger)
	a.createServer()
	return a, nil
}

// setupRouter configures middleware and routes.
// Ordering: RequestID → RealIP → Tracing → Logger → Recoverer → RateLimit → body limit
func (a *Application) setupRouter(logger *slog.Logger) {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(logger)

	var tracer trace.Tracer = noop.NewTracerProvider().Tracer(infrastructure.MeterName)
	if a.Telemetry != nil {
		tracer = a.Telemetry.Tracer
	}

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.Tracing(tracer))
	r.Use(customMiddleware.StructuredLogger(logger))
	r.Use(customMiddleware.Recoverer(logger))
	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			logger,
		).Handler)
	}
	r.Use(customMiddleware.MaxBodyBytes(a.Config.Server.MaxBodyBytes))

	healthHandler := handlers.NewHealthHandler(a.HealthService, logger)
	stockHandler := handlers.NewStockHandler(a.StockService, logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", healthHandler.Routes())
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/version", healthHandler.Version)
		r.Route("/"+contracts.APIVersion, func(r chi.Router) {
			r.Mount("/stock", stockHandler.Routes())
		})
	})

	if a.Telemetry != nil {
		r.Handle("/metrics", a.Telemetry.MetricsHandler())
	}

	r.NotFound(errorHandler.NotFound)
	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Config.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts the server down within
// the configured shutdown timeout.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "server listening",
			slog.String("address", ln.Addr().String()),
			slog.String("version", contracts.Version))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the server
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
