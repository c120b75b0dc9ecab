package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"stockviz/internal/app"
)

type serveCmd struct {
	env  *env
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the stock pipeline over HTTP" }
func (*serveCmd) Usage() string {
	return `stockviz serve [-addr <host:port>]

  Starts the HTTP API. POST a CSV or XLSX body to /api/v1/stock/summary,
  /api/v1/stock/chart or /api/v1/stock/report. Stops on SIGINT or SIGTERM.

`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (defaults to the configured server.addr)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.env.setup()
	if err != nil {
		return c.env.fail(err)
	}
	defer s.close(context.WithoutCancel(ctx))

	if c.addr != "" {
		s.cfg.Server.Addr = c.addr
	}

	application, err := app.NewApplication(s.cfg, s.telemetry, s.logger)
	if err != nil {
		return c.env.fail(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "server stopped", slog.String("error", err.Error()))
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}
