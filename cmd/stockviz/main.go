// Command stockviz reads a product stock table, prints summary statistics and
// renders a pie chart of each product's share of the total.
//
//	stockviz chart [-out stock_chart.png] [product_stock.csv]
//	stockviz report [-markdown] [product_stock.csv]
//	stockviz export [-out stock.xlsx] [-shares shares.csv] [product_stock.csv]
//	stockviz serve [-addr :8080]
//
// Logs go to stderr; stdout carries only the report.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	os.Exit(run(context.Background(), path.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the selected subcommand and returns the process
// exit code.
func run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	e := &env{stdout: stdout, stderr: stderr}
	fs.StringVar(&e.configPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&e.metricsFile, "metrics-file", "", "Write pipeline metrics in Prometheus textfile format to this path")
	fs.StringVar(&e.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	commander := subcommands.NewCommander(fs, name)
	commander.Output = stdout
	commander.Error = stderr
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&chartCmd{env: e}, "pipeline")
	commander.Register(&reportCmd{env: e}, "pipeline")
	commander.Register(&exportCmd{env: e}, "pipeline")
	commander.Register(&serveCmd{env: e}, "server")

	if err := fs.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}
	return int(commander.Execute(ctx))
}
