package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type chartCmd struct {
	env    *env
	output string
}

func (*chartCmd) Name() string { return "chart" }
func (*chartCmd) Synopsis() string {
	return "renders the stock pie chart and prints the statistics report"
}
func (*chartCmd) Usage() string {
	return `stockviz chart [-out <image.png>] [<input.csv|input.xlsx>]

  Loads the stock table (product_stock.csv by default), prints the statistics
  report and writes the pie chart as PNG. Nothing is written when the input is
  invalid.

Usage Examples:
$ stockviz chart
$ stockviz chart -out inventory.png warehouse.xlsx

`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "out", "", "Output image path (defaults to the configured chart.output_path)")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	input, err := inputPath(f.Args())
	if err != nil {
		fmt.Fprintln(c.env.stderr, err)
		return subcommands.ExitUsageError
	}

	s, err := c.env.setup()
	if err != nil {
		return c.env.fail(err)
	}
	defer s.close(ctx)

	output := c.output
	if output == "" {
		output = s.cfg.Chart.OutputPath
	}

	analysis, err := s.service.GenerateChart(ctx, input, output)
	if err != nil {
		return c.env.fail(err)
	}

	fmt.Fprint(c.env.stdout, analysis.Report())
	fmt.Fprintf(c.env.stdout, "Chart saved: %s\n", output)
	return subcommands.ExitSuccess
}
