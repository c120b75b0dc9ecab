package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type exportCmd struct {
	env    *env
	output string
	shares string
}

func (*exportCmd) Name() string { return "export" }
func (*exportCmd) Synopsis() string {
	return "writes an XLSX workbook with the records, the summary and a pie chart"
}
func (*exportCmd) Usage() string {
	return `stockviz export [-out <workbook.xlsx>] [-shares <shares.csv>] [<input.csv|input.xlsx>]

  Loads the stock table and writes a workbook with a Stock sheet (records,
  shares and a native pie chart) and a Summary sheet. With -shares the
  per-product shares are also written as CSV.

`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "out", "stock_report.xlsx", "Output workbook path")
	f.StringVar(&c.shares, "shares", "", "Optional CSV path for the per-product shares")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	analysis, err := s.service.Export(ctx, input, c.output, c.shares)
	if err != nil {
		return c.env.fail(err)
	}

	fmt.Fprint(c.env.stdout, analysis.Report())
	fmt.Fprintf(c.env.stdout, "Workbook saved: %s\n", c.output)
	if c.shares != "" {
		fmt.Fprintf(c.env.stdout, "Shares saved: %s\n", c.shares)
	}
	return subcommands.ExitSuccess
}
