package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type reportCmd struct {
	env      *env
	markdown bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "prints the statistics report without rendering a chart" }
func (*reportCmd) Usage() string {
	return `stockviz report [-markdown] [<input.csv|input.xlsx>]

  Loads the stock table and prints the statistics report. With -markdown the
  report includes a table of every product's share.

`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.markdown, "markdown", false, "Print the report as markdown")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	analysis, err := s.service.Report(ctx, input)
	if err != nil {
		return c.env.fail(err)
	}

	if c.markdown {
		fmt.Fprint(c.env.stdout, analysis.Markdown())
	} else {
		fmt.Fprint(c.env.stdout, analysis.Report())
	}
	return subcommands.ExitSuccess
}
