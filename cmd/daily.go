package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tradepnl/tradepnl"
	"github.com/tradepnl/tradepnl/renderer"
)

// dailyCmd holds the flags for the 'daily' subcommand.
type dailyCmd struct {
	date   string
	output string
}

func (*dailyCmd) Name() string     { return "daily" }
func (*dailyCmd) Synopsis() string { return "aggregate the trade log into per-day P&L results" }
func (*dailyCmd) Usage() string {
	return `pnl daily [-d <date>] [-o <file>]

  Folds the trade history into one result per calendar day, from the first
  trade through the evaluation date: realized P&L booked that day and the
  floating P&L of the open book at that day's close.

Usage Examples:
# Show the ledger as a report.
$ pnl daily -d 2025-03-06

# Persist it for later metrics and replay runs.
$ pnl daily -o daily.jsonl

`
}

func (c *dailyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Evaluation date (defaults to today)")
	f.StringVar(&c.output, "o", "", "Write the ledger as JSONL to this file instead of rendering it")
}

func (c *dailyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	setupLogging()

	eval, err := evalDate(c.date)
	if err != nil {
		return fail(err)
	}
	trades, err := DecodeTrades()
	if err != nil {
		return fail(err)
	}
	initial, err := DecodeInitialPositions()
	if err != nil {
		return fail(err)
	}
	prices, err := DecodeClosePrices()
	if err != nil {
		return fail(err)
	}

	daily, err := tradepnl.GenerateDaily(trades, initial, nil, prices, eval)
	if err != nil {
		return fail(err)
	}

	if c.output == "" {
		printMarkdown(renderer.DailyMarkdown(daily))
		return subcommands.ExitSuccess
	}

	out, err := os.Create(c.output)
	if err != nil {
		return fail(err)
	}
	defer out.Close()
	if err := tradepnl.EncodeDailyResults(out, daily); err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d daily results to %s\n", len(daily), c.output)
	return subcommands.ExitSuccess
}
