package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/tradepnl/tradepnl"
	"github.com/tradepnl/tradepnl/renderer"
)

// auditCmd holds the flags for the 'audit' subcommand.
type auditCmd struct {
	date   string
	asJSON bool
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "break down today's realized P&L lot by lot" }
func (*auditCmd) Usage() string {
	return `pnl audit [-d <date>] [-json]

  Lists every lot closed on the evaluation date with its open and close
  prices and which bucket it realized into, historical or intraday, so every
  dollar of the day's realized P&L can be traced to a specific lot.

`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Evaluation date (defaults to today)")
	f.BoolVar(&c.asJSON, "json", false, "Emit the rows as JSONL instead of markdown")
}

func (c *auditCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	run, err := tradepnl.ComputeFIFO(tradepnl.TradesThrough(trades, eval), initial, eval)
	if err != nil {
		return fail(err)
	}
	rows := tradepnl.AuditBreakdown(run)

	if !c.asJSON {
		printMarkdown(renderer.AuditMarkdown(eval, rows))
		return subcommands.ExitSuccess
	}
	for _, row := range rows {
		out, err := json.Marshal(row)
		if err != nil {
			return fail(err)
		}
		fmt.Println(string(out))
	}
	return subcommands.ExitSuccess
}
