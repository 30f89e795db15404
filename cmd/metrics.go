package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/tradepnl/tradepnl"
	"github.com/tradepnl/tradepnl/renderer"
)

// metricsCmd holds the flags for the 'metrics' subcommand.
type metricsCmd struct {
	date    string
	asJSON  bool
	selects string
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "compute the full P&L metrics for one day" }
func (*metricsCmd) Usage() string {
	return `pnl metrics [-d <date>] [-json] [-select <path>]

  Computes the named metrics for the evaluation date: cost basis, market
  value, floating P&L, realized P&L split into historical and intraday
  buckets, trade counts, win rate and period-to-date sums.

Usage Examples:
# Today's metrics as a report.
$ pnl metrics

# A single metric, for scripting.
$ pnl metrics -d 2025-03-06 -select '$.todayTotal'

`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Evaluation date (defaults to today)")
	f.BoolVar(&c.asJSON, "json", false, "Emit the bundle as JSON instead of markdown")
	f.StringVar(&c.selects, "select", "", "JSONPath into the JSON bundle, prints the selected value only")
}

func (c *metricsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	setupLogging()

	eval, err := evalDate(c.date)
	if err != nil {
		return fail(err)
	}
	bundle, err := computeBundle(eval)
	if err != nil {
		return fail(err)
	}
	logrus.Debug(bundle.Describe())

	switch {
	case c.selects != "":
		return printSelected(bundle, c.selects)
	case c.asJSON:
		out, err := json.Marshal(bundle)
		if err != nil {
			return fail(err)
		}
		fmt.Println(string(out))
	default:
		printMarkdown(renderer.MetricsMarkdown(bundle))
	}
	return subcommands.ExitSuccess
}

// computeBundle assembles the calculator from the app files and runs it.
func computeBundle(eval tradepnl.Date) (*tradepnl.MetricsBundle, error) {
	trades, err := DecodeTrades()
	if err != nil {
		return nil, err
	}
	initial, err := DecodeInitialPositions()
	if err != nil {
		return nil, err
	}
	daily, err := DecodeDailyResults()
	if err != nil {
		return nil, err
	}
	calc := &tradepnl.Calculator{Trades: trades, Initial: initial, Daily: daily}
	return calc.Compute(eval)
}

// printSelected marshals the bundle and prints the value a JSONPath resolves
// to, so scripts can lift one number without parsing the whole report.
func printSelected(bundle *tradepnl.MetricsBundle, path string) subcommands.ExitStatus {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return fail(err)
	}
	var jobj any
	if err := json.Unmarshal(raw, &jobj); err != nil {
		return fail(err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return fail(fmt.Errorf("selecting %q: %w", path, err))
	}
	// jsonpath is never clear about whether it returns a list of 1 answer
	// or a single answer, so keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	out, err := json.Marshal(jval)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return subcommands.ExitSuccess
}
