// Package cmd implements the CLI application to compute trading P&L.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/tradepnl/tradepnl"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&metricsCmd{}, "reports")
	c.Register(&dailyCmd{}, "reports")
	c.Register(&auditCmd{}, "reports")

	c.Register(&replayCmd{}, "replay")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var tradesFile = flag.String("trades-file", "trades.jsonl", "Path to the trade log (JSONL format)")
var initialFile = flag.String("initial-file", "initial.jsonl", "Path to the initial positions file (JSONL format)")
var pricesFile = flag.String("prices-file", "prices.json", "Path to the close prices file (JSON format)")
var dailyFile = flag.String("daily-file", "daily.jsonl", "Path to the daily results ledger (JSONL format)")
var verbose = flag.Bool("v", false, "enable verbose logging")

func setupLogging() {
	logrus.SetOutput(os.Stderr)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// DecodeTrades loads the trade log from the app trades file.
func DecodeTrades() ([]tradepnl.Trade, error) {
	f, err := os.Open(*tradesFile)
	if err != nil {
		return nil, fmt.Errorf("opening trade log: %w", err)
	}
	defer f.Close()
	return tradepnl.DecodeTrades(f)
}

// DecodeInitialPositions loads the pre-existing book from the app initial
// positions file. A missing file is an empty book.
func DecodeInitialPositions() ([]tradepnl.InitialPosition, error) {
	f, err := os.Open(*initialFile)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("file", *initialFile).Debug("no initial positions file, starting from an empty book")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening initial positions: %w", err)
	}
	defer f.Close()
	return tradepnl.DecodeInitialPositions(f)
}

// DecodeClosePrices loads the close price map from the app prices file.
// A missing file is an empty map.
func DecodeClosePrices() (tradepnl.ClosePrices, error) {
	f, err := os.Open(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("file", *pricesFile).Debug("no close prices file, marking at last seen prices")
		return tradepnl.ClosePrices{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening close prices: %w", err)
	}
	defer f.Close()
	return tradepnl.DecodeClosePrices(f)
}

// DecodeDailyResults loads the persisted daily ledger from the app daily
// file. A missing file is an empty ledger.
func DecodeDailyResults() ([]tradepnl.DailyResult, error) {
	f, err := os.Open(*dailyFile)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("file", *dailyFile).Debug("no daily ledger file")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening daily ledger: %w", err)
	}
	defer f.Close()
	return tradepnl.DecodeDailyResults(f)
}

// evalDate resolves the evaluation date flag, defaulting to today in New
// York.
func evalDate(raw string) (tradepnl.Date, error) {
	if raw == "" {
		return tradepnl.Today(), nil
	}
	return tradepnl.ParseDate(raw)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
