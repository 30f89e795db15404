// Package tradepnl computes realized and unrealized profit-and-loss metrics
// for a portfolio from a raw trade log, using FIFO lot matching, and
// reconciles them into daily, weekly, monthly and yearly aggregates under
// strict cross-checked invariants.
//
// The core functionalities include:
//   - FIFO Lot Matching: Pairing opening and closing trades per symbol and
//     direction, with support for direction reversals and lots tagged by the
//     day they were opened.
//   - Metrics Derivation: Turning matched lots plus live and closing prices
//     into a fixed bundle of named metrics (cost basis, market value,
//     floating P&L, today's realized split, trade counts, win rate, period
//     sums).
//   - Daily Aggregation: Folding trade history into one result per calendar
//     day and rolling week/month/year-to-date sums over it, cached by the
//     content of the daily array.
//   - Invariant Checking: Re-deriving every total by an independent path and
//     failing loudly when the two disagree, so that replays over historical
//     data reproduce published results to the cent.
//
// All arithmetic uses exact decimals; all day bucketing happens on the
// America/New_York trading calendar regardless of server locale. The engine
// is a pure synchronous computation: it accepts a complete in-memory
// snapshot, always receives an explicit evaluation date, and returns a
// complete result.
//
// This package serves as the foundational logic for the `pnl` command-line
// tool.
package tradepnl
