// Package renderer turns computed P&L artifacts into markdown reports.
// Rendering is strictly read-only: nothing here recomputes a metric.
package renderer

import (
	"fmt"
	"strings"

	"github.com/tradepnl/tradepnl"
)

// MetricsMarkdown renders the full metrics bundle of one evaluation day.
func MetricsMarkdown(b *tradepnl.MetricsBundle) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# P&L Metrics for %s\n\n", b.Date)

	fmt.Fprint(&sb, "## Today\n\n")
	fmt.Fprintln(&sb, "| Metric | Value |")
	fmt.Fprintln(&sb, "|:---|---:|")
	fmt.Fprintf(&sb, "| Historical Realized | %s |\n", b.HistoricalRealized.SignedString())
	fmt.Fprintf(&sb, "| Intraday Realized (paired) | %s |\n", b.IntradayPaired.SignedString())
	fmt.Fprintf(&sb, "| Intraday Realized (FIFO) | %s |\n", b.IntradayFIFO.SignedString())
	fmt.Fprintf(&sb, "| Floating | %s |\n", b.Floating.SignedString())
	fmt.Fprintf(&sb, "| **Today Total** | **%s** |\n\n", b.TodayTotal.SignedString())

	fmt.Fprint(&sb, "## Portfolio\n\n")
	fmt.Fprintln(&sb, "| Metric | Value |")
	fmt.Fprintln(&sb, "|:---|---:|")
	fmt.Fprintf(&sb, "| Cost Basis | %s |\n", b.CostBasis)
	fmt.Fprintf(&sb, "| Market Value | %s |\n", b.MarketValue)
	fmt.Fprintf(&sb, "| Ledger Realized | %s |\n\n", b.LedgerRealized.SignedString())

	fmt.Fprint(&sb, "## Activity\n\n")
	fmt.Fprintln(&sb, "| | Buys | Sells | Shorts | Covers | Total |")
	fmt.Fprintln(&sb, "|:---|---:|---:|---:|---:|---:|")
	fmt.Fprintf(&sb, "| Today | %d | %d | %d | %d | %d |\n",
		b.TodayCounts.Buys, b.TodayCounts.Sells, b.TodayCounts.Shorts, b.TodayCounts.Covers, b.TodayCounts.Total())
	fmt.Fprintf(&sb, "| Cumulative | %d | %d | %d | %d | %d |\n\n",
		b.TotalCounts.Buys, b.TotalCounts.Sells, b.TotalCounts.Shorts, b.TotalCounts.Covers, b.TotalCounts.Total())

	fmt.Fprintf(&sb, "Closed lots: %d wins, %d losses, %d flat (win rate %.1f%%)\n\n",
		b.Wins, b.Losses, b.Flats, b.WinRate*100)

	fmt.Fprint(&sb, "## Period to Date\n\n")
	fmt.Fprintln(&sb, "| Week | Month | Year |")
	fmt.Fprintln(&sb, "|---:|---:|---:|")
	fmt.Fprintf(&sb, "| %s | %s | %s |\n",
		b.WeekToDate.SignedString(), b.MonthToDate.SignedString(), b.YearToDate.SignedString())

	return sb.String()
}

// DailyMarkdown renders the daily ledger as one table row per day.
func DailyMarkdown(daily []tradepnl.DailyResult) string {
	var sb strings.Builder

	fmt.Fprint(&sb, "# Daily P&L\n\n")
	if len(daily) == 0 {
		fmt.Fprint(&sb, "No results.\n")
		return sb.String()
	}

	fmt.Fprintln(&sb, "| Date | Realized | Unrealized | Delta |")
	fmt.Fprintln(&sb, "|:---|---:|---:|---:|")
	var totalRealized tradepnl.Money
	for _, d := range daily {
		delta := ""
		if d.HasDelta {
			delta = d.Delta.SignedString()
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", d.Date, d.Realized.SignedString(), d.Unrealized.SignedString(), delta)
		totalRealized = totalRealized.Add(d.Realized)
	}
	fmt.Fprintf(&sb, "| **Total** | **%s** | | |\n", totalRealized.RoundCents().SignedString())

	return sb.String()
}

// AuditMarkdown renders the per-lot breakdown of today's realized P&L.
func AuditMarkdown(eval tradepnl.Date, rows []tradepnl.AuditRow) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Realized P&L Breakdown for %s\n\n", eval)
	if len(rows) == 0 {
		fmt.Fprint(&sb, "Nothing was closed today.\n")
		return sb.String()
	}

	fmt.Fprintln(&sb, "| Symbol | Time | Action | Into | Qty | Open | Close | P&L |")
	fmt.Fprintln(&sb, "|:---|:---|:---|:---|---:|---:|---:|---:|")
	var total tradepnl.Money
	for _, r := range rows {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Symbol, r.Time, r.Action, r.Bucket, r.Quantity, r.OpenPrice, r.ClosePrice, r.PnL.SignedString())
		total = total.Add(r.PnL)
	}
	fmt.Fprintf(&sb, "| **Total** | | | | | | | **%s** |\n", total.RoundCents().SignedString())

	return sb.String()
}
