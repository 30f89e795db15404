package tradepnl

import "fmt"

// TradeCounts tallies trades by side.
type TradeCounts struct {
	Buys   int `json:"buys"`
	Sells  int `json:"sells"`
	Shorts int `json:"shorts"`
	Covers int `json:"covers"`
}

func (c *TradeCounts) add(s Side) {
	switch s {
	case Buy:
		c.Buys++
	case Sell:
		c.Sells++
	case Short:
		c.Shorts++
	case Cover:
		c.Covers++
	}
}

// Total returns the sum of all four counters.
func (c TradeCounts) Total() int { return c.Buys + c.Sells + c.Shorts + c.Covers }

// MetricsBundle is the full named-metric output for one evaluation date.
// It is recomputed from scratch on every call and carries no identity.
type MetricsBundle struct {
	Date Date

	CostBasis   Money // sum of |avgCost x qty| over positions
	MarketValue Money // sum of |lastPrice x qty| over positions
	Floating    Money // mark-to-market P&L on open positions

	// Today's realized P&L on lots opened before today.
	HistoricalRealized Money
	// Today's realized P&L on lots opened today, under two views that are
	// expected to agree. Divergence is a signal to investigate, so both are
	// published.
	IntradayPaired Money // pairing of today's trades only, ignoring history
	IntradayFIFO   Money // tagged matches inside the full FIFO run
	// HistoricalRealized + Floating + IntradayFIFO, to the cent.
	TodayTotal Money

	TodayCounts TradeCounts
	TotalCounts TradeCounts // includes one seed trade per non-zero initial position

	// Sum of the realized column of the daily ledger at or before the
	// evaluation date. Always taken from the ledger, never re-derived.
	LedgerRealized Money

	Wins    int
	Losses  int
	Flats   int
	WinRate float64 // wins / (wins+losses), 0 when nothing is decided

	WeekToDate  Money
	MonthToDate Money
	YearToDate  Money
}

// Calculator derives a MetricsBundle from a complete in-memory snapshot.
// The evaluation date is always explicit; nothing reads the wall clock.
type Calculator struct {
	Trades    []Trade
	Initial   []InitialPosition
	Positions []Position    // live view with last prices; nil derives from the run
	Daily     []DailyResult // previously computed daily ledger
	Sums      *Summer       // period-sum cache; nil uses a private one
}

// Compute runs the full derivation for the given evaluation date.
// It fails loudly on an inconsistent daily ledger and on trades the FIFO
// engine rejects; malformed trade dates merely sort last.
func (c *Calculator) Compute(eval Date) (*MetricsBundle, error) {
	run, err := ComputeFIFO(TradesThrough(c.Trades, eval), c.Initial, eval)
	if err != nil {
		return nil, err
	}
	return c.compute(run)
}

// ComputeFromRun derives the bundle from an existing FIFO run, sparing a
// second pass when the caller already holds one.
func (c *Calculator) ComputeFromRun(run *FIFOResult) (*MetricsBundle, error) {
	return c.compute(run)
}

func (c *Calculator) compute(run *FIFOResult) (*MetricsBundle, error) {
	eval := run.EvaluationDate()
	b := &MetricsBundle{Date: eval}

	positions := c.Positions
	if positions == nil {
		positions = run.Positions()
	}
	for _, p := range positions {
		b.CostBasis = b.CostBasis.Add(p.CostBasis())
		b.MarketValue = b.MarketValue.Add(p.MarketValue())
		b.Floating = b.Floating.Add(p.Floating())
	}
	b.Floating = b.Floating.RoundCents()

	for _, m := range run.Matches {
		switch {
		case m.CloseToday && !m.OpenToday:
			b.HistoricalRealized = b.HistoricalRealized.Add(m.PnL)
		case m.CloseToday && m.OpenToday:
			b.IntradayFIFO = b.IntradayFIFO.Add(m.PnL)
		}
		switch {
		case m.PnL.IsPositive():
			b.Wins++
		case m.PnL.IsNegative():
			b.Losses++
		default:
			b.Flats++
		}
	}
	b.IntradayPaired = pairIntraday(run.Enriched, eval)
	b.TodayTotal = b.HistoricalRealized.Add(b.Floating).Add(b.IntradayFIFO).RoundCents()

	for _, e := range run.Enriched {
		b.TotalCounts.add(e.Side)
		if day, ok := e.When(); ok && day == eval {
			b.TodayCounts.add(e.Side)
		}
	}
	for _, pos := range c.Initial {
		// A non-zero seed position counts as one opening trade.
		if pos.Quantity.IsPositive() {
			b.TotalCounts.Buys++
		} else if pos.Quantity.IsNegative() {
			b.TotalCounts.Shorts++
		}
	}

	for _, d := range c.Daily {
		if d.Date.After(eval) {
			continue
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		b.LedgerRealized = b.LedgerRealized.Add(d.Realized)
	}
	b.LedgerRealized = b.LedgerRealized.RoundCents()

	if decided := b.Wins + b.Losses; decided > 0 {
		b.WinRate = float64(b.Wins) / float64(decided)
	}

	sums := c.Sums
	if sums == nil {
		sums = NewSummer(DefaultSummerDatasets)
	}
	b.WeekToDate = sums.Sum(c.Daily, Weekly.ToDate(eval))
	b.MonthToDate = sums.Sum(c.Daily, Monthly.ToDate(eval))
	b.YearToDate = sums.Sum(c.Daily, Yearly.ToDate(eval))

	return b, nil
}

// TradesThrough keeps trades dated at or before the end of the evaluation
// day. Trades with malformed dates cannot be excluded by date, so they stay:
// they sort last and never count as "today".
func TradesThrough(trades []Trade, eval Date) []Trade {
	kept := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if day, ok := t.When(); ok && day.After(eval) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// pairIntraday stack-matches today's trades against each other, BUY against
// SELL and SHORT against COVER, ignoring historical lots entirely. The
// unmatched tail of a closing trade closes history and is not today's money.
// Built on the same consumption primitive as the engine so the two intraday
// views cannot drift apart structurally.
func pairIntraday(enriched []EnrichedTrade, eval Date) Money {
	type pairBook struct{ long, short lotQueue }
	books := make(map[string]*pairBook)
	var realized Money

	for _, e := range enriched {
		day, ok := e.When()
		if !ok || day != eval {
			continue
		}
		pb := books[e.Symbol]
		if pb == nil {
			pb = &pairBook{}
			books[e.Symbol] = pb
		}
		switch e.Side {
		case Buy:
			pb.long.push(e.Quantity, e.Price, true)
		case Short:
			pb.short.push(e.Quantity, e.Price, true)
		case Sell:
			pb.long.consume(e.Quantity, func(l *lot, matched Quantity) {
				realized = realized.Add(e.Price.Sub(l.Price).Mul(matched).RoundCents())
			})
		case Cover:
			pb.short.consume(e.Quantity, func(l *lot, matched Quantity) {
				realized = realized.Add(l.Price.Sub(e.Price).Mul(matched).RoundCents())
			})
		}
	}
	return realized
}

// MarshalJSON emits the bundle with a stable field order, so identical
// inputs produce byte-identical output.
func (b *MetricsBundle) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", b.Date)
	w.Append("costBasis", b.CostBasis)
	w.Append("marketValue", b.MarketValue)
	w.Append("floating", b.Floating)
	w.Append("historicalRealized", b.HistoricalRealized)
	w.Append("intradayPaired", b.IntradayPaired)
	w.Append("intradayFifo", b.IntradayFIFO)
	w.Append("todayTotal", b.TodayTotal)
	w.Append("todayCounts", b.TodayCounts)
	w.Append("totalCounts", b.TotalCounts)
	w.Append("ledgerRealized", b.LedgerRealized)
	w.Append("wins", b.Wins)
	w.Append("losses", b.Losses)
	w.Append("flats", b.Flats)
	w.Append("winRate", b.WinRate)
	w.Append("weekToDate", b.WeekToDate)
	w.Append("monthToDate", b.MonthToDate)
	w.Append("yearToDate", b.YearToDate)
	return w.MarshalJSON()
}

// Describe returns a one-line summary used by log output.
func (b *MetricsBundle) Describe() string {
	return fmt.Sprintf("%s today=%s floating=%s realized(hist)=%s realized(intraday)=%s",
		b.Date, b.TodayTotal.SignedString(), b.Floating.SignedString(),
		b.HistoricalRealized.SignedString(), b.IntradayFIFO.SignedString())
}
