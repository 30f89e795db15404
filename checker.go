package tradepnl

import "fmt"

// InvariantError reports a broken engine invariant with enough context to
// chase the offending input: these are defects in the trade log or in
// upstream recording, never recoverable locally.
type InvariantError struct {
	Check    string
	Symbol   string
	Seq      int
	Quantity Quantity
	Date     string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q violated: symbol=%s seq=%d qty=%s date=%s",
		e.Check, e.Symbol, e.Seq, e.Quantity, e.Date)
}

// CheckTotalEquality asserts that the day's total P&L equals the sum of its
// three components to the cent.
func CheckTotalEquality(b *MetricsBundle) error {
	sum := b.HistoricalRealized.Add(b.Floating).Add(b.IntradayFIFO).RoundCents()
	if !sum.Equal(b.TodayTotal.RoundCents()) {
		return fmt.Errorf("total P&L %s does not reconcile with components %s on %s",
			b.TodayTotal, sum, b.Date)
	}
	return nil
}

// CheckConservation independently replays signed quantity deltas (buy +q,
// sell -q, short -q, cover +q) from the initial positions and asserts the
// FIFO engine's running quantity agrees after every trade.
func CheckConservation(run *FIFOResult, initial []InitialPosition) error {
	expected := make(map[string]Quantity)
	for _, pos := range initial {
		expected[pos.Symbol] = expected[pos.Symbol].Add(pos.Quantity)
	}
	for _, e := range run.Enriched {
		next := expected[e.Symbol].Add(e.Side.SignedDelta(e.Quantity))
		expected[e.Symbol] = next
		if !next.Sub(e.PositionQty).IsExhausted() {
			return &InvariantError{
				Check:    "lot-conservation",
				Symbol:   e.Symbol,
				Seq:      e.Seq,
				Quantity: e.PositionQty,
				Date:     e.Date,
			}
		}
	}
	return nil
}

// CheckNoOverClose asserts that no SELL drives a symbol's long-side running
// quantity negative and no COVER drives its short side positive. The engine
// tolerates such trades by flipping direction; well-formed logs never
// contain them, so the checker surfaces them as recording defects.
func CheckNoOverClose(run *FIFOResult, initial []InitialPosition) error {
	running := make(map[string]Quantity)
	for _, pos := range initial {
		running[pos.Symbol] = running[pos.Symbol].Add(pos.Quantity)
	}
	for _, e := range run.Enriched {
		qty := running[e.Symbol]
		switch e.Side {
		case Sell:
			if qty.Sub(e.Quantity).Add(Q(lotEpsilon)).IsNegative() {
				return &InvariantError{Check: "over-close-sell", Symbol: e.Symbol, Seq: e.Seq, Quantity: e.Quantity, Date: e.Date}
			}
		case Cover:
			if qty.Add(e.Quantity).Sub(Q(lotEpsilon)).IsPositive() {
				return &InvariantError{Check: "over-close-cover", Symbol: e.Symbol, Seq: e.Seq, Quantity: e.Quantity, Date: e.Date}
			}
		}
		running[e.Symbol] = qty.Add(e.Side.SignedDelta(e.Quantity))
	}
	return nil
}

// CheckNoNegativeLots asserts the running quantity never goes negative.
// This is the long-only replay path, valid when initial positions are
// non-negative by convention.
func CheckNoNegativeLots(run *FIFOResult, initial []InitialPosition) error {
	running := make(map[string]Quantity)
	for _, pos := range initial {
		running[pos.Symbol] = running[pos.Symbol].Add(pos.Quantity)
	}
	for _, e := range run.Enriched {
		next := running[e.Symbol].Add(e.Side.SignedDelta(e.Quantity))
		running[e.Symbol] = next
		if next.Add(Q(lotEpsilon)).IsNegative() {
			return &InvariantError{Check: "negative-lot", Symbol: e.Symbol, Seq: e.Seq, Quantity: next, Date: e.Date}
		}
	}
	return nil
}

// ReplayOptions configures a multi-day replay.
type ReplayOptions struct {
	// LongOnly additionally runs the negative-lot check, for books whose
	// initial positions are non-negative by convention.
	LongOnly bool
	// Sums is the period-sum cache shared across passes; nil allocates one.
	Sums *Summer
}

// Replay folds the trade history forward one evaluation day at a time over
// the range, re-running the full pipeline per day with the cumulative trade
// set and the daily results accumulated so far, and validating every pass
// before the next day is appended. It produces exactly one DailyResult per
// day of the range.
//
// Trades with malformed dates cannot be assigned to any replay day and are
// skipped here; the boundary warns about them when they are loaded.
func Replay(trades []Trade, initial []InitialPosition, prices ClosePrices, rng Range, opts ReplayOptions) ([]DailyResult, error) {
	dated := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if _, ok := t.When(); ok {
			dated = append(dated, t)
		}
	}
	sums := opts.Sums
	if sums == nil {
		sums = NewSummer(DefaultSummerDatasets)
	}

	var daily []DailyResult
	for _, on := range rng.Days() {
		run, err := ComputeFIFO(TradesThrough(dated, on), initial, on)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", on, err)
		}
		if err := CheckConservation(run, initial); err != nil {
			return nil, fmt.Errorf("replay %s: %w", on, err)
		}
		if err := CheckNoOverClose(run, initial); err != nil {
			return nil, fmt.Errorf("replay %s: %w", on, err)
		}
		if opts.LongOnly {
			if err := CheckNoNegativeLots(run, initial); err != nil {
				return nil, fmt.Errorf("replay %s: %w", on, err)
			}
		}

		calc := &Calculator{Trades: dated, Initial: initial, Daily: daily, Sums: sums}
		bundle, err := calc.ComputeFromRun(run)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", on, err)
		}
		if err := CheckTotalEquality(bundle); err != nil {
			return nil, fmt.Errorf("replay %s: %w", on, err)
		}

		rows, err := GenerateDaily(dated, initial, nil, prices, on)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", on, err)
		}
		row := DailyResult{Date: on}
		if n := len(rows); n > 0 && rows[n-1].Date == on {
			row = rows[n-1]
		}
		if len(daily) > 0 {
			row.Delta = row.Unrealized.Sub(daily[len(daily)-1].Unrealized).RoundCents()
			row.HasDelta = true
		}
		daily = append(daily, row)
	}
	return daily, nil
}
