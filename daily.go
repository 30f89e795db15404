package tradepnl

import (
	"encoding/json"
	"fmt"
)

// DailyResult is one row of the daily ledger: realized P&L booked on that
// day and the floating P&L of the open book at that day's close.
type DailyResult struct {
	Date       Date
	Realized   Money
	Unrealized Money
	Delta      Money // change of Unrealized from the prior day
	HasDelta   bool

	// Legacy ledgers carry a pre-computed total. It is never used as a
	// source of truth, only cross-checked; see Validate.
	legacyTotal    Money
	hasLegacyTotal bool
}

// Validate cross-checks the stored fields. A row whose legacy total does not
// equal realized+unrealized is corrupted replay state and must be rejected,
// never silently reinterpreted.
func (d DailyResult) Validate() error {
	if !d.hasLegacyTotal {
		return nil
	}
	sum := d.Realized.Add(d.Unrealized).RoundCents()
	if !sum.Equal(d.legacyTotal.RoundCents()) {
		return fmt.Errorf("daily result %s is inconsistent: realized %s + unrealized %s != stored total %s",
			d.Date, d.Realized, d.Unrealized, d.legacyTotal)
	}
	return nil
}

// DeltaOr returns the stored unrealized delta, or derives it from the
// previous day's unrealized value when the row doesn't carry one.
func (d DailyResult) DeltaOr(prevUnrealized Money) Money {
	if d.HasDelta {
		return d.Delta
	}
	return d.Unrealized.Sub(prevUnrealized)
}

// MarshalJSON persists exactly the ledger keys: date, realized, unrealized
// and, when known, unrealizedDelta. Nothing else.
func (d DailyResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", d.Date)
	w.Append("realized", d.Realized)
	w.Append("unrealized", d.Unrealized)
	if d.HasDelta {
		w.Append("unrealizedDelta", d.Delta)
	}
	return w.MarshalJSON()
}

func (d *DailyResult) UnmarshalJSON(data []byte) error {
	var row struct {
		Date       Date   `json:"date"`
		Realized   Money  `json:"realized"`
		Unrealized Money  `json:"unrealized"`
		Delta      *Money `json:"unrealizedDelta"`
		Total      *Money `json:"pnl"` // legacy, cross-checked only
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	d.Date = row.Date
	d.Realized = row.Realized
	d.Unrealized = row.Unrealized
	if row.Delta != nil {
		d.Delta, d.HasDelta = *row.Delta, true
	}
	if row.Total != nil {
		d.legacyTotal, d.hasLegacyTotal = *row.Total, true
	}
	return nil
}

// ClosePrices maps symbol and day to an end-of-day price.
type ClosePrices map[string]map[string]Money

// Get returns the close price for a symbol on a day.
func (p ClosePrices) Get(symbol string, on Date) (Money, bool) {
	days, ok := p[symbol]
	if !ok {
		return Money{}, false
	}
	price, ok := days[on.String()]
	return price, ok
}

// Set records a close price, allocating the per-symbol map on first use.
func (p ClosePrices) Set(symbol string, on Date, price Money) {
	days, ok := p[symbol]
	if !ok {
		days = make(map[string]Money)
		p[symbol] = days
	}
	days[on.String()] = price
}

// earliest returns the first day any close price is recorded for.
func (p ClosePrices) earliest() (Date, bool) {
	var min Date
	found := false
	for _, days := range p {
		for str := range days {
			on, err := ParseDate(str)
			if err != nil {
				continue
			}
			if !found || on.Before(min) {
				min, found = on, true
			}
		}
	}
	return min, found
}

// GenerateDaily folds the trade history into one DailyResult per calendar
// day, from the earliest trade or price date through eval inclusive. Days
// with no trades, no open positions and no need to anchor eval are skipped.
//
// Realized is the sum of that day's per-trade realized P&L. Unrealized marks
// open lots with the first price the fallback chain resolves: close price for
// the day, then (on eval only) the live position price, then the most recent
// price seen for the symbol, then the lot's own average cost. Trades with
// malformed dates are folded into the evaluation day, after all dated trades.
func GenerateDaily(trades []Trade, initial []InitialPosition, positions []Position, prices ClosePrices, eval Date) ([]DailyResult, error) {
	normalized := make([]Trade, 0, len(trades))
	for _, t := range trades {
		side, err := ParseSide(string(t.Side))
		if err != nil {
			return nil, fmt.Errorf("trade on %s %s: %w", t.Symbol, t.Date, err)
		}
		t.Side = side
		normalized = append(normalized, t)
	}
	sorted := SortTrades(TradesThrough(normalized, eval))

	live := make(map[string]Position, len(positions))
	for _, p := range positions {
		live[p.Symbol] = p
	}

	start := eval
	if len(sorted) > 0 {
		if day, ok := sorted[0].When(); ok && day.Before(start) {
			start = day
		}
	}
	if day, ok := prices.earliest(); ok && day.Before(start) {
		start = day
	}

	run, err := newRun(initial, eval)
	if err != nil {
		return nil, err
	}

	lastSeen := make(map[string]Money) // most recent resolved price per symbol
	var daily []DailyResult
	var prevUnrealized Money
	next := 0 // index into sorted

	for on := start; !on.After(eval); on = on.Add(1) {
		dayRealized := Money{}
		traded := false
		for next < len(sorted) {
			day, ok := sorted[next].When()
			if ok && day.After(on) {
				break
			}
			if !ok && on != eval {
				// malformed dates sort last and land on the evaluation day
				break
			}
			e := run.apply(sorted[next])
			dayRealized = dayRealized.Add(e.Realized)
			lastSeen[e.Symbol] = e.Price
			traded = true
			next++
		}

		unrealized, open := markToMarket(run, live, prices, lastSeen, on, on == eval)
		if !traded && !open && on != eval {
			prevUnrealized = unrealized
			continue
		}

		row := DailyResult{
			Date:       on,
			Realized:   dayRealized.RoundCents(),
			Unrealized: unrealized,
		}
		if len(daily) > 0 {
			row.Delta = unrealized.Sub(prevUnrealized).RoundCents()
			row.HasDelta = true
		}
		daily = append(daily, row)
		prevUnrealized = unrealized
	}
	return daily, nil
}

// markToMarket values every open lot at the day's resolved price and reports
// whether any position is open. A symbol whose price chain resolves nothing
// is omitted rather than failing the whole day.
func markToMarket(run *FIFOResult, live map[string]Position, prices ClosePrices, lastSeen map[string]Money, on Date, isEval bool) (Money, bool) {
	var total Money
	open := false
	for _, symbol := range run.Symbols() {
		long, short := run.openLots(symbol)
		if long.quantity().IsExhausted() && short.quantity().IsExhausted() {
			continue
		}
		open = true

		price, ok := prices.Get(symbol, on)
		if !ok && isEval {
			if p, held := live[symbol]; held && p.PriceOK {
				price, ok = p.Last, true
			}
		}
		if !ok {
			price, ok = lastSeen[symbol]
		}
		if !ok {
			// last resort: each lot marks at its own cost, i.e. zero float
			continue
		}
		lastSeen[symbol] = price

		for _, l := range long {
			total = total.Add(price.Sub(l.Price).Mul(l.Quantity))
		}
		for _, l := range short {
			total = total.Add(l.Price.Sub(price).Mul(l.Quantity))
		}
	}
	return total.RoundCents(), open
}
