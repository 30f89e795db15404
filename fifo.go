package tradepnl

import "fmt"

// Match is one matched lot-closing event: a closing trade consuming (part of)
// an open lot. The FIFO run produces a flat list of these, which every
// realized-P&L metric and the audit breakdown are derived from.
type Match struct {
	Symbol     string
	Seq        int    // sequence of the closing trade within its symbol
	Date       string // raw date of the closing trade
	Side       Side
	Quantity   Quantity
	OpenPrice  Money // price of the consumed lot
	ClosePrice Money // price of the closing trade
	PnL        Money // realized P&L of this match, cent precision
	OpenToday  bool  // the consumed lot was opened on the evaluation date
	CloseToday bool  // the closing trade falls on the evaluation date
}

// book holds the FIFO state of a single symbol: one lot queue per direction
// and the cumulative realized P&L.
type book struct {
	long     lotQueue
	short    lotQueue
	realized Money
	seq      int
}

// quantity returns the signed running quantity: long positive, short negative.
func (b *book) quantity() Quantity {
	return b.long.quantity().Sub(b.short.quantity())
}

// avgCost returns the weighted-average cost of the remaining lots on the
// active side, at cost scale. Zero when the book is flat.
func (b *book) avgCost() Money {
	if long := b.long.quantity(); long.IsPositive() {
		return b.long.cost().Div(long).RoundCost()
	}
	if short := b.short.quantity(); short.IsPositive() {
		return b.short.cost().Div(short).RoundCost()
	}
	return Money{}
}

// breakEven returns the per-share price at which closing the remaining
// position would bring the symbol's total P&L to zero: (remaining cost basis
// minus cumulative realized P&L) divided by the remaining quantity.
func (b *book) breakEven() Money {
	var basis Money
	qty := Q(0)
	if long := b.long.quantity(); long.IsPositive() {
		basis, qty = b.long.cost(), long
	} else if short := b.short.quantity(); short.IsPositive() {
		basis, qty = b.short.cost(), short
	} else {
		return Money{}
	}
	return basis.Sub(b.realized).Div(qty).RoundCost()
}

// FIFOResult is the complete output of one FIFO run.
type FIFOResult struct {
	Enriched []EnrichedTrade
	Matches  []Match

	books map[string]*book
	order []string // symbols in first-seen order
	eval  Date
}

// EvaluationDate returns the date the run was computed for.
func (r *FIFOResult) EvaluationDate() Date { return r.eval }

// Symbols returns all symbols seen by the run, in first-seen order.
func (r *FIFOResult) Symbols() []string { return r.order }

// Quantity returns the signed running quantity of a symbol after the run.
func (r *FIFOResult) Quantity(symbol string) Quantity {
	if b, ok := r.books[symbol]; ok {
		return b.quantity()
	}
	return Q(0)
}

// AvgCost returns the weighted-average cost of a symbol's remaining lots.
func (r *FIFOResult) AvgCost(symbol string) Money {
	if b, ok := r.books[symbol]; ok {
		return b.avgCost()
	}
	return Money{}
}

// openLots exposes the remaining lots of a symbol for mark-to-market.
func (r *FIFOResult) openLots(symbol string) (long, short lotQueue) {
	if b, ok := r.books[symbol]; ok {
		return b.long, b.short
	}
	return nil, nil
}

// Positions derives the per-symbol position view from the run. Last price is
// seeded with the average cost and flagged untrustworthy; callers holding
// live quotes overwrite it.
func (r *FIFOResult) Positions() []Position {
	var positions []Position
	for _, symbol := range r.order {
		b := r.books[symbol]
		qty := b.quantity()
		if qty.IsExhausted() {
			continue
		}
		positions = append(positions, Position{
			Symbol:   symbol,
			Quantity: qty,
			AvgCost:  b.avgCost(),
			Last:     b.avgCost(),
			PriceOK:  false,
		})
	}
	return positions
}

// ComputeFIFO pairs opening and closing trades per symbol and direction using
// FIFO lot matching. Initial positions seed one lot per symbol before the
// first trade. Trades are ordered chronologically (malformed dates last, in
// input order) and every trade yields exactly one EnrichedTrade. Lots opened
// by trades dated on eval are tagged "today".
//
// A closing trade larger than the opposing queue flips direction: the excess
// opens a lot on the other side, tagged per the trade's own date.
func ComputeFIFO(trades []Trade, initial []InitialPosition, eval Date) (*FIFOResult, error) {
	r, err := newRun(initial, eval)
	if err != nil {
		return nil, err
	}

	for _, t := range SortTrades(trades) {
		side, err := ParseSide(string(t.Side))
		if err != nil {
			return nil, fmt.Errorf("trade on %s %s: %w", t.Symbol, t.Date, err)
		}
		if !t.Quantity.IsPositive() {
			return nil, fmt.Errorf("trade on %s %s: quantity %s is not positive", t.Symbol, t.Date, t.Quantity)
		}
		// The engine dispatches on the canonical side, never the raw string.
		t.Side = side
		r.apply(t)
	}
	return r, nil
}

// newRun seeds a fresh run with one lot per non-zero initial position.
// Seed lots predate the trade log, so they are never tagged "today".
func newRun(initial []InitialPosition, eval Date) (*FIFOResult, error) {
	r := &FIFOResult{
		books: make(map[string]*book),
		eval:  eval,
	}
	for _, pos := range initial {
		if pos.Quantity.IsZero() {
			continue
		}
		if pos.Symbol == "" {
			return nil, fmt.Errorf("initial position without a symbol")
		}
		b := r.book(pos.Symbol)
		if pos.Quantity.IsPositive() {
			b.long.push(pos.Quantity, pos.AvgPrice, false)
		} else {
			b.short.push(pos.Quantity.Neg(), pos.AvgPrice, false)
		}
	}
	return r, nil
}

func (r *FIFOResult) book(symbol string) *book {
	b, ok := r.books[symbol]
	if !ok {
		b = &book{}
		r.books[symbol] = b
		r.order = append(r.order, symbol)
	}
	return b
}

// apply consumes one trade against the book and records the enriched trade.
func (r *FIFOResult) apply(t Trade) EnrichedTrade {
	b := r.book(t.Symbol)
	b.seq++

	day, valid := t.When()
	today := valid && day == r.eval

	var closing *lotQueue  // queue the trade consumes
	var opening *lotQueue  // queue the remainder opens into
	var pnl func(openPrice Money, matched Quantity) Money
	switch t.Side {
	case Buy, Cover:
		closing, opening = &b.short, &b.long
		pnl = func(openPrice Money, matched Quantity) Money {
			return openPrice.Sub(t.Price).Mul(matched).RoundCents()
		}
	case Sell, Short:
		closing, opening = &b.long, &b.short
		pnl = func(openPrice Money, matched Quantity) Money {
			return t.Price.Sub(openPrice).Mul(matched).RoundCents()
		}
	}

	realized := Money{}
	remainder := closing.consume(t.Quantity, func(l *lot, matched Quantity) {
		gain := pnl(l.Price, matched)
		realized = realized.Add(gain)
		r.Matches = append(r.Matches, Match{
			Symbol:     t.Symbol,
			Seq:        b.seq,
			Date:       t.Date,
			Side:       t.Side,
			Quantity:   matched,
			OpenPrice:  l.Price,
			ClosePrice: t.Price,
			PnL:        gain,
			OpenToday:  l.Today,
			CloseToday: today,
		})
	})
	if remainder.IsPositive() && !remainder.IsExhausted() {
		opening.push(remainder, t.Price, today)
	}

	b.realized = b.realized.Add(realized)
	e := EnrichedTrade{
		Trade:       t,
		Seq:         b.seq,
		Realized:    realized,
		PositionQty: b.quantity(),
		AvgCost:     b.avgCost(),
		BreakEven:   b.breakEven(),
		Amount:      t.Notional(),
	}
	r.Enriched = append(r.Enriched, e)
	return e
}
