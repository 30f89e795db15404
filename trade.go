package tradepnl

import (
	"fmt"
	"strings"
)

// Side is the closed set of trade actions. Unknown values are rejected at the
// input boundary by ParseSide; the engine never compares raw strings.
type Side string

const (
	Buy   Side = "BUY"
	Sell  Side = "SELL"
	Short Side = "SHORT"
	Cover Side = "COVER"
)

// ParseSide validates a raw action string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	case Short:
		return Short, nil
	case Cover:
		return Cover, nil
	default:
		return "", fmt.Errorf("unknown trade side %q, want BUY, SELL, SHORT or COVER", s)
	}
}

// SignedDelta returns the position quantity change this side contributes:
// buy +q, sell -q, short -q, cover +q.
func (s Side) SignedDelta(q Quantity) Quantity {
	switch s {
	case Buy, Cover:
		return q
	case Sell, Short:
		return q.Neg()
	default:
		panic(fmt.Sprintf("unknown side %q", s))
	}
}

// Closing reports whether the side closes exposure (SELL closes longs,
// COVER closes shorts).
func (s Side) Closing() bool { return s == Sell || s == Cover }

// Trade is a single raw entry of the trade log. It is immutable input; the
// Date string is kept as supplied and only interpreted by the chronological
// normalizer.
type Trade struct {
	Date     string   `json:"date"`
	Symbol   string   `json:"symbol"`
	Side     Side     `json:"side"`
	Quantity Quantity `json:"qty"`
	Price    Money    `json:"price"`
}

// When returns the normalized New York instant of the trade, ok=false when
// the date is malformed or missing.
func (t Trade) When() (Date, bool) { return TradeDay(t.Date) }

// Notional returns quantity times price at cent precision.
func (t Trade) Notional() Money {
	return t.Price.Mul(t.Quantity).RoundCents()
}

// InitialPosition is the state of the book for one symbol before the trade
// log begins: positive quantity for a long, negative for a short.
type InitialPosition struct {
	Symbol   string   `json:"symbol"`
	Quantity Quantity `json:"qty"`
	AvgPrice Money    `json:"avgPrice"`
}

// EnrichedTrade is a Trade plus everything the FIFO engine derived from it.
// Created once per trade, never mutated afterward.
type EnrichedTrade struct {
	Trade
	Seq         int      // sequence number within the trade's symbol
	Realized    Money    // realized P&L produced by this trade
	PositionQty Quantity // resulting position, signed (negative = net short)
	AvgCost     Money    // resulting weighted-average cost of remaining lots
	BreakEven   Money    // cost basis net of cumulative realized P&L, per share
	Amount      Money    // notional amount of the trade
}

// Position is a derived per-symbol view, recomputed whenever trades change.
type Position struct {
	Symbol   string   `json:"symbol"`
	Quantity Quantity `json:"qty"` // signed: long positive, short negative
	AvgCost  Money    `json:"avgCost"`
	Last     Money    `json:"last"`
	PriceOK  bool     `json:"priceOk"` // false when Last is stale or unknown
}

// MarketValue returns |last price x quantity| at cent precision.
func (p Position) MarketValue() Money {
	return p.Last.Mul(p.Quantity).Abs().RoundCents()
}

// CostBasis returns |average cost x quantity| at cent precision.
func (p Position) CostBasis() Money {
	return p.AvgCost.Mul(p.Quantity).Abs().RoundCents()
}

// Floating returns the mark-to-market gain on the open quantity:
// (last-avg)*qty for longs, (avg-last)*qty for shorts. With a signed
// quantity both collapse to (last-avg)*qty.
func (p Position) Floating() Money {
	return p.Last.Sub(p.AvgCost).Mul(p.Quantity).RoundCents()
}
