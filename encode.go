package tradepnl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeTrades decodes a trade log from a stream of JSONL data. The side is
// validated here, at the boundary: an unknown action is an error. A malformed
// or missing date is not: the trade is kept, a warning is logged, and the
// chronological normalizer will sort it last.
func DecodeTrades(r io.Reader) ([]Trade, error) {
	var trades []Trade
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue // Skip empty lines
		}
		var row struct {
			Date   string          `json:"date"`
			Symbol string          `json:"symbol"`
			Side   string          `json:"side"`
			Qty    decimal.Decimal `json:"qty"`
			Price  decimal.Decimal `json:"price"`
		}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("trade line %d: %w", line, err)
		}
		side, err := ParseSide(row.Side)
		if err != nil {
			return nil, fmt.Errorf("trade line %d: %w", line, err)
		}
		if row.Symbol == "" {
			return nil, fmt.Errorf("trade line %d: missing symbol", line)
		}
		if _, ok := NormalizeTime(row.Date); !ok {
			logrus.WithFields(logrus.Fields{
				"line":   line,
				"symbol": row.Symbol,
				"date":   row.Date,
			}).Warn("trade has a malformed or missing date, it will sort last")
		}
		trades = append(trades, Trade{
			Date:     row.Date,
			Symbol:   row.Symbol,
			Side:     side,
			Quantity: Q(row.Qty),
			Price:    USD(row.Price),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trades: %w", err)
	}
	return trades, nil
}

// DecodeInitialPositions decodes the pre-existing book, one JSONL row per
// symbol.
func DecodeInitialPositions(r io.Reader) ([]InitialPosition, error) {
	var positions []InitialPosition
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var row struct {
			Symbol   string          `json:"symbol"`
			Qty      decimal.Decimal `json:"qty"`
			AvgPrice decimal.Decimal `json:"avgPrice"`
		}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("initial position line %d: %w", line, err)
		}
		if row.Symbol == "" {
			return nil, fmt.Errorf("initial position line %d: missing symbol", line)
		}
		positions = append(positions, InitialPosition{
			Symbol:   row.Symbol,
			Quantity: Q(row.Qty),
			AvgPrice: USD(row.AvgPrice),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading initial positions: %w", err)
	}
	return positions, nil
}

// DecodeClosePrices decodes the close-price map, a single JSON object of the
// shape { symbol: { "YYYY-MM-DD": price } }.
func DecodeClosePrices(r io.Reader) (ClosePrices, error) {
	var raw map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("reading close prices: %w", err)
	}
	prices := make(ClosePrices, len(raw))
	for symbol, days := range raw {
		for day, price := range days {
			on, err := ParseDate(day)
			if err != nil {
				return nil, fmt.Errorf("close price %s: %w", symbol, err)
			}
			prices.Set(symbol, on, USD(price))
		}
	}
	return prices, nil
}

// DecodeDailyResults decodes a previously persisted daily ledger, one JSONL
// row per day. Rows are validated on decode: a row whose stored total does
// not reconcile is rejected here rather than poisoning a later replay.
func DecodeDailyResults(r io.Reader) ([]DailyResult, error) {
	var daily []DailyResult
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var row DailyResult
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("daily result line %d: %w", line, err)
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("daily result line %d: %w", line, err)
		}
		daily = append(daily, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading daily results: %w", err)
	}
	return daily, nil
}

// EncodeDailyResults writes the daily ledger as JSONL, one row per day, with
// exactly the persisted keys.
func EncodeDailyResults(w io.Writer, daily []DailyResult) error {
	enc := json.NewEncoder(w)
	for _, d := range daily {
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("writing daily result %s: %w", d.Date, err)
		}
	}
	return nil
}
