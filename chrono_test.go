package tradepnl

import (
	"testing"
)

func TestNormalizeTime(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		wantOK  bool
		wantDay string // New York calendar day
	}{
		{
			name:    "RFC3339 with offset",
			raw:     "2025-03-06T14:30:00-05:00",
			wantOK:  true,
			wantDay: "2025-03-06",
		},
		{
			name:    "UTC midnight lands on previous NY day",
			raw:     "2025-03-07T00:00:00Z",
			wantOK:  true,
			wantDay: "2025-03-06",
		},
		{
			name:    "naive datetime is NY wall clock",
			raw:     "2025-03-06 15:45:12",
			wantOK:  true,
			wantDay: "2025-03-06",
		},
		{
			name:    "date only",
			raw:     "2025-03-06",
			wantOK:  true,
			wantDay: "2025-03-06",
		},
		{
			name:    "lenient single-digit date",
			raw:     "2025-3-6",
			wantOK:  true,
			wantDay: "2025-03-06",
		},
		{
			name:   "empty",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "garbage",
			raw:    "not-a-date",
			wantOK: false,
		},
		{
			name:   "month out of range",
			raw:    "2025-13-40",
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			instant, ok := NormalizeTime(tc.raw)
			if ok != tc.wantOK {
				t.Fatalf("NormalizeTime(%q) ok = %v, want %v", tc.raw, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if got := DayOf(instant).String(); got != tc.wantDay {
				t.Errorf("DayOf(NormalizeTime(%q)) = %s, want %s", tc.raw, got, tc.wantDay)
			}
		})
	}
}

func TestSortTrades(t *testing.T) {
	trades := []Trade{
		{Date: "", Symbol: "E", Side: Buy, Quantity: Q(1), Price: USD(1)},
		{Date: "2025-01-03", Symbol: "C", Side: Buy, Quantity: Q(1), Price: USD(1)},
		{Date: "bogus", Symbol: "F", Side: Buy, Quantity: Q(1), Price: USD(1)},
		{Date: "2025-01-01", Symbol: "A", Side: Buy, Quantity: Q(1), Price: USD(1)},
		{Date: "2025-01-01", Symbol: "B", Side: Buy, Quantity: Q(1), Price: USD(1)},
		{Date: "2025-01-02", Symbol: "D", Side: Buy, Quantity: Q(1), Price: USD(1)},
	}

	sorted := SortTrades(trades)

	want := []string{"A", "B", "D", "C", "E", "F"}
	for i, symbol := range want {
		if sorted[i].Symbol != symbol {
			t.Fatalf("sorted[%d] = %s, want %s (full order %v)", i, sorted[i].Symbol, symbol, symbols(sorted))
		}
	}

	// The input slice must be untouched.
	if trades[0].Symbol != "E" {
		t.Errorf("SortTrades mutated its input, trades[0] = %s", trades[0].Symbol)
	}
}

func symbols(trades []Trade) []string {
	out := make([]string, len(trades))
	for i, t := range trades {
		out[i] = t.Symbol
	}
	return out
}
