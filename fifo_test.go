package tradepnl

import "testing"

func TestComputeFIFOLongRoundTrip(t *testing.T) {
	eval := MustParseDate("2025-03-06")
	trades := []Trade{
		{Date: "2025-03-06T09:30:00", Symbol: "AAPL", Side: Buy, Quantity: Q(100), Price: USD(10)},
		{Date: "2025-03-06T10:00:00", Symbol: "AAPL", Side: Sell, Quantity: Q(50), Price: USD(15)},
		{Date: "2025-03-06T11:00:00", Symbol: "AAPL", Side: Sell, Quantity: Q(50), Price: USD(8)},
	}

	run, err := ComputeFIFO(trades, nil, eval)
	if err != nil {
		t.Fatal(err)
	}

	wantRealized := []Money{USD(0), USD(250), USD(-100)}
	wantQty := []Quantity{Q(100), Q(50), Q(0)}
	for i, e := range run.Enriched {
		if !e.Realized.Equal(wantRealized[i]) {
			t.Errorf("trade %d realized = %s, want %s", i, e.Realized, wantRealized[i])
		}
		if !e.PositionQty.Equal(wantQty[i]) {
			t.Errorf("trade %d running quantity = %s, want %s", i, e.PositionQty, wantQty[i])
		}
	}

	if qty := run.Quantity("AAPL"); !qty.IsZero() && !qty.IsExhausted() {
		t.Errorf("AAPL should be flat after the round trip, got %s", qty)
	}
}

func TestComputeFIFOSeedBeforeLog(t *testing.T) {
	eval := MustParseDate("2025-03-06")
	initial := []InitialPosition{
		{Symbol: "NFLX", Quantity: Q(100), AvgPrice: USD(1100)},
	}
	trades := []Trade{
		{Date: "2025-03-06T09:31:00", Symbol: "NFLX", Side: Buy, Quantity: Q(20), Price: USD(1150)},
		{Date: "2025-03-06T10:02:00", Symbol: "NFLX", Side: Sell, Quantity: Q(120), Price: USD(1200)},
	}

	run, err := ComputeFIFO(trades, initial, eval)
	if err != nil {
		t.Fatal(err)
	}

	// The sell must consume the seed lot first, then the same-day buy.
	if len(run.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(run.Matches))
	}
	seed, today := run.Matches[0], run.Matches[1]
	if !seed.Quantity.Equal(Q(100)) || seed.OpenToday || !seed.PnL.Equal(USD(10000)) {
		t.Errorf("seed match = %+v, want qty 100 opened before today, pnl 10000", seed)
	}
	if !today.Quantity.Equal(Q(20)) || !today.OpenToday || !today.PnL.Equal(USD(1000)) {
		t.Errorf("intraday match = %+v, want qty 20 opened today, pnl 1000", today)
	}
	if !run.Quantity("NFLX").IsExhausted() {
		t.Errorf("NFLX should be flat, got %s", run.Quantity("NFLX"))
	}
}

func TestComputeFIFODirectionFlip(t *testing.T) {
	eval := MustParseDate("2025-03-06")
	trades := []Trade{
		{Date: "2025-03-06T09:30:00", Symbol: "TSLA", Side: Buy, Quantity: Q(30), Price: USD(200)},
		{Date: "2025-03-06T10:00:00", Symbol: "TSLA", Side: Sell, Quantity: Q(50), Price: USD(210)},
	}

	run, err := ComputeFIFO(trades, nil, eval)
	if err != nil {
		t.Fatal(err)
	}

	// 30 close against the long lot, the excess 20 opens a short lot.
	if len(run.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(run.Matches))
	}
	if m := run.Matches[0]; !m.Quantity.Equal(Q(30)) || !m.PnL.Equal(USD(300)) {
		t.Errorf("flip match = %+v, want qty 30 pnl 300", m)
	}
	if qty := run.Quantity("TSLA"); !qty.Equal(Q(-20)) {
		t.Errorf("TSLA quantity after flip = %s, want -20", qty)
	}
	if avg := run.AvgCost("TSLA"); !avg.Equal(USD(210)) {
		t.Errorf("TSLA avg cost after flip = %s, want 210", avg)
	}
}

func TestComputeFIFOShortSide(t *testing.T) {
	eval := MustParseDate("2025-03-06")
	trades := []Trade{
		{Date: "2025-03-06T09:30:00", Symbol: "GME", Side: Short, Quantity: Q(40), Price: USD(25)},
		{Date: "2025-03-06T10:00:00", Symbol: "GME", Side: Cover, Quantity: Q(40), Price: USD(20)},
	}

	run, err := ComputeFIFO(trades, nil, eval)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(run.Matches))
	}
	// Cover gain = open price minus cover price.
	if m := run.Matches[0]; !m.PnL.Equal(USD(200)) {
		t.Errorf("cover pnl = %s, want 200", m.PnL)
	}
}

func TestComputeFIFOFractionalQuantities(t *testing.T) {
	eval := MustParseDate("2025-03-06")
	trades := []Trade{
		{Date: "2025-03-06T09:30:00", Symbol: "BTC", Side: Buy, Quantity: Q(0.3), Price: USD(10000)},
		{Date: "2025-03-06T10:00:00", Symbol: "BTC", Side: Sell, Quantity: Q(0.3), Price: USD(10100)},
	}

	run, err := ComputeFIFO(trades, nil, eval)
	if err != nil {
		t.Fatal(err)
	}
	if m := run.Matches[0]; !m.PnL.Equal(USD(30)) {
		t.Errorf("fractional pnl = %s, want 30", m.PnL)
	}
	if !run.Quantity("BTC").IsExhausted() {
		t.Errorf("residual quantity %s should be within the lot epsilon", run.Quantity("BTC"))
	}
}

func TestComputeFIFORejectsBadTrades(t *testing.T) {
	eval := MustParseDate("2025-03-06")

	if _, err := ComputeFIFO([]Trade{
		{Date: "2025-03-06", Symbol: "A", Side: "HOLD", Quantity: Q(1), Price: USD(1)},
	}, nil, eval); err == nil {
		t.Error("unknown side must be rejected")
	}
	if _, err := ComputeFIFO([]Trade{
		{Date: "2025-03-06", Symbol: "A", Side: Buy, Quantity: Q(0), Price: USD(1)},
	}, nil, eval); err == nil {
		t.Error("non-positive quantity must be rejected")
	}
	if _, err := ComputeFIFO(nil, []InitialPosition{{Quantity: Q(5), AvgPrice: USD(1)}}, eval); err == nil {
		t.Error("initial position without a symbol must be rejected")
	}
}

func TestComputeFIFONormalizesSides(t *testing.T) {
	eval := MustParseDate("2025-03-06")
	trades := []Trade{
		{Date: "2025-03-06T09:30:00", Symbol: "AAPL", Side: "buy", Quantity: Q(100), Price: USD(10)},
		{Date: "2025-03-06T10:00:00", Symbol: "AAPL", Side: " sell ", Quantity: Q(100), Price: USD(12)},
	}

	run, err := ComputeFIFO(trades, nil, eval)
	if err != nil {
		t.Fatal(err)
	}

	if got := run.Enriched[1].Realized; !got.Equal(USD(200)) {
		t.Errorf("realized = %s, want 200", got)
	}
	wantSides := []Side{Buy, Sell}
	for i, e := range run.Enriched {
		if e.Side != wantSides[i] {
			t.Errorf("trade %d side = %q, want %q", i, e.Side, wantSides[i])
		}
	}
	if !run.Quantity("AAPL").IsExhausted() {
		t.Errorf("AAPL should be flat, got %s", run.Quantity("AAPL"))
	}
}

func TestBreakEven(t *testing.T) {
	eval := MustParseDate("2025-03-06")
	trades := []Trade{
		{Date: "2025-03-06T09:30:00", Symbol: "AAPL", Side: Buy, Quantity: Q(100), Price: USD(10)},
		{Date: "2025-03-06T10:00:00", Symbol: "AAPL", Side: Sell, Quantity: Q(50), Price: USD(15)},
	}

	run, err := ComputeFIFO(trades, nil, eval)
	if err != nil {
		t.Fatal(err)
	}
	// Remaining basis 500 minus realized 250, over 50 shares.
	last := run.Enriched[len(run.Enriched)-1]
	if !last.BreakEven.Equal(USD(5)) {
		t.Errorf("break-even = %s, want 5", last.BreakEven)
	}
}
