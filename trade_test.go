package tradepnl

import "testing"

func TestParseSide(t *testing.T) {
	testCases := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{in: "BUY", want: Buy},
		{in: "sell", want: Sell},
		{in: " Short ", want: Short},
		{in: "COVER", want: Cover},
		{in: "HOLD", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseSide(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseSide(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseSide(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSignedDelta(t *testing.T) {
	q := Q(10)
	if !Buy.SignedDelta(q).Equal(Q(10)) || !Cover.SignedDelta(q).Equal(Q(10)) {
		t.Error("BUY and COVER must add quantity")
	}
	if !Sell.SignedDelta(q).Equal(Q(-10)) || !Short.SignedDelta(q).Equal(Q(-10)) {
		t.Error("SELL and SHORT must subtract quantity")
	}
}

func TestPositionViews(t *testing.T) {
	long := Position{Symbol: "AAPL", Quantity: Q(100), AvgCost: USD(191.5), Last: USD(180)}
	if !long.CostBasis().Equal(USD(19150)) {
		t.Errorf("cost basis = %s, want 19150", long.CostBasis())
	}
	if !long.MarketValue().Equal(USD(18000)) {
		t.Errorf("market value = %s, want 18000", long.MarketValue())
	}
	if !long.Floating().Equal(USD(-1150)) {
		t.Errorf("floating = %s, want -1150", long.Floating())
	}

	short := Position{Symbol: "GME", Quantity: Q(-40), AvgCost: USD(25), Last: USD(20)}
	if !short.CostBasis().Equal(USD(1000)) {
		t.Errorf("short cost basis = %s, want 1000", short.CostBasis())
	}
	if !short.MarketValue().Equal(USD(800)) {
		t.Errorf("short market value = %s, want 800", short.MarketValue())
	}
	// A short gains when the price falls.
	if !short.Floating().Equal(USD(200)) {
		t.Errorf("short floating = %s, want 200", short.Floating())
	}
}
