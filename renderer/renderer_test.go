package renderer

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tradepnl/tradepnl"
)

// headings parses the markdown and returns the text of every heading, so the
// tests assert the document structure rather than exact byte layout.
func headings(t *testing.T, source string) []string {
	t.Helper()
	content := []byte(source)
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var out []string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			var sb strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if txt, ok := c.(*ast.Text); ok {
					sb.Write(txt.Segment.Value(content))
				}
			}
			out = append(out, sb.String())
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walking markdown: %v", err)
	}
	return out
}

func sampleBundle() *tradepnl.MetricsBundle {
	return &tradepnl.MetricsBundle{
		Date:               tradepnl.MustParseDate("2025-03-06"),
		CostBasis:          tradepnl.USD(19150),
		MarketValue:        tradepnl.USD(18000),
		Floating:           tradepnl.USD(-1150),
		HistoricalRealized: tradepnl.USD(-1350),
		TodayTotal:         tradepnl.USD(-2500),
		Losses:             2,
	}
}

func TestMetricsMarkdown(t *testing.T) {
	got := MetricsMarkdown(sampleBundle())

	want := []string{
		"P&L Metrics for 2025-03-06",
		"Today",
		"Portfolio",
		"Activity",
		"Period to Date",
	}
	hs := headings(t, got)
	if len(hs) != len(want) {
		t.Fatalf("got headings %v, want %v", hs, want)
	}
	for i := range want {
		if hs[i] != want[i] {
			t.Errorf("heading %d = %q, want %q", i, hs[i], want[i])
		}
	}
	for _, cell := range []string{"Historical Realized", "Floating", "Cost Basis", "win rate"} {
		if !strings.Contains(got, cell) {
			t.Errorf("output misses %q:\n%s", cell, got)
		}
	}
}

func TestDailyMarkdown(t *testing.T) {
	daily := []tradepnl.DailyResult{
		{Date: tradepnl.MustParseDate("2025-03-01"), Realized: tradepnl.USD(0), Unrealized: tradepnl.USD(200)},
		{Date: tradepnl.MustParseDate("2025-03-02"), Realized: tradepnl.USD(250), Unrealized: tradepnl.USD(250), Delta: tradepnl.USD(50), HasDelta: true},
	}

	got := DailyMarkdown(daily)
	if hs := headings(t, got); len(hs) != 1 || hs[0] != "Daily P&L" {
		t.Errorf("headings = %v", hs)
	}
	for _, cell := range []string{"2025-03-01", "2025-03-02", "+$250.00", "Total"} {
		if !strings.Contains(got, cell) {
			t.Errorf("output misses %q:\n%s", cell, got)
		}
	}

	if got := DailyMarkdown(nil); !strings.Contains(got, "No results") {
		t.Errorf("empty ledger output:\n%s", got)
	}
}

func TestAuditMarkdown(t *testing.T) {
	rows := []tradepnl.AuditRow{
		{
			Symbol:     "NFLX",
			Time:       "2025-03-06T10:02:00",
			Action:     tradepnl.Sell,
			Bucket:     tradepnl.BucketHistorical,
			Quantity:   tradepnl.Q(100),
			OpenPrice:  tradepnl.USD(1100),
			ClosePrice: tradepnl.USD(1200),
			PnL:        tradepnl.USD(10000),
		},
	}
	eval := tradepnl.MustParseDate("2025-03-06")

	got := AuditMarkdown(eval, rows)
	for _, cell := range []string{"NFLX", "historical", "+$10,000.00", "Total"} {
		if !strings.Contains(got, cell) {
			t.Errorf("output misses %q:\n%s", cell, got)
		}
	}

	if got := AuditMarkdown(eval, nil); !strings.Contains(got, "Nothing was closed") {
		t.Errorf("empty breakdown output:\n%s", got)
	}
}
