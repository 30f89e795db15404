package tradepnl

// Bucket tags which realized-P&L bucket a matched close fell into.
type Bucket string

const (
	// BucketHistorical marks a close against a lot opened before the
	// evaluation date.
	BucketHistorical Bucket = "historical"
	// BucketIntraday marks a close against a lot opened on the evaluation
	// date itself.
	BucketIntraday Bucket = "intraday"
)

// AuditRow is one matched lot-closing event of the evaluation day, exposed
// so an analyst can trace every dollar of today's realized P&L to a specific
// lot.
type AuditRow struct {
	Symbol     string
	Time       string // raw timestamp of the closing trade
	Action     Side
	Bucket     Bucket
	Quantity   Quantity
	OpenPrice  Money
	ClosePrice Money
	PnL        Money
}

// AuditBreakdown lists every match closed on the evaluation date, in the
// order the engine produced them.
func AuditBreakdown(run *FIFOResult) []AuditRow {
	var rows []AuditRow
	for _, m := range run.Matches {
		if !m.CloseToday {
			continue
		}
		bucket := BucketHistorical
		if m.OpenToday {
			bucket = BucketIntraday
		}
		rows = append(rows, AuditRow{
			Symbol:     m.Symbol,
			Time:       m.Date,
			Action:     m.Side,
			Bucket:     bucket,
			Quantity:   m.Quantity,
			OpenPrice:  m.OpenPrice,
			ClosePrice: m.ClosePrice,
			PnL:        m.PnL,
		})
	}
	return rows
}

// MarshalJSON emits the audit row with a stable field order.
func (r AuditRow) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", r.Symbol)
	w.Append("time", r.Time)
	w.Append("action", r.Action)
	w.Append("into", r.Bucket)
	w.Append("qty", r.Quantity)
	w.Append("openPrice", r.OpenPrice)
	w.Append("closePrice", r.ClosePrice)
	w.Append("pnl", r.PnL)
	return w.MarshalJSON()
}
