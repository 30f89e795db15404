package tradepnl

import (
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // America/New_York must resolve even on scratch hosts
)

func loadNewYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("cannot load America/New_York: " + err.Error())
	}
	return loc
}

// newYork is the trading calendar's timezone. All day bucketing happens here,
// regardless of server locale.
var newYork = loadNewYork()

// datetime layouts accepted on a trade, tried in order. Layouts without an
// explicit offset are interpreted as New York wall-clock time.
var tradeTimeLayouts = []struct {
	layout string
	zoned  bool // layout carries its own offset
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-1-2 15:04:05", false},
	{"2006-01-02", false},
	{"2006-1-2", false},
}

// NormalizeTime converts a heterogeneous trade date/time string into a New
// York instant. Malformed or missing input returns ok=false, never an error:
// such trades sort last and are excluded from "today" bucketing.
func NormalizeTime(raw string) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range tradeTimeLayouts {
		var err error
		if l.zoned {
			t, err = time.Parse(l.layout, raw)
			if err == nil {
				return t.In(newYork), true
			}
		} else {
			t, err = time.ParseInLocation(l.layout, raw, newYork)
			if err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// DayOf returns the New York calendar day containing the instant. A trade
// stamped at UTC midnight still lands on the preceding New York day.
func DayOf(t time.Time) Date {
	return NewDate(t.In(newYork).Date())
}

// TradeDay resolves the New York calendar day of a raw trade date string.
// Malformed input returns ok=false.
func TradeDay(raw string) (Date, bool) {
	t, ok := NormalizeTime(raw)
	if !ok {
		return Date{}, false
	}
	return DayOf(t), true
}

// SortTrades orders trades chronologically: valid instants ascending,
// invalid or missing timestamps collectively last, ties and invalids keeping
// their original input order. It never fails; it returns a new slice and
// leaves the input untouched.
func SortTrades(trades []Trade) []Trade {
	type keyed struct {
		trade Trade
		when  time.Time
		valid bool
	}
	keys := make([]keyed, len(trades))
	for i, t := range trades {
		when, valid := NormalizeTime(t.Date)
		keys[i] = keyed{trade: t, when: when, valid: valid}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.valid != b.valid {
			return a.valid // valid instants before invalid ones
		}
		if !a.valid {
			return false // both invalid: keep input order
		}
		return a.when.Before(b.when)
	})
	sorted := make([]Trade, len(keys))
	for i, k := range keys {
		sorted[i] = k.trade
	}
	return sorted
}
