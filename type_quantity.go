package tradepnl

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// lotEpsilon is the threshold under which a remaining lot quantity is
// considered fully consumed.
var lotEpsilon = decimal.New(1, -6) // 1e-6

// Quantity is a number of shares or units. It is signed where a position is
// represented (long positive, short negative) and always positive on a trade.
type Quantity struct {
	value decimal.Decimal
}

func Q[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

func (q Quantity) Equal(p Quantity) bool          { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool       { return q.value.LessThan(p.value) }
func (q Quantity) Min(p Quantity) Quantity        { return Quantity{value: decimal.Min(q.value, p.value)} }
func (q Quantity) Div(p Quantity) Quantity        { return Quantity{value: q.value.Div(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity        { return Quantity{value: q.value.Mul(p.value)} }
func (q Quantity) Add(p Quantity) Quantity        { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity        { return Quantity{value: q.value.Sub(p.value)} }
func (q Quantity) GreaterThan(p Quantity) bool    { return q.value.GreaterThan(p.value) }
func (q Quantity) IsNegative() bool               { return q.value.IsNegative() }
func (q Quantity) IsPositive() bool               { return q.value.IsPositive() }
func (q Quantity) IsZero() bool                   { return q.value.IsZero() }
func (q Quantity) Neg() Quantity                  { return Quantity{value: q.value.Neg()} }
func (q Quantity) Abs() Quantity                  { return Quantity{value: q.value.Abs()} }
func (q Quantity) String() string                 { return q.value.String() }

// IsExhausted reports whether the quantity is zero within the lot epsilon.
func (q Quantity) IsExhausted() bool { return q.value.Abs().LessThan(lotEpsilon) }

func (q Quantity) MarshalJSON() ([]byte, error) {
	return q.value.MarshalJSON()
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	return q.value.UnmarshalJSON(data)
}
