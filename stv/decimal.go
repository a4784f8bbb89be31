package stv

import "github.com/shopspring/decimal"

// precision is the number of decimal places a FixedDecimal always carries.
const precision int32 = 5

// FixedDecimal is a non-negative rational with exactly 5 decimal
// places of precision. Every arithmetic operation quantizes its
// result back to that precision, so the invariant holds for the
// lifetime of the value, not just at construction.
//
// Binary floats are never used for ballot weights or tallies; this type
// wraps shopspring/decimal, the library the teacher's own STV method
// (vote/stv_scottish.go) uses for the same purpose.
type FixedDecimal struct {
	d decimal.Decimal
}

// Zero is the FixedDecimal 0.00000.
var Zero = FixedDecimal{d: decimal.NewFromInt(0)}

// One is the FixedDecimal 1.00000.
var One = FixedDecimal{d: decimal.NewFromInt(1)}

// NewFixedFromInt builds a FixedDecimal from an integer count.
func NewFixedFromInt(n int64) FixedDecimal {
	return FixedDecimal{d: decimal.NewFromInt(n).Round(precision)}
}

func (f FixedDecimal) Add(o FixedDecimal) FixedDecimal {
	return FixedDecimal{d: f.d.Add(o.d).Round(precision)}
}

func (f FixedDecimal) Sub(o FixedDecimal) FixedDecimal {
	return FixedDecimal{d: f.d.Sub(o.d).Round(precision)}
}

func (f FixedDecimal) Mul(o FixedDecimal) FixedDecimal {
	return FixedDecimal{d: f.d.Mul(o.d).Round(precision)}
}

// Div performs division and quantizes the quotient to 5 digits. The
// caller must not divide by Zero; the core only ever divides by a
// tally's total, which is guaranteed positive at the call site.
func (f FixedDecimal) Div(o FixedDecimal) FixedDecimal {
	return FixedDecimal{d: f.d.DivRound(o.d, precision)}
}

// Cmp returns -1, 0 or 1 as f is less than, equal to, or greater than o.
func (f FixedDecimal) Cmp(o FixedDecimal) int {
	return f.d.Cmp(o.d)
}

// Equal reports exact FixedDecimal equality, the decision STV tie
// detection relies on.
func (f FixedDecimal) Equal(o FixedDecimal) bool {
	return f.d.Equal(o.d)
}

func (f FixedDecimal) GreaterThanOrEqual(o FixedDecimal) bool {
	return f.d.Cmp(o.d) >= 0
}

func (f FixedDecimal) GreaterThan(o FixedDecimal) bool {
	return f.d.Cmp(o.d) > 0
}

func (f FixedDecimal) IsZero() bool {
	return f.d.IsZero()
}

// String formats the value as a fixed 5-decimal string, the wire shape
// RoundSummary uses so downstream JSON transport does not lose
// precision to a numeric type.
func (f FixedDecimal) String() string {
	return f.d.StringFixed(precision)
}

// MarshalJSON renders the value as a JSON string, never a JSON number,
// per the RoundSummary wire contract in spec §6.
func (f FixedDecimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}
