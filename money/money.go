package money

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a non-negative currency amount. Arithmetic keeps full precision;
// Round is applied once, when a value is stored or displayed.
type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

// New builds an amount from whole units and cents: New(45, 50) == 45.50.
func New(units int64, cents int64) Money {
	return Money{d: decimal.New(units*100+cents, -2)}
}

func FromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d: d}, nil
}

func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

func (m Money) Mul(qty int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// Percent returns m * p / 100.
func (m Money) Percent(p decimal.Decimal) Money {
	return Money{d: m.d.Mul(p).Div(decimal.NewFromInt(100))}
}

// Round rounds half away from zero to cents.
func (m Money) Round() Money { return Money{d: m.d.Round(2)} }

func (m Money) Cmp(o Money) int       { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool    { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool { return m.d.LessThan(o.d) }
func (m Money) IsZero() bool          { return m.d.IsZero() }
func (m Money) IsPositive() bool      { return m.d.IsPositive() }
func (m Money) IsNegative() bool      { return m.d.IsNegative() }

func Min(a, b Money) Money {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func Max(a, b Money) Money {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// String formats with exactly two decimals.
func (m Money) String() string { return m.d.StringFixed(2) }

// MarshalJSON writes a bare JSON number with two decimals, e.g. 45.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts both numbers and quoted strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Zero
		return nil
	}
	b = bytes.Trim(b, `"`)
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	m.d = d
	return nil
}
