// Package core provides money parsing and handling utilities.
//
// Amounts are fixed-point decimals with two fractional digits. They are
// persisted as integer cents and aggregated with shopspring/decimal so that
// repeated sums never drift by a cent.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxCents bounds the magnitude of parsed amounts so that cents always fit in
// an int64 column and report sums stay far from overflow.
const MaxCents int64 = 1_000_000_000_000_000

var maxAmount = decimal.New(MaxCents, -2)

// Money is a currency-agnostic amount rounded to cents.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// MoneyFromCents builds an amount from integer minor units.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// MoneyFromDecimal rounds d half away from zero to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// ParseMoney converts a decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// to cents. Unlike amounts typed into forms, zero is accepted: budgets may be
// zero and the ledger only forbids negatives.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,345") -> 12.35
//	ParseMoney("abc")    -> validation error
//	ParseMoney("1e20")   -> validation error (above MaxCents)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, Validationf("amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, Validationf("invalid amount %q", s)
	}
	m := MoneyFromDecimal(d)
	if m.d.Abs().GreaterThan(maxAmount) {
		return Zero, Validationf("amount %s exceeds the maximum of %s", s, maxAmount.StringFixed(2))
	}
	return m, nil
}

// Cents returns the amount in integer minor units.
func (m Money) Cents() int64 {
	return m.d.Mul(hundred).Round(0).IntPart()
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// Float returns the amount as a float64 for display purposes only.
// Use Add/Sub for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return m.d.InexactFloat64()
}

// BRL formats the amount the way reports display it, e.g. "R$ 1234.50".
func (m Money) BRL() string {
	if m.IsNegative() {
		return "-R$ " + m.d.Neg().StringFixed(2)
	}
	return "R$ " + m.String()
}

// MarshalJSON emits the amount as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
