package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of minor units per major unit (wei per ether).
const EtherDecimals = 18

// Amount errors
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// maxAmount is the largest representable amount: 2^256 - 1 minor units.
var maxAmount = decimal.NewFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
	0,
)

// Amount is a whole number of monetary minor units.
// The zero value is a valid zero amount.
type Amount struct {
	value decimal.Decimal
}

// NewAmount creates an amount from an integer number of minor units.
func NewAmount(units int64) Amount {
	return Amount{value: decimal.NewFromInt(units)}
}

// MaxAmount returns the largest amount the ledger can represent.
func MaxAmount() Amount {
	return Amount{value: maxAmount}
}

// ParseAmount parses a base-10 string of minor units.
// Fractional or negative values are rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: %q is not a whole number of minor units", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}

	return Amount{value: d}, nil
}

// Ether converts a major-unit string such as "0.1" into minor units.
// Precision finer than one minor unit is rejected.
func Ether(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	units := d.Shift(EtherDecimals)
	if !units.Equal(units.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, EtherDecimals)
	}
	if units.IsNegative() {
		return Amount{}, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	return Amount{value: units}, nil
}

func (a Amount) IsZero() bool     { return a.value.IsZero() }
func (a Amount) IsPositive() bool { return a.value.IsPositive() }

func (a Amount) Cmp(b Amount) int                { return a.value.Cmp(b.value) }
func (a Amount) Equal(b Amount) bool             { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool          { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool       { return a.value.GreaterThan(b.value) }
func (a Amount) GreaterThanOrEqual(b Amount) bool { return a.value.GreaterThanOrEqual(b.value) }

func (a Amount) Add(b Amount) Amount { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount { return Amount{value: a.value.Sub(b.value)} }

// MulInt multiplies the amount by an integer factor.
func (a Amount) MulInt(n int64) Amount {
	return Amount{value: a.value.Mul(decimal.NewFromInt(n))}
}

// QuoInt divides by a positive integer, rounding toward zero.
func (a Amount) QuoInt(n int64) Amount {
	q, _ := a.value.QuoRem(decimal.NewFromInt(n), 0)
	return Amount{value: q}
}

// Units returns floor(a / unit) as a decimal count.
// unit must be positive.
func (a Amount) Units(unit Amount) decimal.Decimal {
	q, _ := a.value.QuoRem(unit.value, 0)
	return q
}

// Overflows reports whether the amount lies outside [0, 2^256-1].
func (a Amount) Overflows() bool {
	return a.value.IsNegative() || a.value.GreaterThan(maxAmount)
}

// String returns the amount in minor units.
func (a Amount) String() string { return a.value.String() }

// EtherString returns the amount in major units, e.g. "0.975".
func (a Amount) EtherString() string {
	return a.value.Shift(-EtherDecimals).String()
}

// MarshalJSON encodes the amount as a string to keep full precision in
// JSON consumers that parse numbers as float64.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value.String())
}

// UnmarshalJSON accepts a quoted or bare integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*a = Amount{}
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
