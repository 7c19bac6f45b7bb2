// Package money provides an exact monetary amount in minor currency units.
//
// Amounts never pass through binary floating point: they are parsed from
// and formatted to decimal strings with two fractional digits.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits of the currency.
const Scale = 2

// ErrInvalid is returned for negative, malformed or over-precise amounts.
var ErrInvalid = errors.New("invalid amount")

// Amount is a signed number of minor units (e.g. kopecks).
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromMinor builds an Amount from a count of minor units.
func FromMinor(units int64) Amount {
	return Amount(units)
}

// Parse reads a non-negative decimal string such as "12.5" or "300".
// More than two fractional digits are rejected rather than rounded.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal value, rejecting negatives and values with
// sub-minor-unit precision.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalid, d.String())
	}
	minor := d.Shift(Scale)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalid, d.String(), Scale)
	}
	if minor.GreaterThan(decimal.NewFromInt(1 << 62)) {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalid, d.String())
	}
	return Amount(minor.IntPart()), nil
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 {
	return int64(a)
}

// Decimal returns the amount as a decimal in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String formats the amount with exactly two fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a bare JSON number. Numbers are
// read as decimal text, not float64. Negative values are allowed here so
// that net balances round-trip; callers validating prices use Validate.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	neg := d.IsNegative()
	v, err := FromDecimal(d.Abs())
	if err != nil {
		return err
	}
	if neg {
		v = -v
	}
	*a = v
	return nil
}

// Validate reports whether the amount may be used as a price.
func (a Amount) Validate() error {
	if a < 0 {
		return fmt.Errorf("%w: %s is negative", ErrInvalid, a.String())
	}
	return nil
}
