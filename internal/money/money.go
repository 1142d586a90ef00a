// Package money represents rupee amounts as integer paise so that ledger
// arithmetic never accumulates floating point drift.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in paise.
type Money int64

const (
	Zero Money = 0

	// PaisePerRupee is the number of minor units in one rupee.
	PaisePerRupee = 100
)

// DefaultMax is ₹100 crore; anything larger is almost certainly a typo.
const DefaultMax Money = 100_00_00_000 * PaisePerRupee

// ErrInvalidAmount is returned for non-numeric, negative, over-precise or too large input.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(PaisePerRupee)

const (
	// maxInputLen bounds string input before it reaches the decimal parser.
	maxInputLen = 32
	// maxExponent bounds the decimal exponent so rescaling stays small.
	maxExponent = 18
)

// Parser parses user input into Money, rejecting anything above Max.
type Parser struct {
	Max Money
}

// DefaultParser uses DefaultMax.
var DefaultParser = Parser{Max: DefaultMax}

// Parse parses input with DefaultParser.
func Parse(input interface{}) (Money, error) {
	return DefaultParser.Parse(input)
}

// Rupees builds an amount from whole rupees.
func Rupees(r int64) Money {
	return Money(r * PaisePerRupee)
}

// Parse accepts a string or a number expressed in rupees.
func (p Parser) Parse(input interface{}) (Money, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := input.(type) {
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if s == "" {
			return Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
		}
		if len(s) > maxInputLen {
			return Zero, fmt.Errorf("%w: too long", ErrInvalidAmount)
		}
		d, err = decimal.NewFromString(s)
	case json.Number:
		if len(v) > maxInputLen {
			return Zero, fmt.Errorf("%w: too long", ErrInvalidAmount)
		}
		d, err = decimal.NewFromString(v.String())
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Zero, fmt.Errorf("%w: not a finite number", ErrInvalidAmount)
		}
		d = decimal.NewFromFloat(v)
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Zero, fmt.Errorf("%w: not a finite number", ErrInvalidAmount)
		}
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case Money:
		d = v.Decimal()
	default:
		return Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, input)
	}
	if err != nil {
		return Zero, fmt.Errorf("%w: not a number", ErrInvalidAmount)
	}
	return p.fromDecimal(d)
}

func (p Parser) fromDecimal(d decimal.Decimal) (Money, error) {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return Zero, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	if d.IsNegative() {
		return Zero, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	paise := d.Mul(hundred)
	if !paise.Equal(paise.Truncate(0)) {
		return Zero, fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	max := p.Max
	if max <= 0 {
		max = DefaultMax
	}
	if paise.GreaterThan(decimal.NewFromInt(int64(max))) {
		return Zero, fmt.Errorf("%w: exceeds the maximum of %s", ErrInvalidAmount, max.Decimal().String())
	}
	return Money(paise.IntPart()), nil
}

// Add returns a + b.
func Add(a, b Money) Money {
	return a + b
}

// Subtract returns a - b clamped at zero. clamped reports whether b exceeded a.
func Subtract(a, b Money) (result Money, clamped bool) {
	if b > a {
		return Zero, true
	}
	return a - b, false
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// Paise returns the raw minor-unit value.
func (m Money) Paise() int64 {
	return int64(m)
}

// Decimal returns the amount in rupees.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m == 0
}

// String renders the plain rupee value, e.g. "1500.5".
func (m Money) String() string {
	return m.Decimal().String()
}

// MarshalJSON encodes the amount as a rupee number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a rupee number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*m = Zero
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, err := Parser{Max: DefaultMax}.Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as BIGINT paise.
func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

// Scan reads BIGINT paise.
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*m = Money(v)
	case nil:
		*m = Zero
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("money: cannot scan %q: %w", v, err)
		}
		*m = Money(d.IntPart())
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}
