package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places a quantity is kept at.
const QuantityScale = 3

// ErrInvalidQuantity is returned when a quantity is not a positive number.
var ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive number")

// Quantity is a value object representing a purchase amount.
// It is immutable - all operations return new Quantity instances.
type Quantity struct {
	value decimal.Decimal
}

// NewQuantity creates a Quantity from a decimal value.
// The value is rounded to QuantityScale places and must stay positive.
func NewQuantity(value decimal.Decimal) (Quantity, error) {
	rounded := value.Round(QuantityScale)
	if !rounded.IsPositive() {
		return Quantity{}, ErrInvalidQuantity
	}
	return Quantity{value: rounded}, nil
}

// NewQuantityFromFloat creates a Quantity from a float64 value.
func NewQuantityFromFloat(value float64) (Quantity, error) {
	return NewQuantity(decimal.NewFromFloat(value))
}

// DefaultQuantity returns the quantity used when none is supplied.
func DefaultQuantity() Quantity {
	return Quantity{value: decimal.NewFromInt(1)}
}

// ParseQuantity parses user-supplied quantity text.
// Empty input yields the default quantity of 1. Accepted notations are
// plain decimals ("2", "1.5"), comma decimals ("2,5") and fractions ("1/2").
func ParseQuantity(input string) (Quantity, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return DefaultQuantity(), nil
	}
	q, ok := ProbeQuantity(trimmed)
	if !ok {
		return Quantity{}, ErrInvalidQuantity
	}
	return q, nil
}

// ProbeQuantity attempts to read a token as a quantity.
// Failure to parse is a legitimate branch for the free-text parser, so this
// reports ok=false instead of returning an error. A token that parses to a
// non-positive value is also not a quantity.
func ProbeQuantity(token string) (Quantity, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Quantity{}, false
	}

	if num, den, ok := strings.Cut(token, "/"); ok {
		return probeFraction(num, den)
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(token, ",", "."))
	if err != nil {
		return Quantity{}, false
	}
	q, err := NewQuantity(value)
	if err != nil {
		return Quantity{}, false
	}
	return q, true
}

func probeFraction(num, den string) (Quantity, bool) {
	numerator, err := decimal.NewFromString(num)
	if err != nil {
		return Quantity{}, false
	}
	denominator, err := decimal.NewFromString(den)
	if err != nil || denominator.IsZero() {
		return Quantity{}, false
	}
	q, err := NewQuantity(numerator.Div(denominator))
	if err != nil {
		return Quantity{}, false
	}
	return q, true
}

// Decimal returns the underlying decimal value.
func (q Quantity) Decimal() decimal.Decimal {
	return q.value
}

// Float64 returns the quantity as a float64 (may lose precision)
func (q Quantity) Float64() float64 {
	f, _ := q.value.Float64()
	return f
}

// IsZero returns true for the zero-value Quantity.
func (q Quantity) IsZero() bool {
	return q.value.IsZero()
}

// Equals returns true if both quantities hold the same value.
func (q Quantity) Equals(other Quantity) bool {
	return q.value.Equal(other.value)
}

// String returns a string representation of the Quantity
func (q Quantity) String() string {
	return q.value.String()
}

// Value implements driver.Valuer for database storage
func (q Quantity) Value() (driver.Value, error) {
	return q.value.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
// A NULL column scans to the default quantity of 1.
func (q *Quantity) Scan(value any) error {
	if value == nil {
		*q = DefaultQuantity()
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		strVal = decimal.NewFromFloat(v).String()
	case int64:
		strVal = decimal.NewFromInt(v).String()
	default:
		return fmt.Errorf("cannot scan %T into Quantity", value)
	}

	val, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	q.value = val.Round(QuantityScale)
	return nil
}
