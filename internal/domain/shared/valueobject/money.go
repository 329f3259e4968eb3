package valueobject

import (
	"fmt"
	"strings"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultFractionDigits is used when a currency's conventional precision
// cannot be resolved.
const DefaultFractionDigits = 2

// ErrCurrencyMismatch signals arithmetic between two different currencies.
// This is an invariant violation by the caller, not a recoverable condition.
var ErrCurrencyMismatch = shared.NewDomainError("CURRENCY_MISMATCH", "Cannot combine amounts in different currencies")

// Money is a value object holding an exact amount in a currency's minor unit
// (e.g. cents). It is immutable - all operations return new Money instances.
type Money struct {
	minor          int64
	currency       string
	fractionDigits int32
}

// NewMoneyFromMinor creates Money from an integer minor-unit amount.
// The currency code is upper-cased and its conventional fraction-digit count
// is resolved once and cached on the instance.
func NewMoneyFromMinor(minor int64, currencyCode string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		return Money{}, shared.NewDomainError("INVALID_CURRENCY", "Currency code cannot be empty")
	}
	return Money{
		minor:          minor,
		currency:       code,
		fractionDigits: fractionDigitsFor(code),
	}, nil
}

// NewMoneyFromMajor creates Money from a major-unit decimal amount,
// converting to minor units by rounding amount × 10^fractionDigits.
func NewMoneyFromMajor(amount decimal.Decimal, currencyCode string) (Money, error) {
	m, err := NewMoneyFromMinor(0, currencyCode)
	if err != nil {
		return Money{}, err
	}
	m.minor = amount.Shift(m.fractionDigits).Round(0).IntPart()
	return m, nil
}

// NewMoneyFromFloat creates Money from a major-unit float64 amount.
func NewMoneyFromFloat(amount float64, currencyCode string) (Money, error) {
	return NewMoneyFromMajor(decimal.NewFromFloat(amount), currencyCode)
}

// ParseMoney creates Money from a major-unit decimal string.
// Comma decimal separators are accepted ("10,50" == "10.50").
func ParseMoney(amount, currencyCode string) (Money, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(amount), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Money{}, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Invalid monetary amount %q", amount))
	}
	return NewMoneyFromMajor(d, currencyCode)
}

// ZeroMoney returns a zero-value Money in the specified currency.
func ZeroMoney(currencyCode string) Money {
	m, _ := NewMoneyFromMinor(0, currencyCode)
	return m
}

// Minor returns the integer minor-unit amount.
func (m Money) Minor() int64 {
	return m.minor
}

// Currency returns the upper-cased currency code.
func (m Money) Currency() string {
	return m.currency
}

// FractionDigits returns the resolved fraction-digit count.
func (m Money) FractionDigits() int32 {
	return m.fractionDigits
}

// Major returns the amount expressed in major units.
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.minor, -m.fractionDigits)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.minor == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.minor > 0
}

// Add returns a new Money with the sum of both amounts.
// Returns ErrCurrencyMismatch if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{
		minor:          m.minor + other.minor,
		currency:       m.currency,
		fractionDigits: m.fractionDigits,
	}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.minor == other.minor
}

// Format renders the amount as a locale-formatted currency string using the
// resolved fraction digits, e.g. minor 1050 in BRL under pt-BR -> "R$ 10,50".
func (m Money) Format(locale string) string {
	unit, err := currency.ParseISO(m.currency)
	if err != nil {
		return m.String()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	amount, _ := m.Major().Float64()
	return message.NewPrinter(tag).Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}

// String returns a plain representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Major().StringFixed(m.fractionDigits), m.currency)
}

// fractionDigitsFor resolves the conventional decimal precision of a
// currency, defaulting to 2 when the code is unknown.
func fractionDigitsFor(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return DefaultFractionDigits
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}
