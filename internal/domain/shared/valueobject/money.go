package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	INR Currency = "INR" // Indian Rupee
	JPY Currency = "JPY" // Japanese Yen
)

// DefaultCurrency is the default currency for the store
const DefaultCurrency = USD

// Money is a value object representing a monetary amount in minor units
// (cents, pence, paise). Amounts are exact integers so arithmetic never
// accumulates floating point error. It is immutable - all operations
// return new Money instances.
type Money struct {
	amount   int64
	currency Currency
}

// NewMoney creates a new Money from an amount in minor units
func NewMoney(amount int64, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney creates a new Money, panicking on an empty currency.
// Intended for constants and tests.
func MustMoney(amount int64, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: 0, currency: currency}
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// MustSubtract subtracts two Money values, panics if currencies don't match
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MultiplyByInt returns a new Money multiplied by an integer quantity
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount * factor, currency: m.currency}
}

// ApplyRate multiplies the amount by a decimal rate (e.g. a tax rate of
// 0.0825) and rounds half-up to the nearest minor unit. The rate math
// runs in decimal space so repeated application stays deterministic.
func (m Money) ApplyRate(rate decimal.Decimal) Money {
	scaled := decimal.NewFromInt(m.amount).Mul(rate).Round(0)
	return Money{amount: scaled.IntPart(), currency: m.currency}
}

// ApplyPercent multiplies the amount by percent/100 with half-up rounding
func (m Money) ApplyPercent(percent decimal.Decimal) Money {
	return m.ApplyRate(percent.Div(decimal.NewFromInt(100)))
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Abs returns a new Money with the absolute value
func (m Money) Abs() Money {
	if m.amount < 0 {
		return m.Negate()
	}
	return m
}

// ClampNonNegative returns the Money, floored at zero
func (m Money) ClampNonNegative() Money {
	if m.amount < 0 {
		return Zero(m.currency)
	}
	return m
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// LessThan returns true if this Money is less than the other
// Returns error if currencies don't match
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount < other.amount, nil
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount > other.amount, nil
}

// String returns a string representation of the Money
func (m Money) String() string {
	major := m.amount / 100
	minor := m.amount % 100
	if minor < 0 {
		minor = -minor
	}
	return fmt.Sprintf("%d.%02d %s", major, minor, m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   int64    `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount,
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler. An empty currency defaults
// to DefaultCurrency so persisted rows written before the currency column
// existed still scan cleanly.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64    `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.amount = v.Amount
	m.currency = v.Currency
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// Value implements driver.Valuer for database storage
// Stores the amount in minor units
func (m Money) Value() (driver.Value, error) {
	return m.amount, nil
}

// Scan implements sql.Scanner for database retrieval. Only the amount is
// scanned; currency defaults to DefaultCurrency if not already set.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = 0
		m.currency = DefaultCurrency
		return nil
	}
	switch v := value.(type) {
	case int64:
		m.amount = v
	case int:
		m.amount = int64(v)
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("invalid monetary value: %w", err)
		}
		m.amount = d.IntPart()
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// Allocate divides money into n parts, distributing the remainder one
// minor unit at a time from the first part. The parts always sum to the
// original amount.
func (m Money) Allocate(parts int) ([]Money, error) {
	if parts <= 0 {
		return nil, errors.New("parts must be positive")
	}
	base := m.amount / int64(parts)
	remainder := m.amount - base*int64(parts)

	result := make([]Money, parts)
	for i := range parts {
		partAmount := base
		if int64(i) < remainder {
			partAmount++
		}
		result[i] = Money{amount: partAmount, currency: m.currency}
	}
	return result, nil
}
