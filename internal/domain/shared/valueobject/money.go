package valueobject

import (
	"fmt"
	"strings"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Currency is a 3-letter ISO 4217 code such as COP or USD
type Currency string

// Money amounts are kept and displayed with two decimals
const MoneyScale int32 = 2

var (
	ErrInvalidCurrency  = shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	ErrCurrencyMismatch = shared.NewDomainError("CURRENCY_MISMATCH", "Currencies do not match")
)

// NewCurrency validates and normalizes a currency code
func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return Currency(code), nil
}

// String returns the code
func (c Currency) String() string {
	return string(c)
}

// Money is an immutable amount in a currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money, validating the currency code
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	c, err := NewCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: c}, nil
}

// Zero returns zero in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, mismatch(m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other for amounts of the same currency
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, mismatch(m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// LessThan compares two amounts of the same currency
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, mismatch(m.currency, other.currency)
	}
	return m.amount.LessThan(other.amount), nil
}

// Round rounds to MoneyScale decimals
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(MoneyScale), currency: m.currency}
}

// String formats the amount with two decimals followed by the code
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MoneyScale), m.currency)
}

func mismatch(a, b Currency) error {
	return ErrCurrencyMismatch.WithMessage(fmt.Sprintf("Currency mismatch: %s and %s", a, b))
}

// IsValidAmount reports whether a is positive and carries no more than
// MoneyScale decimals, so it is stored exactly.
func IsValidAmount(a decimal.Decimal) bool {
	return a.IsPositive() && a.Equal(a.Round(MoneyScale))
}
