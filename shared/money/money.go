// Package money implements the monetary value object shared by both ledgers.
// Amounts are kept at scale 2 with half-up rounding; every binary operation
// requires both operands to share a currency.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/errs"
)

// iso4217 is the set of currency codes accepted by New. Codes are compared
// upper-case.
var iso4217 = map[string]struct{}{
	"AED": {}, "AUD": {}, "BGN": {}, "BRL": {}, "CAD": {}, "CHF": {},
	"CLP": {}, "CNY": {}, "COP": {}, "CZK": {}, "DKK": {}, "EGP": {},
	"EUR": {}, "GBP": {}, "HKD": {}, "HUF": {}, "IDR": {}, "ILS": {},
	"INR": {}, "ISK": {}, "JPY": {}, "KES": {}, "KRW": {}, "KWD": {},
	"MAD": {}, "MXN": {}, "MYR": {}, "NGN": {}, "NOK": {}, "NZD": {},
	"PEN": {}, "PHP": {}, "PKR": {}, "PLN": {}, "QAR": {}, "RON": {},
	"RSD": {}, "SAR": {}, "SEK": {}, "SGD": {}, "THB": {}, "TRY": {},
	"TWD": {}, "TZS": {}, "UAH": {}, "USD": {}, "VND": {}, "ZAR": {},
}

// Money is an immutable amount plus currency. The zero value is not valid;
// construct through New or Zero.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New validates the currency code, uppercases it, and rounds the amount to
// two decimal places half-up.
func New(amount decimal.Decimal, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return Money{}, errs.Validation("currency cannot be empty")
	}
	if _, ok := iso4217[code]; !ok {
		return Money{}, errs.Validation("invalid currency code: %s", currency)
	}
	return Money{amount: amount.Round(2), currency: code}, nil
}

// MustNew is New for compile-time constants in wiring and tests.
// It panics on invalid input.
func MustNew(amount string, currency string) Money {
	m, err := New(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) (Money, error) {
	return New(decimal.Zero, currency)
}

// Amount returns the scale-2 decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the upper-case ISO 4217 code.
func (m Money) Currency() string { return m.currency }

func (m Money) sameOr(other Money) error {
	if m.currency != other.currency {
		return errs.CurrencyMismatch(m.currency, other.currency)
	}
	return nil
}

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool { return m.currency == other.currency }

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameOr(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameOr(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply scales the amount and re-rounds to two decimal places half-up.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor).Round(2), currency: m.currency}
}

// Divide divides the amount, keeping two decimal places half-up.
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, errs.Validation("division by zero")
	}
	return Money{amount: m.amount.DivRound(divisor, 2), currency: m.currency}, nil
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameOr(other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if err := m.sameOr(other); err != nil {
		return false, err
	}
	return m.amount.GreaterThanOrEqual(other.amount), nil
}

func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameOr(other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

func (m Money) LessThanOrEqual(other Money) (bool, error) {
	if err := m.sameOr(other); err != nil {
		return false, err
	}
	return m.amount.LessThanOrEqual(other.amount), nil
}

// Equal compares amount and currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.currency + " " + m.amount.StringFixed(2)
}
