package types

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with currency.
// Immutable value object - all operations return new instances.
type Money struct {
	amount   int64  // Amount in smallest currency unit (cents)
	currency string // ISO 4217 currency code
}

var hundred = decimal.NewFromInt(100)

func NewMoney(amount int64, currency string) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("%w: currency is required", ErrInvalidMoney)
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("%w: currency must be 3-letter ISO code", ErrInvalidMoney)
	}
	return Money{amount: amount, currency: strings.ToUpper(currency)}, nil
}

func MustNewMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromDecimal converts a major-unit decimal (12.50) into Money, rounding half away
// from zero to the minor unit.
func MoneyFromDecimal(d decimal.Decimal, currency string) (Money, error) {
	minor := d.Mul(hundred).Round(0)
	if !minor.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%w: %s", ErrAmountOverflow, d)
	}
	return NewMoney(minor.IntPart(), currency)
}

var nonNumeric = regexp.MustCompile(`[^0-9.,\-]`)

// ParseMoney leniently parses a human-entered amount such as "45.50", "45,50 CHF",
// "CHF 1'200.00" or "1.234,50". When both '.' and ',' appear the last one is the
// decimal separator. Returns an error when no single number can be extracted.
func ParseMoney(s, currency string) (Money, error) {
	cleaned, err := normalizeAmount(nonNumeric.ReplaceAllString(strings.TrimSpace(s), ""))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q: %w", ErrInvalidMoney, s, err)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Money{}, fmt.Errorf("%w: parsing amount %q: %w", ErrInvalidMoney, s, err)
	}
	m, err := MoneyFromDecimal(d, currency)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q: %w", ErrInvalidMoney, s, err)
	}
	return m, nil
}

// normalizeAmount rewrites grouped digits into a plain decimal string.
// A separator that occurs more than once is grouping; a lone one is decimal.
func normalizeAmount(s string) (string, error) {
	if s == "" {
		return "", errors.New("no amount")
	}
	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")

	var decimalSep, groupSep string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalSep, groupSep = ".", ","
		if lastComma > lastDot {
			decimalSep, groupSep = ",", "."
		}
		if strings.Count(s, decimalSep) > 1 {
			return "", fmt.Errorf("ambiguous separators in %q", s)
		}
	case lastComma >= 0:
		decimalSep, groupSep = ",", ","
		if strings.Count(s, ",") > 1 {
			decimalSep = ""
		}
	case lastDot >= 0:
		decimalSep, groupSep = ".", "."
		if strings.Count(s, ".") > 1 {
			decimalSep = ""
		}
	default:
		return s, nil
	}

	if decimalSep == "" {
		return ungroup(s, groupSep)
	}
	i := strings.LastIndex(s, decimalSep)
	intPart, err := ungroup(s[:i], groupSep)
	if err != nil {
		return "", err
	}
	return intPart + "." + s[i+1:], nil
}

// ungroup drops thousands separators, requiring three digits after each one.
func ungroup(s, sep string) (string, error) {
	groups := strings.Split(s, sep)
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", fmt.Errorf("malformed digit grouping in %q", s)
		}
	}
	return strings.Join(groups, ""), nil
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.amount == 0 }

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -2)
}

// Float64 is used only at wire boundaries that require JSON numbers.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot add %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	sum := m.amount + other.amount
	if (other.amount > 0 && sum < m.amount) || (other.amount < 0 && sum > m.amount) {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrAmountOverflow, m, other)
	}
	return Money{amount: sum, currency: m.currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", ErrCurrencyMismatch, other.currency, m.currency)
	}
	diff := m.amount - other.amount
	if (other.amount < 0 && diff < m.amount) || (other.amount > 0 && diff > m.amount) {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrAmountOverflow, m, other)
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// Multiply fails instead of wrapping when the product leaves the int64 range.
func (m Money) Multiply(factor int64) (Money, error) {
	product := decimal.NewFromInt(m.amount).Mul(decimal.NewFromInt(factor))
	if !product.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%w: %s x %d", ErrAmountOverflow, m, factor)
	}
	return Money{amount: product.IntPart(), currency: m.currency}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// String formats as "12.50 CHF".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.currency)
}
