package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	CAD Currency = "CAD" // Canadian Dollar
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

// CurrencyPlaces is the number of minor-unit digits money is kept at.
const CurrencyPlaces int32 = 2

var displayPrinter = message.NewPrinter(language.AmericanEnglish)

// Money is a value object representing monetary amounts.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyUSD creates Money in the default currency
func NewMoneyUSD(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: USD}
}

// NewMoneyFromString creates Money from a strict decimal string
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// Zero returns a zero-value Money in the specified currency
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

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns a new Money with the difference
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Round returns a new Money rounded to currency precision
func (m Money) Round() Money {
	return Money{amount: RoundCurrency(m.amount), currency: m.currency}
}

// Equals returns true if both Money values are equal at currency precision
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && RoundCurrency(m.amount).Equal(RoundCurrency(other.amount))
}

// Format renders the amount for display, e.g. "$1,234.50" or "-$80.00".
// Only USD carries a symbol; other currencies are suffixed with their code.
func (m Money) Format() string {
	rounded := RoundCurrency(m.amount)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole, cents, _ := strings.Cut(rounded.StringFixed(CurrencyPlaces), ".")
	digits := groupThousands(whole) + "." + cents
	if m.currency == USD || m.currency == "" {
		return sign + "$" + digits
	}
	return fmt.Sprintf("%s%s %s", sign, digits, m.currency)
}

// groupThousands inserts en-US group separators into a run of integer digits
func groupThousands(whole string) string {
	if n, err := strconv.ParseUint(whole, 10, 64); err == nil {
		return displayPrinter.Sprint(number.Decimal(n))
	}
	var b strings.Builder
	head := len(whole) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(whole[:head])
	for i := head; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// String returns the display form of the Money
func (m Money) String() string {
	return m.Format()
}

// Value implements driver.Valuer; only the amount is stored
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(CurrencyPlaces), nil
}

// Scan implements sql.Scanner. The currency falls back to DefaultCurrency.
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// RoundCurrency rounds half away from zero to cents.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// FormatCurrency renders a USD amount for display.
func FormatCurrency(d decimal.Decimal) string {
	return NewMoneyUSD(d).Format()
}

// ParseAmount parses user-entered currency text. A leading "$" and
// thousands separators are accepted; anything unparseable yields zero.
// The result is rounded to cents.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return RoundCurrency(d)
}

// AmountText renders the amount line of a check: "1250 and 5/100 dollars".
func AmountText(d decimal.Decimal) string {
	rounded := RoundCurrency(d.Abs())
	dollars := rounded.Truncate(0)
	cents := rounded.Sub(dollars).Mul(decimal.NewFromInt(100)).IntPart()
	return fmt.Sprintf("%s and %d/100 dollars", dollars.String(), cents)
}
