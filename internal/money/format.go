// Package money renders decimal amounts as localized currency text.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter prints amounts with a fixed currency symbol and the digit
// grouping of its locale, always with two fractional digits.
type Formatter struct {
	unit    currency.Unit
	symbol  string
	group   string
	decimal string
}

func NewFormatter(isoCode, symbol, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(isoCode)
	if err != nil {
		return nil, fmt.Errorf("currency[%s] is not valid: %w", isoCode, err)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale[%s] is not valid: %w", locale, err)
	}

	if symbol == "" {
		symbol = unit.String()
	}

	group, dec := separators(message.NewPrinter(tag))

	return &Formatter{
		unit:    unit,
		symbol:  symbol,
		group:   group,
		decimal: dec,
	}, nil
}

// separators reads the locale's grouping and decimal marks off a sample
// rendering of 1234.5.
func separators(p *message.Printer) (group, dec string) {
	sample := p.Sprintf("%.1f", 1234.5)

	i := strings.IndexRune(sample, '1')
	j := strings.IndexRune(sample, '2')
	k := strings.IndexRune(sample, '4')
	l := strings.IndexRune(sample, '5')
	if i < 0 || j < i || k < j || l < k {
		return ",", "."
	}

	return sample[i+1 : j], sample[k+1 : l]
}

func (f *Formatter) Currency() currency.Unit {
	return f.unit
}

// Format rounds amount half away from zero to 2 digits and prints it,
// e.g. "₦7,150.00" or "-₦5.00".
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	whole, frac, _ := strings.Cut(rounded.StringFixed(2), ".")

	return sign + f.symbol + f.groupDigits(whole) + f.decimal + frac
}

func (f *Formatter) groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(f.group)
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
