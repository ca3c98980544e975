// Package money renders monetary amounts. Every money-bearing answer, prompt
// and report goes through Formatter so the currency format stays canonical.
package money

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrency = "NGN"
	DefaultLocale   = "en-NG"
)

// Narrow symbols for the currencies the dataset is expected to use. Anything
// else falls back to the CLDR narrow symbol.
var symbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
}

// Formatter formats whole-unit amounts with locale digit grouping, zero
// decimal places and a currency symbol, e.g. ₦45,000,000,000.
type Formatter struct {
	unit    currency.Unit
	symbol  string
	printer *message.Printer
}

// NewFormatter builds a Formatter for an ISO 4217 code and a BCP 47 locale.
func NewFormatter(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}
	sym, ok := symbols[unit.String()]
	if !ok {
		sym = fmt.Sprint(currency.NarrowSymbol(unit))
	}
	return &Formatter{
		unit:    unit,
		symbol:  sym,
		printer: message.NewPrinter(tag),
	}, nil
}

// Default returns the naira formatter used when nothing is configured.
func Default() *Formatter {
	f, err := NewFormatter(DefaultCurrency, DefaultLocale)
	if err != nil {
		panic(err)
	}
	return f
}

// Format renders amount. Negative amounts (a negative remaining budget, say)
// carry a leading minus before the symbol.
func (f *Formatter) Format(amount int64) string {
	sign := ""
	abs := uint64(amount)
	if amount < 0 {
		sign = "-"
		abs = uint64(-(amount + 1)) + 1
	}
	return sign + f.symbol + f.printer.Sprintf("%d", abs)
}

// Currency returns the ISO code being formatted.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Billions expresses amount in billions, as used for chart-style comparisons.
func Billions(amount int64) float64 {
	return float64(amount) / 1e9
}
