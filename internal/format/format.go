// Package format renders counts and currency amounts for display.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencySymbol = "R$"

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// Int formats n with thousands separators, e.g. 12,345.
func Int(n int) string {
	return printer().Sprintf("%d", n)
}

// Money formats v as a two-decimal amount with separators, e.g. R$ 1,234.50.
func Money(v float64) string {
	return printer().Sprintf("%s %.2f", currencySymbol, v)
}

// Percent formats a 0..100 share with one decimal.
func Percent(v float64) string {
	return printer().Sprintf("%.1f%%", v)
}
