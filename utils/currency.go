package utils

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.Indonesian)

// FormatCurrency renders amount with Indonesian grouping and two decimals,
// e.g. FormatCurrency(15000.5, "Rp") -> "Rp 15.000,50".
func FormatCurrency(amount float64, symbol string) string {
	out := amountPrinter.Sprintf("%.2f", math.Round(amount*100)/100)
	if symbol == "" {
		return out
	}
	return symbol + " " + out
}
