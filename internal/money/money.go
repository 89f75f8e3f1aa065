// Package money renders product prices for display.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders amount as US dollars with two decimal places, for example
// "$29.99" or "$1,249.00".
func Format(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	return sign + printer.Sprint(currency.Symbol(currency.USD)) + group(whole) + "." + cents
}

// group inserts thousands separators into a string of digits. Amounts that
// fit an int64 go through the locale printer; larger ones are left bare.
func group(whole string) string {
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return whole
	}
	return printer.Sprint(number.Decimal(n))
}

// Plain renders amount with exactly two decimals and no symbol or grouping.
func Plain(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
