package validation

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// IsCurrency reports whether code is an ISO 4217 currency code.
func IsCurrency(code string) bool {
	_, err := currency.ParseISO(code)
	return err == nil
}

// FormatPrice renders a whole-unit amount with thousands separators and the currency code,
// e.g. "32,000 USD". An empty code defaults to USD.
func FormatPrice(amount int64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "USD"
	}
	return pricePrinter.Sprintf("%d %s", amount, code)
}
