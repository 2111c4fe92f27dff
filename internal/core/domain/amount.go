package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount limits for inbound requests and gateway replies.
const (
	ServiceChargeMaxDigits = 10
	ProcessIDMaxDigits     = 15
	AmountDecimalPlaces    = 2
)

// MinAmount is the smallest amount the switch accepts.
var MinAmount = decimal.RequireFromString("0.01")

// FormatAmount renders an amount the way it is signed and sent: fixed two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountDecimalPlaces)
}

// CheckPrecision returns a message for the first digit limit d exceeds, or "".
// Digits are counted on d as written, so "10.500" has three decimal places.
func CheckPrecision(d decimal.Decimal, maxDigits, places int) string {
	digits := len(d.Coefficient().Text(10))
	if d.Coefficient().Sign() < 0 {
		digits--
	}
	exp := int(d.Exponent())

	var total, decimals, whole int
	switch {
	case exp >= 0:
		total, decimals, whole = digits+exp, 0, digits+exp
	case digits > -exp:
		total, decimals, whole = digits, -exp, digits+exp
	default:
		total, decimals, whole = -exp, -exp, 0
	}

	switch {
	case total > maxDigits:
		return fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxDigits)
	case decimals > places:
		return fmt.Sprintf("Ensure that there are no more than %d decimal places.", places)
	case whole > maxDigits-places:
		return fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxDigits-places)
	}
	return ""
}
