package helper

import (
	"github.com/shopspring/decimal"
)

// RoundAmount rounds to the cent, half away from zero. The float is read
// through its shortest decimal representation, so 19.995 rounds up to 20.00
// even though its binary value sits just below 19.995.
func RoundAmount(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// FormatAmount renders the rounded amount with exactly two decimals. The
// same string is signed and transmitted.
func FormatAmount(amount float64) string {
	return RoundAmount(amount).StringFixed(2)
}

// AmountToMinor converts to kuruş for APIs that take integer prices.
func AmountToMinor(amount float64) int64 {
	return RoundAmount(amount).Shift(2).IntPart()
}
