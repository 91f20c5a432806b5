package helper

import (
	"fmt"
	"strings"
)

// ValidateCurrency normalizes a PayTR currency code. Empty means TL.
func ValidateCurrency(currency string) (string, error) {
	if currency == "" {
		return "TL", nil
	}

	validCurrencies := []string{"TL", "USD", "EUR", "GBP", "RUB"}

	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if normalized == "TRY" {
		normalized = "TL"
	}
	for _, valid := range validCurrencies {
		if normalized == valid {
			return valid, nil
		}
	}

	return "", fmt.Errorf("unsupported currency: %s", currency)
}
