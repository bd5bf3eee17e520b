package utils

import (
	"fmt"
	"strings"
)

// FormatMinor renders an amount held in minor currency units (cents) for
// display, e.g. FormatMinor(30000, "usd") == "300.00 USD". Persistence and
// arithmetic never leave minor units; this is the display boundary.
func FormatMinor(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}
