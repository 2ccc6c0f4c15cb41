package helpers

import (
	"strconv"
)

// FormatPrice renders a price with the minimal number of digits,
// so 105.50 becomes "105.5" and 135 becomes "135".
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
