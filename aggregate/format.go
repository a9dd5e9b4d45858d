package aggregate

import (
	"fmt"
	"math"
)

// FormatLength renders a duration in seconds as "HH:MM:SS", rounded to the
// nearest second. Hours are not wrapped at 24.
func FormatLength(seconds float64) string {
	total := int64(math.Round(seconds))
	if total < 0 {
		total = 0
	}

	h := total / 3600
	m := total % 3600 / 60
	s := total % 60

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
