package ledger

import (
	"math"
	"strconv"
)

// FormatDuration renders minutes as "1h30m", dropping zero components.
// Zero is rendered as "0". Fractions of a minute are truncated.
func FormatDuration(minutes float64) string {
	total := int64(math.Trunc(minutes))
	if total == 0 {
		return "0"
	}

	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}

	hours := total / 60
	mins := total % 60
	switch {
	case hours == 0:
		return sign + strconv.FormatInt(mins, 10) + "m"
	case mins == 0:
		return sign + strconv.FormatInt(hours, 10) + "h"
	default:
		return sign + strconv.FormatInt(hours, 10) + "h" + strconv.FormatInt(mins, 10) + "m"
	}
}

// FormatCount renders a count without trailing zeros.
func FormatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
