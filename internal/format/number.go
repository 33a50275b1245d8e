package format

import (
	"math/big"
	"strings"
)

// scientificThreshold is the smallest value rendered in scientific notation.
var scientificThreshold = big.NewInt(1_000_000_000_000)

// IsScientific reports whether FormatLargeNumber renders v in scientific
// notation.
func IsScientific(v *big.Int) bool {
	return v != nil && v.Cmp(scientificThreshold) >= 0
}

// FormatLargeNumber renders a calculation result for display. Values of at
// least 10^12 use scientific notation with three fractional digits
// (3.099e+21); smaller values use comma thousands separators.
func FormatLargeNumber(v *big.Int) string {
	if v == nil {
		return ""
	}
	if IsScientific(v) {
		return new(big.Float).SetInt(v).Text('e', 3)
	}
	return FormatNumberString(v.String())
}

// FormatNumberString inserts comma thousands separators into a string of
// decimal digits with an optional leading minus sign.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(len(sign) + len(s) + len(s)/3)
	b.WriteString(sign)
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
