package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Number parses plain numeric text ("10", "10.0", "1,200"); ok is false otherwise.
func Number(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatNumber renders d without trailing zeros; missing renders as "".
func FormatNumber(d decimal.Decimal, ok bool) string {
	if !ok {
		return ""
	}
	return d.String()
}

var trailingZeroFraction = regexp.MustCompile(`^(-?\d+)\.0+$`)

// CanonicalID normalizes identifier text that may have passed through a numeric
// conversion: whitespace is trimmed, "10234.0" becomes "10234" and "1.0234E4" becomes "10234".
// Non-numeric identifiers are only trimmed.
func CanonicalID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := trailingZeroFraction.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if strings.ContainsAny(s, "eE") {
		if d, err := decimal.NewFromString(s); err == nil && d.Equal(d.Truncate(0)) {
			return d.Truncate(0).String()
		}
	}
	return s
}
