package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses one loosely typed cell as a number. The sheets mix in
// thousands separators, currency symbols and unit suffixes ("2,000,000",
// "₩1,500,000", "100 USD", "3명"), so everything except digits, a leading
// sign and a single decimal point is stripped before parsing. Total
// function: false on failure, never panics.
func ParseAmount(cell string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Decimal{}, false
	}

	var b strings.Builder
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !dot:
			dot = true
			b.WriteRune(r)
		case (r == '-' || r == '+') && i == 0:
			b.WriteRune(r)
		case r == ',' || r == ' ' || r == ' ':
			// separator, skip
		case r == '.' && dot:
			// second dot: date-like value, not a number
			return decimal.Decimal{}, false
		default:
			// currency symbols and unit suffixes are ignorable only on
			// the edges; letters between digits mean this is not a number
			if b.Len() > 0 && hasDigitAfter(s, i) {
				return decimal.Decimal{}, false
			}
		}
	}

	d, err := decimal.NewFromString(strings.TrimSpace(b.String()))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func hasDigitAfter(s string, i int) bool {
	for _, r := range s[i:] {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// ParseCount parses a cell as a non-negative count, zero on failure. Used
// for demographic totals where missing or junk values count as zero.
func ParseCount(cell string) decimal.Decimal {
	d, ok := ParseAmount(cell)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
