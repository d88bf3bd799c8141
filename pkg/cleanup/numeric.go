package cleanup

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SanitizeDecimalInput keeps digits and the first decimal separator ("." or
// ","). Separators after the first one are dropped, so "1,2,3" becomes "1,23".
func SanitizeDecimalInput(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	seenSep := false
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == ',':
			if !seenSep {
				b.WriteRune(r)
				seenSep = true
			}
		}
	}
	return b.String()
}

// SanitizeIntInput strips everything but ASCII digits.
func SanitizeIntInput(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseLocaleDecimal parses a kilogram entry that may use either "," or "."
// as decimal separator. Parsing is lenient: the longest numeric prefix is
// used, so "12,5kg" parses as 12.5. Empty or non-numeric input is not ok.
func ParseLocaleDecimal(input string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.Replace(s, ",", ".", 1)
	prefix := numericPrefix(s)
	if prefix == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseLocaleNumber is ParseLocaleDecimal returning a float64.
func ParseLocaleNumber(input string) (float64, bool) {
	d, ok := ParseLocaleDecimal(input)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseCount parses a bag count. Like parseInt it reads an optional sign and
// leading digits; "" and non-numeric input are not ok.
func ParseCount(input string) (int, bool) {
	s := strings.TrimSpace(input)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SumCounts adds every parseable count; the rest contribute zero.
func SumCounts(values []string) int {
	total := 0
	for _, v := range values {
		if n, ok := ParseCount(v); ok {
			total += n
		}
	}
	return total
}

// SumDecimals adds every parseable kilogram entry exactly; the rest
// contribute zero.
func SumDecimals(values []string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if d, ok := ParseLocaleDecimal(v); ok {
			total = total.Add(d)
		}
	}
	return total
}

// FormatKg renders a weight with one decimal place.
func FormatKg(d decimal.Decimal) string {
	return d.StringFixed(1)
}

// numericPrefix returns the longest prefix of s that reads as a decimal
// number (sign, digits, fraction, exponent), normalised so that
// decimal.NewFromString accepts it. It returns "" when s has no digits up front.
func numericPrefix(s string) string {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intPart := s[intStart:i]

	fracPart := ""
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		fracPart = s[i+1 : j]
		i = j
	}

	if intPart == "" && fracPart == "" {
		return ""
	}

	expPart := ""
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			expPart = s[i:k]
		}
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if intPart == "" {
		b.WriteByte('0')
	} else {
		b.WriteString(intPart)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	b.WriteString(expPart)
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
