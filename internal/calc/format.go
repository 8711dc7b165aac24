package calc

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorText is what the display shows for error and non-finite values.
const ErrorText = "Error"

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatDisplay turns a raw display value into the text shown to the
// user. Only the integer part is grouped; the fractional part, including
// a trailing bare decimal point, is reattached verbatim so an entry in
// progress such as "12." keeps its point.
func FormatDisplay(raw string) string {
	if raw == "" || IsError(raw) {
		return ErrorText
	}

	integer, fraction, hasFraction := strings.Cut(raw, ".")
	if integer == "" && hasFraction {
		return "0." + fraction
	}

	grouped, ok := groupInteger(integer)
	if !ok {
		return "0"
	}

	if hasFraction {
		return grouped + "." + fraction
	}
	return grouped
}

func groupInteger(integer string) (string, bool) {
	if n, err := strconv.ParseInt(integer, 10, 64); err == nil {
		if n == 0 && strings.HasPrefix(integer, "-") {
			return "-0", true
		}
		return printer.Sprintf("%d", n), true
	}

	// Past int64 the digits are grouped as stored; a float round trip
	// would print its binary expansion instead.
	sign, digits := splitSign(integer)
	if isDigits(digits) {
		return sign + groupDigits(digits), true
	}

	f, err := strconv.ParseFloat(integer, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	sign, expanded := splitSign(strconv.FormatFloat(f, 'f', -1, 64))
	whole, fraction, hasFraction := strings.Cut(expanded, ".")
	if hasFraction {
		return sign + groupDigits(whole) + "." + fraction, true
	}
	return sign + groupDigits(whole), true
}

func splitSign(s string) (string, string) {
	switch {
	case strings.HasPrefix(s, "-"):
		return "-", s[1:]
	case strings.HasPrefix(s, "+"):
		return "", s[1:]
	}
	return "", s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// groupDigits inserts a comma every three digits from the right.
func groupDigits(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0"
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
