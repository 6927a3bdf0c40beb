package checkout

import (
	"strings"

	"github.com/fjod/gamingmarket/internal/validation"
)

func DigitsOnly(s string) string {
	return validation.Digits(s)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// FormatPhone keeps at most 11 digits.
func FormatPhone(raw string) string {
	return truncate(DigitsOnly(raw), 11)
}

// FormatCardNumber keeps at most 16 digits, grouped in blocks of four.
func FormatCardNumber(raw string) string {
	d := truncate(DigitsOnly(raw), 16)
	var b strings.Builder
	for i := 0; i < len(d); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d[i:min(i+4, len(d))])
	}
	return b.String()
}

// FormatExpiry keeps at most 4 digits and inserts the slash once the year
// has started.
func FormatExpiry(raw string) string {
	d := truncate(DigitsOnly(raw), 4)
	if len(d) <= 2 {
		return d
	}
	return d[:2] + "/" + d[2:]
}

func FormatCVC(raw string) string {
	return truncate(DigitsOnly(raw), 4)
}
