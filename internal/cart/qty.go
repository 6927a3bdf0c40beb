package cart

import (
	"math"
	"strconv"
	"strings"
)

// ParseQty reads a leading integer the way a browser number field does:
// surrounding whitespace is ignored and trailing garbage after the digits is
// dropped ("3abc" is 3). ok is false when no digits are present.
func ParseQty(raw string) (n int, ok bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// only a range error is possible here
		if s[0] == '-' {
			return math.MinInt32, true
		}
		return math.MaxInt32, true
	}
	return int(max(min(v, math.MaxInt32), math.MinInt32)), true
}

// CoerceQty applies the quantity floor: unparsable or sub-1 input becomes 1.
func CoerceQty(raw string) int {
	n, ok := ParseQty(raw)
	if !ok || n < 1 {
		return 1
	}
	return n
}
