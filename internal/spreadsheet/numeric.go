package spreadsheet

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ParseNumber coerces a cell's display text into a number. Full-width
// digits are folded to ASCII, thousands separators and currency marks are
// stripped. Empty or unparseable text coerces to 0, never NaN.
func ParseNumber(s string) float64 {
	s = width.Narrow.String(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range s {
		switch r {
		case ',', '，', '¥', '\\', '￥', ' ', '　':
			continue
		}
		b.WriteRune(r)
	}

	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return n
}
