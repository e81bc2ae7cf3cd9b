package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// parseNumber recognizes the three numeric literal forms from spec.md
// section 3: plain decimal, a 0x/0X hex prefix, and a trailing H/h hex
// suffix (the suffix form must start with a digit, e.g. 0FFh, to stay
// distinguishable from a label).
func parseNumber(tok string) (uint16, bool, error) {
	neg := false
	s := tok
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var v uint64
	var err error
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	case len(s) > 1 && (strings.HasSuffix(s, "h") || strings.HasSuffix(s, "H")) && isHexDigitStart(s):
		v, err = strconv.ParseUint(s[:len(s)-1], 16, 32)
	default:
		if s == "" || !isDigit(s[0]) {
			return 0, false, nil
		}
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, false, fmt.Errorf("invalid number: %s", tok)
	}
	if neg {
		return uint16(-int32(v)), true, nil
	}
	return uint16(v), true, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isHexDigitStart requires a leading decimal digit so "0FFh" parses as a
// number but "FFh" (no leading digit) is left for the caller to treat as a
// label instead, matching the usual assembler convention.
func isHexDigitStart(s string) bool { return isDigit(s[0]) }
