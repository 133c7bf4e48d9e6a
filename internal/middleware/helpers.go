package middleware

import "strconv"

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func parseUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
