package frame

import "strings"

// SortKey is the first run of decimal digits in a file name, with leading
// zeros removed. Names without digits get key "0".
type SortKey string

// KeyOf extracts the sort key of a file name.
func KeyOf(name string) SortKey {
	start := strings.IndexFunc(name, isDigit)
	if start < 0 {
		return "0"
	}
	end := start
	for end < len(name) && isDigit(rune(name[end])) {
		end++
	}
	digits := strings.TrimLeft(name[start:end], "0")
	if digits == "" {
		return "0"
	}
	return SortKey(digits)
}

// Compare orders keys numerically without overflow:
// a shorter digit string is smaller, equal lengths compare lexicographically.
func (k SortKey) Compare(other SortKey) int {
	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	default:
		return strings.Compare(string(k), string(other))
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
