// Package conv provides zero-copy conversions between strings and byte
// slices for the search hot path.
//
// The returned values alias the original memory. A byte slice obtained from
// StringToBytes must never be written to, and the bytes passed to
// BytesToString must not be modified while the string is in use.
package conv

import "unsafe"

// StringToBytes returns the bytes of s without copying.
func StringToBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// BytesToString returns b as a string without copying.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
