// Package safeconv provides safe integer type conversion functions that panic on overflow.
package safeconv

// MustIntToUint64 converts int to uint64, panics if negative.
// Use only when negative values are logically impossible.
func MustIntToUint64(v int) uint64 {
	if v < 0 {
		panic("safeconv: negative int to uint64 conversion")
	}

	return uint64(v)
}

// MustInt64ToInt converts int64 to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustInt64ToInt(v int64) int {
	if int64(int(v)) != v {
		panic("safeconv: int64 to int overflow")
	}

	return int(v)
}
