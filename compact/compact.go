// Package compact implements the short numeric encodings used by share URLs:
// base-36 integers, seconds-resolution timestamps, and shortened fixed-decimal
// floats. All decoders report failure instead of guessing; callers treat a
// failed decode as "value absent, keep the default."
package compact

import (
	"math"
	"strconv"
	"strings"
)

// EncodeInt36 rounds n to the nearest integer and renders it in lowercase
// base 36. Negative values carry a leading '-'.
func EncodeInt36(n float64) string {
	return strconv.FormatInt(int64(math.Round(n)), 36)
}

// DecodeInt36 parses a lowercase base-36 integer. ok is false when s is empty
// or contains characters outside [0-9a-z] (an optional leading '-' aside).
func DecodeInt36(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	// strconv accepts uppercase digits and a leading '+'; share URLs never
	// emit either, and the time parser relies on case to disambiguate formats.
	if strings.ToLower(s) != s || strings.HasPrefix(s, "+") {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// EncodeTimeSeconds encodes a millisecond timestamp as whole seconds in
// base 36. Milliseconds are floored, so pre-1970 instants round toward the
// past rather than the future.
func EncodeTimeSeconds(ms int64) string {
	sec := ms / 1000
	if ms%1000 != 0 && ms < 0 {
		sec--
	}
	return strconv.FormatInt(sec, 36)
}

// DecodeTimeSeconds is the inverse of EncodeTimeSeconds, returning
// milliseconds.
func DecodeTimeSeconds(s string) (int64, bool) {
	sec, ok := DecodeInt36(s)
	if !ok {
		return 0, false
	}
	return sec * 1000, true
}

// ShortenFloat renders n with at most the given number of decimals, then
// strips trailing zeros and a trailing decimal point: 90.0 -> "90",
// 12.50 -> "12.5".
func ShortenFloat(n float64, decimals int) string {
	s := strconv.FormatFloat(n, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
