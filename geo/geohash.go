// Package geo implements the geohash codec used to embed observer
// coordinates in share URLs: latitude/longitude pairs encoded into a short
// base-32 string by recursive spatial bisection.
package geo

import "fmt"

// DefaultPrecision is the character count used for share-URL geohashes.
// Changing it changes the meaning of every previously shared link, so it is
// fixed; a different precision would need its own query parameter.
const DefaultPrecision = 7

// base32 is the geohash alphabet. 'a', 'i', 'l', and 'o' are excluded to
// avoid confusion with digits.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

var base32Index [256]int8

func init() {
	for i := range base32Index {
		base32Index[i] = -1
	}
	for i := 0; i < len(base32); i++ {
		base32Index[base32[i]] = int8(i)
	}
}

// DecodeError reports a character outside the geohash alphabet.
type DecodeError struct {
	Hash string
	Pos  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("geo: invalid geohash character %q at position %d in %q", e.Hash[e.Pos], e.Pos, e.Hash)
}

// Encode converts a latitude/longitude pair into a geohash of the given
// precision. Each output character carries 5 bits, most significant first,
// alternating longitude (first) and latitude bisections.
func Encode(lat, lng float64, precision int) string {
	if precision <= 0 {
		precision = DefaultPrecision
	}

	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0

	hash := make([]byte, 0, precision)
	even := true
	bit := 0
	var ch int

	for len(hash) < precision {
		if even {
			mid := (minLng + maxLng) / 2
			if lng >= mid {
				ch |= 1 << (4 - bit)
				minLng = mid
			} else {
				maxLng = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if lat >= mid {
				ch |= 1 << (4 - bit)
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		even = !even
		bit++
		if bit == 5 {
			hash = append(hash, base32[ch])
			bit = 0
			ch = 0
		}
	}

	return string(hash)
}

// Decode recovers the center of the cell a geohash describes by replaying the
// binary subdivision. It returns a *DecodeError when hash contains a
// character outside the alphabet.
func Decode(hash string) (lat, lng float64, err error) {
	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0
	even := true

	for i := 0; i < len(hash); i++ {
		cd := base32Index[hash[i]]
		if cd < 0 {
			return 0, 0, &DecodeError{Hash: hash, Pos: i}
		}
		for j := 4; j >= 0; j-- {
			bit := (cd >> j) & 1
			if even {
				mid := (minLng + maxLng) / 2
				if bit == 1 {
					minLng = mid
				} else {
					maxLng = mid
				}
			} else {
				mid := (minLat + maxLat) / 2
				if bit == 1 {
					minLat = mid
				} else {
					maxLat = mid
				}
			}
			even = !even
		}
	}

	return (minLat + maxLat) / 2, (minLng + maxLng) / 2, nil
}
