package geo

import (
	"errors"
	"math"
	"testing"
)

// Cell half-widths at precision 7: longitude gets 18 bits, latitude 17.
const (
	lngTol7 = 360.0 / (1 << 18) / 2
	latTol7 = 180.0 / (1 << 17) / 2
)

func TestEncodeDecode_RoundTripGrid(t *testing.T) {
	for lat := -90.0; lat <= 90.0; lat += 7.3 {
		for lng := -180.0; lng <= 180.0; lng += 11.7 {
			h := Encode(lat, lng, 7)
			if len(h) != 7 {
				t.Fatalf("Encode(%v, %v, 7) = %q, want 7 chars", lat, lng, h)
			}
			gotLat, gotLng, err := Decode(h)
			if err != nil {
				t.Fatalf("Decode(%q): %v", h, err)
			}
			if math.Abs(gotLat-lat) > latTol7 {
				t.Errorf("lat %v -> %q -> %v, off by %v", lat, h, gotLat, gotLat-lat)
			}
			// +180 wraps into the same cell edge as -180; skip the seam.
			if lng < 180 && math.Abs(gotLng-lng) > lngTol7 {
				t.Errorf("lng %v -> %q -> %v, off by %v", lng, h, gotLng, gotLng-lng)
			}
		}
	}
}

func TestEncode_KnownValue(t *testing.T) {
	// Paris, the reference point for the share-URL location tests.
	h := Encode(48.8566, 2.3522, 7)
	lat, lng, err := Decode(h)
	if err != nil {
		t.Fatalf("Decode(%q): %v", h, err)
	}
	if math.Abs(lat-48.8566) > latTol7 || math.Abs(lng-2.3522) > lngTol7 {
		t.Errorf("Paris round trip via %q: got (%v, %v)", h, lat, lng)
	}
}

func TestEncode_DefaultPrecision(t *testing.T) {
	if h := Encode(0, 0, 0); len(h) != DefaultPrecision {
		t.Errorf("Encode with precision 0 produced %d chars, want %d", len(h), DefaultPrecision)
	}
}

func TestEncode_HigherPrecisionSharesPrefix(t *testing.T) {
	short := Encode(48.8566, 2.3522, 7)
	long := Encode(48.8566, 2.3522, 10)
	if long[:7] != short {
		t.Errorf("precision 10 hash %q does not extend precision 7 hash %q", long, short)
	}
}

func TestDecode_InvalidCharacter(t *testing.T) {
	for _, bad := range []string{"u09tuna", "ABCDEFG", "u09 un0", "u09il00"} {
		_, _, err := Decode(bad)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("Decode(%q) = %v, want *DecodeError", bad, err)
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	lat, lng, err := Decode("")
	if err != nil {
		t.Fatalf("Decode(\"\"): %v", err)
	}
	if lat != 0 || lng != 0 {
		t.Errorf("Decode(\"\") = (%v, %v), want world center", lat, lng)
	}
}
