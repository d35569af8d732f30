package urlstate

import (
	"github.com/antoine-paris/moontracker-sub002/compact"
)

// Sentinels for the common all/none planet selections; shorter than any mask.
const (
	planetsAll  = "a"
	planetsNone = "n"
)

// maxPlanetBits caps the mask width; ids past the limit are silently
// truncated rather than rejected so an oversized directory degrades instead
// of breaking every link.
const maxPlanetBits = 31

// EncodePlanetMask renders a planet selection against an ordered id list.
// All-selected and none-selected collapse to the "a"/"n" sentinels;
// otherwise bit i of a base-36 mask corresponds to ids[i].
func EncodePlanetMask(selected map[string]bool, ids []string) string {
	if len(ids) > maxPlanetBits {
		ids = ids[:maxPlanetBits]
	}

	var mask uint
	count := 0
	for i, id := range ids {
		if selected[id] {
			mask |= 1 << i
			count++
		}
	}

	switch count {
	case len(ids):
		return planetsAll
	case 0:
		return planetsNone
	}
	return compact.EncodeInt36(float64(mask))
}

// DecodePlanetMask parses a planet selection against the current id list.
// ok is false only when the value is neither a sentinel nor a base-36 mask.
// A mask wider than the list keeps only the low bits that line up with it:
// the list may have grown or shrunk since the link was created.
func DecodePlanetMask(s string, ids []string) (map[string]bool, bool) {
	if len(ids) > maxPlanetBits {
		ids = ids[:maxPlanetBits]
	}

	out := make(map[string]bool, len(ids))
	switch s {
	case planetsAll:
		for _, id := range ids {
			out[id] = true
		}
		return out, true
	case planetsNone:
		for _, id := range ids {
			out[id] = false
		}
		return out, true
	}

	mask, ok := compact.DecodeInt36(s)
	if !ok || mask < 0 {
		return nil, false
	}
	for i, id := range ids {
		out[id] = mask&(1<<i) != 0
	}
	return out, true
}
