// Package urlstate implements the share-URL codec: a compact, backward
// compatible serialization of viewer state into a query string and back.
// Serialization is pure; parsing reports decoded fields through caller
// provided setters and never fails as a whole, degrading malformed fields to
// "absent, keep the default."
package urlstate

import "github.com/antoine-paris/moontracker-sub002/model"

// ToggleBit is the fixed bit position of a boolean flag inside the packed
// "b" query parameter. Positions are a wire contract: old links depend on
// them, so bits are never renumbered, only added past the current maximum.
type ToggleBit int

const (
	BitSun ToggleBit = iota
	BitMoon
	BitPhase
	BitEarthshine
	BitEarth
	BitAtmosphere
	BitStars
	BitMarkers
	BitGrid
	BitSunCard
	BitMoonCard
	BitEnlarge
	BitDebug
	BitPanels
	BitAnimating

	numToggleBits
)

// legacyToggleKeys maps visibility bits to the verbose per-flag query keys of
// first-generation share links. BitPanels and BitAnimating use their own
// legacy keys ("panels", "play") and are absent here.
var legacyToggleKeys = map[ToggleBit]string{
	BitSun:        "sun",
	BitMoon:       "moon",
	BitPhase:      "phase",
	BitEarthshine: "earthshine",
	BitEarth:      "earth",
	BitAtmosphere: "atmosphere",
	BitStars:      "stars",
	BitMarkers:    "markers",
	BitGrid:       "grid",
	BitSunCard:    "suncard",
	BitMoonCard:   "mooncard",
	BitEnlarge:    "enlarge",
	BitDebug:      "debug",
}

// PackToggles folds the toggle set plus the panel-visibility and animation
// flags into one integer, 1<<bit per true flag.
func PackToggles(t model.ToggleSet, panelsVisible, animating bool) uint {
	var mask uint
	for bit := ToggleBit(0); bit < numToggleBits; bit++ {
		if toggleValue(t, panelsVisible, animating, bit) {
			mask |= 1 << bit
		}
	}
	return mask
}

// UnpackToggles is the inverse of PackToggles. Bits past the known range are
// ignored, so decoders keep working when newer encoders add flags.
func UnpackToggles(mask uint) (t model.ToggleSet, panelsVisible, animating bool) {
	apply := func(bit ToggleBit) bool { return mask&(1<<bit) != 0 }
	t.Sun = apply(BitSun)
	t.Moon = apply(BitMoon)
	t.Phase = apply(BitPhase)
	t.Earthshine = apply(BitEarthshine)
	t.Earth = apply(BitEarth)
	t.Atmosphere = apply(BitAtmosphere)
	t.Stars = apply(BitStars)
	t.Markers = apply(BitMarkers)
	t.Grid = apply(BitGrid)
	t.SunCard = apply(BitSunCard)
	t.MoonCard = apply(BitMoonCard)
	t.Enlarge = apply(BitEnlarge)
	t.Debug = apply(BitDebug)
	return t, apply(BitPanels), apply(BitAnimating)
}

// ApplyToggle sets the flag a bit addresses on a toggle set. Panel and
// animation bits are not part of the set and are ignored; callers handle
// those through their own setters.
func ApplyToggle(t *model.ToggleSet, bit ToggleBit, on bool) {
	switch bit {
	case BitSun:
		t.Sun = on
	case BitMoon:
		t.Moon = on
	case BitPhase:
		t.Phase = on
	case BitEarthshine:
		t.Earthshine = on
	case BitEarth:
		t.Earth = on
	case BitAtmosphere:
		t.Atmosphere = on
	case BitStars:
		t.Stars = on
	case BitMarkers:
		t.Markers = on
	case BitGrid:
		t.Grid = on
	case BitSunCard:
		t.SunCard = on
	case BitMoonCard:
		t.MoonCard = on
	case BitEnlarge:
		t.Enlarge = on
	case BitDebug:
		t.Debug = on
	}
}

func toggleValue(t model.ToggleSet, panelsVisible, animating bool, bit ToggleBit) bool {
	switch bit {
	case BitSun:
		return t.Sun
	case BitMoon:
		return t.Moon
	case BitPhase:
		return t.Phase
	case BitEarthshine:
		return t.Earthshine
	case BitEarth:
		return t.Earth
	case BitAtmosphere:
		return t.Atmosphere
	case BitStars:
		return t.Stars
	case BitMarkers:
		return t.Markers
	case BitGrid:
		return t.Grid
	case BitSunCard:
		return t.SunCard
	case BitMoonCard:
		return t.MoonCard
	case BitEnlarge:
		return t.Enlarge
	case BitDebug:
		return t.Debug
	case BitPanels:
		return panelsVisible
	case BitAnimating:
		return animating
	}
	return false
}
