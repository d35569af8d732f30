package model

import "math"

// Location identifies the observer's place on Earth. ID is either a key into
// the location directory, or a synthesized key carrying its own coordinates:
// "g@<geohash>" for geohash-born locations, "url@<lat>,<lng>" for locations
// restored from legacy coordinate links.
type Location struct {
	ID       string
	Label    string
	Lat      float64 // degrees, clamped to [-90, 90]
	Lng      float64 // degrees, normalized to (-180, 180]
	TimeZone string  // IANA name, e.g. "Europe/Paris"
}

// OpticsSelection describes the virtual camera. When DeviceID is the custom
// sentinel, FovXDeg/FovYDeg are authoritative; otherwise ZoomID selects the
// field of view from the device catalog.
type OpticsSelection struct {
	DeviceID string
	ZoomID   string
	FovXDeg  float64
	FovYDeg  float64
	LinkFov  bool
}

// ToggleSet holds the visibility toggles of the sky view. The zero value has
// everything off.
type ToggleSet struct {
	Sun        bool
	Moon       bool
	Phase      bool
	Earthshine bool
	Earth      bool
	Atmosphere bool
	Stars      bool
	Markers    bool
	Grid       bool
	SunCard    bool
	MoonCard   bool
	Enlarge    bool
	Debug      bool
}

// State is the serialized subset of the viewer's application state. The UI
// layer owns the full state; share URLs round-trip exactly these fields.
type State struct {
	WhenMs     int64 // simulation time, Unix milliseconds UTC
	Location   Location
	Follow     FollowTarget
	Projection ProjectionMode
	Optics     OpticsSelection

	Toggles       ToggleSet
	PanelsVisible bool
	Animating     bool

	// Planets maps ids from PlanetIDs to visibility. Ids absent from the map
	// count as not selected.
	Planets map[string]bool

	// SpeedMinPerSec is simulated minutes per wall-clock second. Negative
	// values play backwards.
	SpeedMinPerSec float64
}

// PlanetIDs is the ordered list of selectable planets. Order defines the bit
// position of each planet in the share-URL selection mask, so the list is
// append-only.
var PlanetIDs = []string{
	"mercury",
	"venus",
	"mars",
	"jupiter",
	"saturn",
	"uranus",
	"neptune",
	"pluto",
}

// Default returns the state a fresh viewer session starts from: Paris, the
// Moon followed, realtime playback, the main bodies visible.
func Default() State {
	planets := make(map[string]bool, len(PlanetIDs))
	for _, id := range PlanetIDs {
		planets[id] = true
	}
	return State{
		WhenMs: 0,
		Location: Location{
			ID:       "paris",
			Label:    "Paris",
			Lat:      48.8566,
			Lng:      2.3522,
			TimeZone: "Europe/Paris",
		},
		Follow:     FollowMoon,
		Projection: ProjectionRectiPanini,
		Optics: OpticsSelection{
			DeviceID: "eye",
			ZoomID:   "eye-normal",
			FovXDeg:  60,
			FovYDeg:  42,
		},
		Toggles: ToggleSet{
			Sun:        true,
			Moon:       true,
			Phase:      true,
			Earthshine: true,
			Atmosphere: true,
			Stars:      true,
		},
		PanelsVisible:  true,
		Planets:        planets,
		SpeedMinPerSec: 1.0 / 60.0, // realtime
	}
}

// ClampLat bounds a latitude to [-90, 90].
func ClampLat(deg float64) float64 {
	if deg < -90 {
		return -90
	}
	if deg > 90 {
		return 90
	}
	return deg
}

// NormalizeLng maps a longitude into (-180, 180], with exactly -180 landing
// on +180.
func NormalizeLng(deg float64) float64 {
	n := math.Mod(deg+180, 360)
	if n < 0 {
		n += 360
	}
	n -= 180
	if n == -180 {
		return 180
	}
	return n
}
