package urlstate

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/antoine-paris/moontracker-sub002/compact"
	"github.com/antoine-paris/moontracker-sub002/geo"
	"github.com/antoine-paris/moontracker-sub002/locations"
	"github.com/antoine-paris/moontracker-sub002/model"
	"github.com/antoine-paris/moontracker-sub002/optics"
)

// Setters receives decoded fields. Every resolved field invokes exactly one
// setter, synchronously; fields with no resolvable source invoke nothing,
// preserving the caller's defaults. Nil setters are skipped.
type Setters struct {
	WhenMs        func(int64)
	Location      func(model.Location)
	Follow        func(model.FollowTarget)
	Projection    func(model.ProjectionMode)
	Device        func(id string)
	Zoom          func(id string)
	Fov           func(xDeg, yDeg float64)
	LinkFov       func(bool)
	Toggle        func(bit ToggleBit, on bool)
	PanelsVisible func(bool)
	Animating     func(bool)
	Planets       func(map[string]bool)
	Speed         func(minPerSec float64)
}

// Observer receives codec diagnostics: compact keys that failed to decode
// and legacy keys that were consulted. Both hooks are optional.
type Observer interface {
	DecodeFailure(field string)
	LegacyKey(key string)
}

// ParseOptions supplies the collaborators the parser resolves ids against.
type ParseOptions struct {
	Locations LocationDirectory
	Devices   DeviceCatalog
	// PlanetIDs overrides the planet list the selection mask is decoded
	// against; nil means model.PlanetIDs.
	PlanetIDs []string
	// Observer, when non-nil, receives decode diagnostics.
	Observer Observer
}

// ParseQuery decodes a share-URL query into state via the provided setters.
// Each field tries its compact key first, then one or more legacy keys from
// earlier link generations. Malformed values are local: a bad field is
// skipped, the rest still parse.
func ParseQuery(q url.Values, opts ParseOptions, set Setters) {
	obs := opts.Observer
	if obs == nil {
		obs = noopObserver{}
	}
	ids := opts.PlanetIDs
	if ids == nil {
		ids = model.PlanetIDs
	}

	parseTime(q, obs, set)
	parseLocation(q, opts.Locations, obs, set)
	parseFollow(q, obs, set)
	parseProjection(q, obs, set)
	parseOptics(q, opts.Devices, obs, set)
	parseToggles(q, obs, set)
	parsePlanets(q, ids, obs, set)
	parseSpeed(q, obs, set)
}

// ParseURL is a convenience wrapper over ParseQuery for a full share URL.
func ParseURL(raw string, opts ParseOptions, set Setters) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	ParseQuery(u.Query(), opts, set)
	return nil
}

// ---- time ----

// The "t" key has carried three formats over the app's life: compact base-36
// seconds, ISO-8601, and raw decimal milliseconds. Heuristic: a short
// alphanumeric token is base-36; anything with '-' or ':' is a date; a long
// all-digit run is milliseconds (base-36 would never be that long).
func parseTime(q url.Values, obs Observer, set Setters) {
	s, ok := get(q, "t")
	if !ok || set.WhenMs == nil {
		return
	}

	if base36TimeCandidate(s) {
		if ms, ok := compact.DecodeTimeSeconds(s); ok {
			set.WhenMs(ms)
			return
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			set.WhenMs(ts.UnixMilli())
			return
		}
	}

	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		set.WhenMs(int64(ms))
		return
	}

	obs.DecodeFailure("t")
}

func base36TimeCandidate(s string) bool {
	if s == "" {
		return false
	}
	allDigits := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
			allDigits = false
		default:
			return false
		}
	}
	// 10+ pure digits is a millisecond timestamp, not base-36.
	if allDigits && len(s) >= 10 {
		return false
	}
	return true
}

// ---- location ----

// Fallback chain: "l" directory id, "g" geohash (+"tz"), legacy "lat"+"lng"
// (+"tz", +"label"). The first branch that fully resolves wins; branches are
// never merged.
func parseLocation(q url.Values, dir LocationDirectory, obs Observer, set Setters) {
	if set.Location == nil {
		return
	}

	if id, ok := get(q, "l"); ok {
		if dir != nil {
			if loc, found := dir.Lookup(id); found {
				set.Location(loc)
				return
			}
		}
		obs.DecodeFailure("l")
		// Unknown id: fall through, the link may also carry coordinates.
	}

	if hash, ok := get(q, "g"); ok {
		lat, lng, err := geo.Decode(hash)
		if err != nil {
			obs.DecodeFailure("g")
		} else {
			tz, _ := get(q, "tz")
			set.Location(locations.FromGeohash(hash, lat, lng, tz))
			return
		}
	}

	latStr, latOK := get(q, "lat")
	lngStr, lngOK := get(q, "lng")
	if latOK && lngOK {
		obs.LegacyKey("lat")
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			obs.DecodeFailure("lat")
			return
		}
		tz, _ := get(q, "tz")
		label, _ := get(q, "label")
		set.Location(locations.FromCoords(lat, lng, tz, label))
	}
}

// ---- follow / projection ----

func parseFollow(q url.Values, obs Observer, set Setters) {
	if set.Follow == nil {
		return
	}

	if s, ok := get(q, "F"); ok {
		if idx, decoded := compact.DecodeInt36(s); decoded {
			if f, inRange := model.FollowTargetAt(int(idx)); inRange {
				set.Follow(f)
			} else {
				// Index from a newer app version; default rather than error.
				set.Follow(model.FollowMoon)
			}
			return
		}
		obs.DecodeFailure("F")
	}

	if name, ok := get(q, "follow"); ok {
		obs.LegacyKey("follow")
		if f, valid := model.FollowTargetByName(name); valid {
			set.Follow(f)
		} else {
			set.Follow(model.FollowMoon)
		}
	}
}

func parseProjection(q url.Values, obs Observer, set Setters) {
	if set.Projection == nil {
		return
	}

	if s, ok := get(q, "p"); ok {
		if idx, decoded := compact.DecodeInt36(s); decoded {
			if p, inRange := model.ProjectionModeAt(int(idx)); inRange {
				set.Projection(p)
			} else {
				set.Projection(model.ProjectionRectiPanini)
			}
			return
		}
		obs.DecodeFailure("p")
	}

	if name, ok := get(q, "proj"); ok {
		obs.LegacyKey("proj")
		if p, valid := model.ProjectionModeByName(name); valid {
			set.Projection(p)
		} else {
			set.Projection(model.ProjectionRectiPanini)
		}
	}
}

// ---- optics ----

// parseOptics resolves the device/zoom/FOV family. "f" has meant
// 35mm-equivalent focal length in every link generation; the compact path
// writes it base-36, the legacy read path also accepts plain decimal.
func parseOptics(q url.Values, devices DeviceCatalog, obs Observer, set Setters) {
	deviceID, devOK := firstKey(q, obs, "d", "device")
	zoomID, zoomOK := firstKey(q, obs, "z", "zoom")
	focal, focalOK := parseFocal(q, obs)
	fovX, fovXOK := firstFloat(q, obs, "x", "fovx")
	fovY, fovYOK := firstFloat(q, obs, "y", "fovy")
	link, linkOK := firstKey(q, obs, "k", "link")

	if devOK {
		if devices != nil {
			deviceID = devices.Resolve(deviceID)
		}
		if set.Device != nil {
			set.Device(deviceID)
		}
	}

	custom := devOK && deviceID == optics.CustomDeviceID
	if custom {
		switch {
		case focalOK && focal > 0:
			if set.Fov != nil {
				set.Fov(optics.FovXFromFocal(focal), optics.FovYFromFocal(focal))
			}
		case fovXOK && fovYOK:
			if set.Fov != nil {
				set.Fov(fovX, fovY)
			}
		}
		// Neither focal nor explicit FOV: leave the view as it was.
	} else if zoomOK && set.Zoom != nil {
		set.Zoom(zoomID)
	}

	if linkOK && set.LinkFov != nil {
		set.LinkFov(parseBoolish(link))
	}
}

func parseFocal(q url.Values, obs Observer) (float64, bool) {
	s, ok := get(q, "f")
	if !ok {
		return 0, false
	}
	if n, decoded := compact.DecodeInt36(s); decoded {
		return float64(n), true
	}
	// Pre-compact links wrote the same key as plain decimal.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		obs.LegacyKey("f")
		return f, true
	}
	obs.DecodeFailure("f")
	return 0, false
}

// ---- toggles ----

func parseToggles(q url.Values, obs Observer, set Setters) {
	if s, ok := get(q, "b"); ok {
		if mask, decoded := compact.DecodeInt36(s); decoded && mask >= 0 {
			toggles, panels, animating := UnpackToggles(uint(mask))
			if set.Toggle != nil {
				for bit := ToggleBit(0); bit < BitPanels; bit++ {
					set.Toggle(bit, toggleValue(toggles, panels, animating, bit))
				}
			}
			if set.PanelsVisible != nil {
				set.PanelsVisible(panels)
			}
			if set.Animating != nil {
				set.Animating(animating)
			}
			return
		}
		obs.DecodeFailure("b")
	}

	// First-generation links spelled every flag out; each present key is
	// applied independently, absent ones keep their defaults.
	if set.Toggle != nil {
		for bit := ToggleBit(0); bit < BitPanels; bit++ {
			key := legacyToggleKeys[bit]
			if v, ok := get(q, key); ok {
				obs.LegacyKey(key)
				set.Toggle(bit, parseBoolish(v))
			}
		}
	}
	if v, ok := get(q, "panels"); ok && set.PanelsVisible != nil {
		obs.LegacyKey("panels")
		set.PanelsVisible(parseBoolish(v))
	}
	if v, ok := get(q, "play"); ok && set.Animating != nil {
		obs.LegacyKey("play")
		set.Animating(parseBoolish(v))
	}
}

// ---- planets ----

func parsePlanets(q url.Values, ids []string, obs Observer, set Setters) {
	if set.Planets == nil {
		return
	}

	if s, ok := get(q, "pl"); ok {
		if sel, decoded := DecodePlanetMask(s, ids); decoded {
			set.Planets(sel)
			return
		}
		obs.DecodeFailure("pl")
	}

	if s, ok := get(q, "planets"); ok {
		obs.LegacyKey("planets")
		sel := make(map[string]bool, len(ids))
		switch strings.ToLower(s) {
		case "all":
			for _, id := range ids {
				sel[id] = true
			}
		case "none":
			for _, id := range ids {
				sel[id] = false
			}
		default:
			wanted := make(map[string]bool)
			for _, part := range strings.Split(s, ",") {
				wanted[strings.ToLower(strings.TrimSpace(part))] = true
			}
			for _, id := range ids {
				sel[id] = wanted[id]
			}
		}
		set.Planets(sel)
	}
}

// ---- speed ----

// Precedence sf > s > spd: "sf" is milli-minutes and exact, "s" the lossy
// whole-minutes original, "spd" the verbose decimal of the first generation.
func parseSpeed(q url.Values, obs Observer, set Setters) {
	if set.Speed == nil {
		return
	}

	if s, ok := get(q, "sf"); ok {
		if n, decoded := compact.DecodeInt36(s); decoded {
			set.Speed(float64(n) / 1000)
			return
		}
		obs.DecodeFailure("sf")
	}

	if s, ok := get(q, "s"); ok {
		if n, decoded := compact.DecodeInt36(s); decoded {
			set.Speed(float64(n))
			return
		}
		obs.DecodeFailure("s")
	}

	if s, ok := get(q, "spd"); ok {
		obs.LegacyKey("spd")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			set.Speed(f)
		} else {
			obs.DecodeFailure("spd")
		}
	}
}

// ---- helpers ----

func get(q url.Values, key string) (string, bool) {
	if vs, ok := q[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

// firstKey tries the compact key, then the legacy key, recording legacy use.
func firstKey(q url.Values, obs Observer, compactKey, legacyKey string) (string, bool) {
	if v, ok := get(q, compactKey); ok {
		return v, true
	}
	if v, ok := get(q, legacyKey); ok {
		obs.LegacyKey(legacyKey)
		return v, true
	}
	return "", false
}

func firstFloat(q url.Values, obs Observer, compactKey, legacyKey string) (float64, bool) {
	s, ok := firstKey(q, obs, compactKey, legacyKey)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		obs.DecodeFailure(compactKey)
		return 0, false
	}
	return f, true
}

// parseBoolish accepts the historical spellings of true; anything else,
// including an empty value, is false.
func parseBoolish(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

type noopObserver struct{}

func (noopObserver) DecodeFailure(string) {}
func (noopObserver) LegacyKey(string)     {}
