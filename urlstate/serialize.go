package urlstate

import (
	"math"
	"net/url"
	"strings"

	"github.com/antoine-paris/moontracker-sub002/compact"
	"github.com/antoine-paris/moontracker-sub002/geo"
	"github.com/antoine-paris/moontracker-sub002/model"
	"github.com/antoine-paris/moontracker-sub002/optics"
)

// LocationDirectory is the location-lookup surface the codec needs: resolve
// a directory id to a place, nothing more.
type LocationDirectory interface {
	Lookup(id string) (model.Location, bool)
}

// DeviceCatalog is the optics surface the parser needs.
type DeviceCatalog interface {
	// Resolve maps a device id onto the catalog, substituting the custom
	// sentinel for unknown ids.
	Resolve(id string) string
}

// BuildOptions configures BuildShareURL. Zero values fall back to a bare
// query string with no base URL.
type BuildOptions struct {
	// Locations decides whether a location id is serialized as a directory
	// key or as a geohash. Nil means no directory: always geohash.
	Locations LocationDirectory
	// BaseURL is prepended before '?'. Empty means query string only.
	BaseURL string
	// Hash is appended verbatim after the query string (e.g. "#view").
	Hash string
}

// BuildShareURL serializes a state snapshot into a shareable URL. Fields are
// emitted in a fixed order and independently: a degenerate value in one field
// never suppresses the others.
func BuildShareURL(st model.State, opts BuildOptions) string {
	var q queryBuilder

	// Location: directory ids are shortest; anything else rides as a geohash
	// plus, when non-UTC, its timezone. Raw lat/lng text is a read-only
	// legacy format and never emitted.
	if _, ok := lookupLocation(opts.Locations, st.Location.ID); ok {
		q.add("l", st.Location.ID)
	} else {
		lat := model.ClampLat(st.Location.Lat)
		lng := model.NormalizeLng(st.Location.Lng)
		q.add("g", geo.Encode(lat, lng, geo.DefaultPrecision))
		if st.Location.TimeZone != "" && st.Location.TimeZone != "UTC" {
			q.add("tz", st.Location.TimeZone)
		}
	}

	q.add("t", compact.EncodeTimeSeconds(st.WhenMs))
	q.add("F", compact.EncodeInt36(float64(model.FollowTargetIndex(st.Follow))))
	q.add("p", compact.EncodeInt36(float64(model.ProjectionModeIndex(st.Projection))))

	q.add("d", st.Optics.DeviceID)
	if st.Optics.DeviceID == optics.CustomDeviceID {
		if f35 := optics.FocalFromFovX(st.Optics.FovXDeg); f35 > 0 {
			q.add("f", compact.EncodeInt36(f35))
		}
		if st.Optics.LinkFov {
			q.add("k", "1")
		} else {
			q.add("x", compact.ShortenFloat(st.Optics.FovXDeg, 1))
			q.add("y", compact.ShortenFloat(st.Optics.FovYDeg, 1))
		}
	} else {
		q.add("z", st.Optics.ZoomID)
	}

	q.add("b", compact.EncodeInt36(float64(PackToggles(st.Toggles, st.PanelsVisible, st.Animating))))
	q.add("pl", EncodePlanetMask(st.Planets, model.PlanetIDs))

	// "s" keeps the historical whole-minutes encoding so old parsers still
	// read new links; "sf" carries milli-minutes whenever rounding would
	// lose precision (realtime is 1/60 min/s, which "s" alone collapses
	// to zero).
	q.add("s", compact.EncodeInt36(st.SpeedMinPerSec))
	if math.Round(st.SpeedMinPerSec) != st.SpeedMinPerSec {
		q.add("sf", compact.EncodeInt36(st.SpeedMinPerSec*1000))
	}

	return opts.BaseURL + "?" + q.String() + opts.Hash
}

func lookupLocation(dir LocationDirectory, id string) (model.Location, bool) {
	if dir == nil || id == "" {
		return model.Location{}, false
	}
	return dir.Lookup(id)
}

// queryBuilder assembles a query string preserving insertion order;
// url.Values.Encode would sort keys alphabetically.
type queryBuilder struct {
	pairs []string
}

func (q *queryBuilder) add(key, value string) {
	q.pairs = append(q.pairs, key+"="+url.QueryEscape(value))
}

func (q *queryBuilder) String() string {
	return strings.Join(q.pairs, "&")
}
