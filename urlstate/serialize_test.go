package urlstate

import (
	"net/url"
	"strings"
	"testing"

	"github.com/antoine-paris/moontracker-sub002/compact"
	"github.com/antoine-paris/moontracker-sub002/geo"
	"github.com/antoine-paris/moontracker-sub002/model"
	"github.com/antoine-paris/moontracker-sub002/optics"
)

type fakeDirectory map[string]model.Location

func (d fakeDirectory) Lookup(id string) (model.Location, bool) {
	loc, ok := d[id]
	return loc, ok
}

type fakeCatalog map[string]bool

func (c fakeCatalog) Resolve(id string) string {
	if c[id] {
		return id
	}
	return optics.CustomDeviceID
}

var testDirectory = fakeDirectory{
	"paris": {ID: "paris", Label: "Paris", Lat: 48.8566, Lng: 2.3522, TimeZone: "Europe/Paris"},
	"tokyo": {ID: "tokyo", Label: "Tokyo", Lat: 35.6762, Lng: 139.6503, TimeZone: "Asia/Tokyo"},
}

var testCatalog = fakeCatalog{"eye": true, "dslr": true}

func queryOf(t *testing.T, shareURL string) url.Values {
	t.Helper()
	u, err := url.Parse(shareURL)
	if err != nil {
		t.Fatalf("parse %q: %v", shareURL, err)
	}
	return u.Query()
}

func baseState() model.State {
	st := model.Default()
	st.WhenMs = 1700000000000
	st.SpeedMinPerSec = 1
	return st
}

func TestBuildShareURL_DirectoryLocationUsesID(t *testing.T) {
	st := baseState()
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if got := q.Get("l"); got != "paris" {
		t.Errorf("l = %q, want \"paris\"", got)
	}
	if q.Has("g") || q.Has("tz") {
		t.Error("directory location must not emit g/tz")
	}
}

func TestBuildShareURL_UnknownLocationUsesGeohash(t *testing.T) {
	st := baseState()
	st.Location = model.Location{ID: "g@u09tvw0", Lat: 48.8566, Lng: 2.3522, TimeZone: "Europe/Paris"}
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))

	if q.Has("l") {
		t.Error("unknown location emitted l")
	}
	hash := q.Get("g")
	if len(hash) != geo.DefaultPrecision {
		t.Fatalf("g = %q, want %d chars", hash, geo.DefaultPrecision)
	}
	lat, lng, err := geo.Decode(hash)
	if err != nil {
		t.Fatalf("Decode(%q): %v", hash, err)
	}
	if diff := lat - 48.8566; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("geohash lat off by %v", diff)
	}
	if diff := lng - 2.3522; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("geohash lng off by %v", diff)
	}
	if got := q.Get("tz"); got != "Europe/Paris" {
		t.Errorf("tz = %q", got)
	}
}

func TestBuildShareURL_UTCTimezoneOmitted(t *testing.T) {
	st := baseState()
	st.Location = model.Location{ID: "somewhere", Lat: 0, Lng: 0, TimeZone: "UTC"}
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if q.Has("tz") {
		t.Error("UTC timezone must not be emitted")
	}
}

func TestBuildShareURL_TimeRoundTripsToWholeSeconds(t *testing.T) {
	st := baseState()
	st.WhenMs = 1700000000000
	st.Follow = model.FollowMoon
	st.Projection = model.ProjectionRectiPanini
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))

	ms, ok := compact.DecodeTimeSeconds(q.Get("t"))
	if !ok {
		t.Fatalf("t = %q does not decode", q.Get("t"))
	}
	if ms != 1700000000000 {
		t.Errorf("t decodes to %d, want 1700000000000", ms)
	}
}

func TestBuildShareURL_FollowAndProjectionIndices(t *testing.T) {
	st := baseState()
	st.Follow = model.FollowMars
	st.Projection = model.ProjectionOrtho
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if got := q.Get("F"); got != "4" {
		t.Errorf("F = %q, want \"4\"", got)
	}
	if got := q.Get("p"); got != "2" {
		t.Errorf("p = %q, want \"2\"", got)
	}
}

func TestBuildShareURL_UnknownFollowClampsToZero(t *testing.T) {
	st := baseState()
	st.Follow = model.FollowTarget("nonesuch")
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if got := q.Get("F"); got != "0" {
		t.Errorf("F = %q, want \"0\"", got)
	}
}

func TestBuildShareURL_CatalogDeviceEmitsZoom(t *testing.T) {
	st := baseState()
	st.Optics = model.OpticsSelection{DeviceID: "dslr", ZoomID: "dslr-200"}
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if got := q.Get("d"); got != "dslr" {
		t.Errorf("d = %q", got)
	}
	if got := q.Get("z"); got != "dslr-200" {
		t.Errorf("z = %q", got)
	}
	for _, key := range []string{"f", "x", "y", "k"} {
		if q.Has(key) {
			t.Errorf("catalog device emitted %q", key)
		}
	}
}

func TestBuildShareURL_CustomDeviceEmitsFocalAndFov(t *testing.T) {
	st := baseState()
	st.Optics = model.OpticsSelection{
		DeviceID: optics.CustomDeviceID,
		FovXDeg:  39.6,
		FovYDeg:  27.0,
	}
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))

	if got := q.Get("d"); got != optics.CustomDeviceID {
		t.Errorf("d = %q", got)
	}
	// 39.6 degrees horizontal is a 50mm-equivalent.
	f, ok := compact.DecodeInt36(q.Get("f"))
	if !ok || f != 50 {
		t.Errorf("f = %q (decoded %d), want 50", q.Get("f"), f)
	}
	if got := q.Get("x"); got != "39.6" {
		t.Errorf("x = %q, want \"39.6\"", got)
	}
	if got := q.Get("y"); got != "27" {
		t.Errorf("y = %q, want \"27\"", got)
	}
	if q.Has("k") || q.Has("z") {
		t.Error("unlinked custom device must emit x/y, not k or z")
	}
}

func TestBuildShareURL_CustomDeviceLinkedFov(t *testing.T) {
	st := baseState()
	st.Optics = model.OpticsSelection{
		DeviceID: optics.CustomDeviceID,
		FovXDeg:  39.6,
		FovYDeg:  27.0,
		LinkFov:  true,
	}
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if got := q.Get("k"); got != "1" {
		t.Errorf("k = %q, want \"1\"", got)
	}
	if q.Has("x") || q.Has("y") {
		t.Error("linked FOV must not emit x/y")
	}
}

func TestBuildShareURL_WideFovOmitsFocal(t *testing.T) {
	st := baseState()
	st.Optics = model.OpticsSelection{DeviceID: optics.CustomDeviceID, FovXDeg: 200, FovYDeg: 120}
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if q.Has("f") {
		t.Errorf("f = %q emitted for a 200 degree FOV", q.Get("f"))
	}
}

func TestBuildShareURL_SpeedCompanionKey(t *testing.T) {
	st := baseState()
	st.SpeedMinPerSec = 1.0 / 60.0 // realtime; "s" alone would collapse to 0
	q := queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if got := q.Get("s"); got != "0" {
		t.Errorf("s = %q, want \"0\"", got)
	}
	milli, ok := compact.DecodeInt36(q.Get("sf"))
	if !ok || milli != 17 {
		t.Errorf("sf = %q (decoded %d), want 17 milli-min/s", q.Get("sf"), milli)
	}

	st.SpeedMinPerSec = 5
	q = queryOf(t, BuildShareURL(st, BuildOptions{Locations: testDirectory}))
	if q.Has("sf") {
		t.Error("whole-number speed must not emit sf")
	}
}

func TestBuildShareURL_BaseURLAndHash(t *testing.T) {
	st := baseState()
	u := BuildShareURL(st, BuildOptions{
		Locations: testDirectory,
		BaseURL:   "https://example.org/view",
		Hash:      "#sky",
	})
	if !strings.HasPrefix(u, "https://example.org/view?") {
		t.Errorf("missing base url: %q", u)
	}
	if !strings.HasSuffix(u, "#sky") {
		t.Errorf("missing hash: %q", u)
	}
}

func TestBuildShareURL_FieldOrder(t *testing.T) {
	st := baseState()
	st.SpeedMinPerSec = 0.5
	u := BuildShareURL(st, BuildOptions{Locations: testDirectory})
	qs := strings.TrimPrefix(u, "?")
	var keys []string
	for _, pair := range strings.Split(qs, "&") {
		keys = append(keys, strings.SplitN(pair, "=", 2)[0])
	}
	want := []string{"l", "t", "F", "p", "d", "z", "b", "pl", "s", "sf"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
