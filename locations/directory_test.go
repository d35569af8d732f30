package locations

import (
	"strings"
	"testing"

	"github.com/antoine-paris/moontracker-sub002/model"
)

const csvFixture = `id,label,lat,lng,timezone
paris,Paris,48.8566,2.3522,Europe/Paris
tokyo,Tokyo,35.6762,139.6503,Asia/Tokyo
quito,Quito,-0.1807,-78.4678,America/Guayaquil

nulltz,Null Island,0,0
badrow,Broken,notanumber,12
`

func loadFixture(t *testing.T) *Directory {
	t.Helper()
	d := NewDirectory()
	n, err := d.LoadCSV(strings.NewReader(csvFixture))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if n != 4 {
		t.Fatalf("loaded %d places, want 4 (header, blank and bad rows skipped)", n)
	}
	return d
}

func TestLoadCSV_LookupAndDefaults(t *testing.T) {
	d := loadFixture(t)

	loc, ok := d.Lookup("paris")
	if !ok {
		t.Fatal("paris not found")
	}
	if loc.Label != "Paris" || loc.TimeZone != "Europe/Paris" {
		t.Errorf("paris = %+v", loc)
	}

	// Missing timezone column defaults to UTC.
	loc, ok = d.Lookup("nulltz")
	if !ok {
		t.Fatal("nulltz not found")
	}
	if loc.TimeZone != "UTC" {
		t.Errorf("nulltz TimeZone = %q, want UTC", loc.TimeZone)
	}

	if _, ok := d.Lookup("badrow"); ok {
		t.Error("unparsable row was loaded")
	}
}

func TestLoadCSV_ReplacesContents(t *testing.T) {
	d := loadFixture(t)
	n, err := d.LoadCSV(strings.NewReader("oslo,Oslo,59.9139,10.7522,Europe/Oslo\n"))
	if err != nil {
		t.Fatalf("second LoadCSV: %v", err)
	}
	if n != 1 || d.Len() != 1 {
		t.Errorf("after reload: n=%d len=%d, want 1/1", n, d.Len())
	}
	if _, ok := d.Lookup("paris"); ok {
		t.Error("old contents survived reload")
	}
}

func TestLoadCSV_NotifiesSubscribers(t *testing.T) {
	d := NewDirectory()
	var events []Event
	d.Subscribe(func(ev Event) { events = append(events, ev) })

	if _, err := d.LoadCSV(strings.NewReader(csvFixture)); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != EventReloaded || events[0].Count != 4 {
		t.Errorf("events = %+v", events)
	}
}

func TestLoadCSV_SubscribersRunOutsideLock(t *testing.T) {
	d := NewDirectory()
	var seen int
	d.Subscribe(func(Event) {
		// Re-entering the directory from the callback must not deadlock.
		seen = d.Len()
	})

	if _, err := d.LoadCSV(strings.NewReader(csvFixture)); err != nil {
		t.Fatal(err)
	}
	if seen != 4 {
		t.Errorf("Len from subscriber = %d, want 4", seen)
	}
}

func TestSearch_PrefixAndLimit(t *testing.T) {
	d := loadFixture(t)

	got := d.Search("pa", 10)
	if len(got) != 1 || got[0].ID != "paris" {
		t.Errorf("Search(pa) = %+v", got)
	}

	// Case-insensitive, matches labels too.
	got = d.Search("TOK", 10)
	if len(got) != 1 || got[0].ID != "tokyo" {
		t.Errorf("Search(TOK) = %+v", got)
	}

	if got = d.Search("", 10); got != nil {
		t.Errorf("empty query returned %+v", got)
	}

	all := d.Search("n", 1)
	if len(all) > 1 {
		t.Errorf("limit not applied: %d results", len(all))
	}
}

func TestSearch_CacheInvalidatedOnReload(t *testing.T) {
	d := loadFixture(t)
	if got := d.Search("paris", 10); len(got) != 1 {
		t.Fatalf("Search(paris) = %+v", got)
	}

	if _, err := d.LoadCSV(strings.NewReader("lyon,Lyon,45.764,4.8357,Europe/Paris\n")); err != nil {
		t.Fatal(err)
	}
	if got := d.Search("paris", 10); len(got) != 0 {
		t.Errorf("stale cached result after reload: %+v", got)
	}
	if got := d.Search("ly", 10); len(got) != 1 || got[0].ID != "lyon" {
		t.Errorf("Search(ly) after reload = %+v", got)
	}
}

func TestAdd_Duplicate(t *testing.T) {
	d := NewDirectory()
	loc := model.Location{ID: "x", Lat: 1, Lng: 2, TimeZone: "UTC"}
	if err := d.Add(loc); err != nil {
		t.Fatal(err)
	}
	if err := d.Add(loc); err == nil {
		t.Error("duplicate Add succeeded")
	}
}

func TestSynthesizedLocations(t *testing.T) {
	loc := Synthesize(48.8566, 2.3522, "Europe/Paris")
	if !IsSynthesized(loc.ID) {
		t.Errorf("Synthesize id %q not recognized as synthesized", loc.ID)
	}
	if !strings.HasPrefix(loc.ID, "g@") {
		t.Errorf("id = %q, want g@ prefix", loc.ID)
	}

	legacy := FromCoords(91.5, -190, "", "")
	if legacy.Lat != 90 {
		t.Errorf("FromCoords lat = %v, want clamped 90", legacy.Lat)
	}
	if legacy.Lng != 170 {
		t.Errorf("FromCoords lng = %v, want normalized 170", legacy.Lng)
	}
	if legacy.TimeZone != "UTC" {
		t.Errorf("FromCoords tz = %q, want UTC default", legacy.TimeZone)
	}
	if !strings.HasPrefix(legacy.ID, "url@") {
		t.Errorf("id = %q, want url@ prefix", legacy.ID)
	}
	if legacy.Label == "" {
		t.Error("FromCoords label empty, want formatted coordinates")
	}

	if IsSynthesized("paris") {
		t.Error("directory id reported as synthesized")
	}
}
