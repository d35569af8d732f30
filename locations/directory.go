// Package locations provides the place directory the share-URL codec
// resolves location ids against: a thread-safe store of known places loaded
// from CSV, with prefix search and synthesized entries for coordinates that
// have no directory key.
package locations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/antoine-paris/moontracker-sub002/geo"
	"github.com/antoine-paris/moontracker-sub002/model"
)

// ErrNotFound is returned when a directory id does not exist.
var ErrNotFound = errors.New("locations: not found")

// Synthesized-id prefixes. A location whose id carries one of these is not in
// the directory; its coordinates travel inside the id itself.
const (
	geohashIDPrefix = "g@"
	coordsIDPrefix  = "url@"
)

// Directory is an in-memory, thread-safe store of known places.
type Directory struct {
	mu     sync.RWMutex
	places map[string]model.Location
	order  []string

	search *searchIndex
	subs   []func(Event)
}

// EventType indicates what kind of change happened in the directory.
type EventType int

const (
	EventReloaded EventType = iota
)

// Event is emitted to subscribers when the directory changes.
type Event struct {
	Type  EventType
	Count int
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		places: make(map[string]model.Location),
		search: newSearchIndex(),
	}
}

// Add registers a place. It returns an error if the id already exists.
func (d *Directory) Add(loc model.Location) error {
	if loc.ID == "" {
		return fmt.Errorf("locations: place has empty id")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.places[loc.ID]; exists {
		return fmt.Errorf("locations: place with id %q already exists", loc.ID)
	}
	d.places[loc.ID] = loc
	d.order = append(d.order, loc.ID)
	d.search.invalidate()
	return nil
}

// Lookup resolves a directory id.
func (d *Directory) Lookup(id string) (model.Location, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	loc, ok := d.places[id]
	return loc, ok
}

// All returns places in insertion order.
func (d *Directory) All() []model.Location {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Location, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.places[id])
	}
	return out
}

// Len returns the number of places.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.places)
}

// Subscribe registers a callback invoked after every reload.
func (d *Directory) Subscribe(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

// LoadCSV replaces the directory contents from CSV rows of the form
// id,label,lat,lng,timezone. Blank lines and a header row are skipped; short
// or unparsable rows are dropped rather than aborting the load. It returns
// the number of places loaded.
func (d *Directory) LoadCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	places := make(map[string]model.Location)
	var order []string

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("locations: read csv: %w", err)
		}
		if len(rec) < 4 {
			continue
		}
		id := strings.TrimSpace(rec[0])
		if id == "" || id == "id" {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if errLat != nil || errLng != nil {
			continue
		}
		tz := "UTC"
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			tz = strings.TrimSpace(rec[4])
		}
		if _, dup := places[id]; dup {
			continue
		}
		places[id] = model.Location{
			ID:       id,
			Label:    strings.TrimSpace(rec[1]),
			Lat:      model.ClampLat(lat),
			Lng:      model.NormalizeLng(lng),
			TimeZone: tz,
		}
		order = append(order, id)
	}

	d.mu.Lock()
	d.places = places
	d.order = order
	d.search.invalidate()
	subs := append([]func(Event){}, d.subs...)
	d.mu.Unlock()

	ev := Event{Type: EventReloaded, Count: len(order)}
	for _, fn := range subs {
		fn(ev)
	}
	return len(order), nil
}

// FromGeohash builds a synthesized location from an already decoded geohash.
// The id keeps the hash so the location survives another serialization
// round trip unchanged.
func FromGeohash(hash string, lat, lng float64, timeZone string) model.Location {
	if timeZone == "" {
		timeZone = "UTC"
	}
	return model.Location{
		ID:       geohashIDPrefix + hash,
		Label:    formatCoords(lat, lng),
		Lat:      model.ClampLat(lat),
		Lng:      model.NormalizeLng(lng),
		TimeZone: timeZone,
	}
}

// Synthesize builds a geohash-keyed location from raw coordinates.
func Synthesize(lat, lng float64, timeZone string) model.Location {
	lat = model.ClampLat(lat)
	lng = model.NormalizeLng(lng)
	return FromGeohash(geo.Encode(lat, lng, geo.DefaultPrecision), lat, lng, timeZone)
}

// FromCoords builds a synthesized location from legacy raw-coordinate query
// parameters.
func FromCoords(lat, lng float64, timeZone, label string) model.Location {
	lat = model.ClampLat(lat)
	lng = model.NormalizeLng(lng)
	if timeZone == "" {
		timeZone = "UTC"
	}
	if label == "" {
		label = formatCoords(lat, lng)
	}
	return model.Location{
		ID:       fmt.Sprintf("%s%.4f,%.4f", coordsIDPrefix, lat, lng),
		Label:    label,
		Lat:      lat,
		Lng:      lng,
		TimeZone: timeZone,
	}
}

// IsSynthesized reports whether a location id carries its own coordinates
// rather than referencing the directory.
func IsSynthesized(id string) bool {
	return strings.HasPrefix(id, geohashIDPrefix) || strings.HasPrefix(id, coordsIDPrefix)
}

func formatCoords(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}
