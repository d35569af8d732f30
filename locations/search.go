package locations

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/antoine-paris/moontracker-sub002/model"
)

// searchCacheSize bounds the query-result cache. Autocomplete retypes the
// same prefixes constantly, so even a small cache absorbs most lookups.
const searchCacheSize = 256

// searchIndex caches Search results per normalized query. Entries are
// dropped wholesale whenever the directory contents change.
type searchIndex struct {
	cache *lru.Cache[string, []model.Location]
}

func newSearchIndex() *searchIndex {
	c, err := lru.New[string, []model.Location](searchCacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &searchIndex{cache: c}
}

func (s *searchIndex) invalidate() {
	s.cache.Purge()
}

// Search returns up to limit places whose id or label starts with the query,
// case-insensitively, in directory order. An empty query matches nothing.
func (d *Directory) Search(query string, limit int) []model.Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	cacheKey := q
	if cached, ok := d.search.cache.Get(cacheKey); ok {
		return clipResults(cached, limit)
	}

	d.mu.RLock()
	var matches []model.Location
	for _, id := range d.order {
		loc := d.places[id]
		if strings.HasPrefix(strings.ToLower(loc.ID), q) ||
			strings.HasPrefix(strings.ToLower(loc.Label), q) {
			matches = append(matches, loc)
		}
	}
	d.mu.RUnlock()

	d.search.cache.Add(cacheKey, matches)
	return clipResults(matches, limit)
}

func clipResults(matches []model.Location, limit int) []model.Location {
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
