package urlstate

import (
	"testing"
)

var eightPlanets = []string{"mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune", "pluto"}

func selection(ids []string, on ...string) map[string]bool {
	sel := make(map[string]bool, len(ids))
	for _, id := range ids {
		sel[id] = false
	}
	for _, id := range on {
		sel[id] = true
	}
	return sel
}

func TestEncodePlanetMask_Sentinels(t *testing.T) {
	if got := EncodePlanetMask(selection(eightPlanets, eightPlanets...), eightPlanets); got != "a" {
		t.Errorf("all selected: %q, want \"a\"", got)
	}
	if got := EncodePlanetMask(selection(eightPlanets), eightPlanets); got != "n" {
		t.Errorf("none selected: %q, want \"n\"", got)
	}
}

func TestDecodePlanetMask_Sentinels(t *testing.T) {
	all, ok := DecodePlanetMask("a", eightPlanets)
	if !ok {
		t.Fatal("decoding \"a\" failed")
	}
	for _, id := range eightPlanets {
		if !all[id] {
			t.Errorf("\"a\": planet %q not selected", id)
		}
	}

	none, ok := DecodePlanetMask("n", eightPlanets)
	if !ok {
		t.Fatal("decoding \"n\" failed")
	}
	for _, id := range eightPlanets {
		if none[id] {
			t.Errorf("\"n\": planet %q selected", id)
		}
	}
}

func TestPlanetMask_RoundTripSubsets(t *testing.T) {
	subsets := [][]string{
		{"mercury"},
		{"pluto"},
		{"venus", "mars"},
		{"mercury", "jupiter", "neptune"},
		eightPlanets[:7],
	}
	for _, on := range subsets {
		sel := selection(eightPlanets, on...)
		enc := EncodePlanetMask(sel, eightPlanets)
		got, ok := DecodePlanetMask(enc, eightPlanets)
		if !ok {
			t.Fatalf("decode(%q) failed", enc)
		}
		for _, id := range eightPlanets {
			if got[id] != sel[id] {
				t.Errorf("subset %v via %q: planet %q = %v, want %v", on, enc, id, got[id], sel[id])
			}
		}
	}
}

func TestDecodePlanetMask_WiderMaskThanList(t *testing.T) {
	// A mask written against a longer list: only the low bits that line up
	// with the current list apply, with no error.
	shorter := eightPlanets[:3]
	got, ok := DecodePlanetMask(EncodePlanetMask(selection(eightPlanets, "mercury", "pluto"), eightPlanets), shorter)
	if !ok {
		t.Fatal("decode against shorter list failed")
	}
	if !got["mercury"] || got["venus"] || got["mars"] {
		t.Errorf("got %v", got)
	}
}

func TestDecodePlanetMask_Garbage(t *testing.T) {
	for _, s := range []string{"", "!!", "-3", "A"} {
		if _, ok := DecodePlanetMask(s, eightPlanets); ok {
			t.Errorf("DecodePlanetMask(%q) unexpectedly succeeded", s)
		}
	}
}

func TestEncodePlanetMask_TruncatesLongList(t *testing.T) {
	long := make([]string, 40)
	for i := range long {
		long[i] = string(rune('a' + i%26))
	}
	sel := map[string]bool{long[0]: true}
	// Must not panic or shift past bit 30.
	enc := EncodePlanetMask(sel, long)
	if _, ok := DecodePlanetMask(enc, long); !ok {
		t.Errorf("truncated mask %q failed to decode", enc)
	}
}
