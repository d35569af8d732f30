// Package astro is the astronomy-provider boundary: given an instant and an
// observer, it answers where the Sun, Moon, and planets sit in the sky and
// how lit the Moon is. The built-in Ephemeris is a low-precision (~0.5
// degree) implementation good enough for framing a view; callers needing
// arcsecond accuracy plug in their own Provider.
package astro

import (
	"context"
	"fmt"
	"time"
)

// Body identifies a celestial body the provider can locate.
type Body string

const (
	BodySun     Body = "sun"
	BodyMoon    Body = "moon"
	BodyMercury Body = "mercury"
	BodyVenus   Body = "venus"
	BodyMars    Body = "mars"
	BodyJupiter Body = "jupiter"
	BodySaturn  Body = "saturn"
	BodyUranus  Body = "uranus"
	BodyNeptune Body = "neptune"
	BodyPluto   Body = "pluto"
)

// Bodies lists every body the built-in ephemeris handles.
var Bodies = []Body{
	BodySun, BodyMoon,
	BodyMercury, BodyVenus, BodyMars, BodyJupiter,
	BodySaturn, BodyUranus, BodyNeptune, BodyPluto,
}

// Observer is a ground-based viewpoint.
type Observer struct {
	LatDeg float64 // north positive
	LngDeg float64 // east positive
}

// SkyPosition is a horizontal (observer-relative) position.
type SkyPosition struct {
	AzDeg  float64 // 0 = north, 90 = east
	AltDeg float64 // 0 = horizon, 90 = zenith
}

// BodyState is everything the viewer needs to draw a body.
type BodyState struct {
	SkyPosition

	RADeg  float64 // right ascension, J2000-ish equinox of date
	DecDeg float64 // declination

	DistanceKm float64

	// IlluminatedFraction is the lit fraction of the visible disc, [0, 1].
	// Always 1 for the Sun.
	IlluminatedFraction float64
	// PhaseAngleDeg is the Sun-body-Earth angle, degrees.
	PhaseAngleDeg float64
}

// Provider computes body positions for an observer at an instant.
type Provider interface {
	Body(ctx context.Context, body Body, t time.Time, obs Observer) (BodyState, error)
}

// ErrUnknownBody wraps requests for bodies a provider cannot compute.
type ErrUnknownBody struct {
	Body Body
}

func (e *ErrUnknownBody) Error() string {
	return fmt.Sprintf("astro: unknown body %q", e.Body)
}
