package astro

import (
	"context"
	"math"
	"time"
)

// Ephemeris is the built-in low-precision provider. It is stateless and
// safe for concurrent use.
type Ephemeris struct{}

// NewEphemeris returns the built-in provider.
func NewEphemeris() *Ephemeris {
	return &Ephemeris{}
}

// Body implements Provider.
func (e *Ephemeris) Body(_ context.Context, body Body, t time.Time, obs Observer) (BodyState, error) {
	jd := julianDay(t)
	tc := julianCenturies(jd)

	switch body {
	case BodySun:
		return sunState(jd, tc, obs), nil
	case BodyMoon:
		return moonState(jd, tc, obs), nil
	default:
		el, ok := planetElements[body]
		if !ok {
			return BodyState{}, &ErrUnknownBody{Body: body}
		}
		return planetState(el, jd, tc, obs), nil
	}
}

// sunEcliptic returns the Sun's geocentric ecliptic longitude (degrees) and
// distance (AU).
func sunEcliptic(tc float64) (lonDeg, distAU float64) {
	l0 := wrapDeg(280.46646 + 36000.76983*tc)
	m := wrapDeg(357.52911 + 35999.05029*tc)
	mr := m * deg2rad

	c := (1.914602-0.004817*tc)*math.Sin(mr) +
		0.019993*math.Sin(2*mr) +
		0.000289*math.Sin(3*mr)

	ecc := 0.016708634 - 0.000042037*tc
	nu := (m + c) * deg2rad
	dist := 1.000001018 * (1 - ecc*ecc) / (1 + ecc*math.Cos(nu))

	return wrapDeg(l0 + c), dist
}

func sunState(jd, tc float64, obs Observer) BodyState {
	lon, dist := sunEcliptic(tc)
	ra, dec := eclipticToEquatorial(lon, 0, meanObliquity(tc))

	return BodyState{
		SkyPosition:         equatorialToHorizontal(ra, dec, jd, obs),
		RADeg:               ra,
		DecDeg:              dec,
		DistanceKm:          dist * auKm,
		IlluminatedFraction: 1,
		PhaseAngleDeg:       0,
	}
}

// moonEcliptic returns the Moon's geocentric ecliptic longitude and latitude
// (degrees) and distance (km), from the leading series terms.
func moonEcliptic(tc float64) (lonDeg, latDeg, distKm float64) {
	lp := wrapDeg(218.3164477 + 481267.88123421*tc) // mean longitude
	d := wrapDeg(297.8501921+445267.1114034*tc) * deg2rad
	ms := wrapDeg(357.5291092+35999.0502909*tc) * deg2rad  // sun mean anomaly
	mm := wrapDeg(134.9633964+477198.8675055*tc) * deg2rad // moon mean anomaly
	f := wrapDeg(93.2720950+483202.0175233*tc) * deg2rad   // argument of latitude

	lon := lp +
		6.288774*math.Sin(mm) +
		1.274027*math.Sin(2*d-mm) +
		0.658314*math.Sin(2*d) +
		0.213618*math.Sin(2*mm) -
		0.185116*math.Sin(ms) -
		0.114332*math.Sin(2*f) +
		0.058793*math.Sin(2*d-2*mm) +
		0.057066*math.Sin(2*d-ms-mm) +
		0.053322*math.Sin(2*d+mm) +
		0.045758*math.Sin(2*d-ms)

	lat := 5.128122*math.Sin(f) +
		0.280602*math.Sin(mm+f) +
		0.277693*math.Sin(mm-f) +
		0.173237*math.Sin(2*d-f)

	dist := 385000.56 -
		20905.355*math.Cos(mm) -
		3699.111*math.Cos(2*d-mm) -
		2955.968*math.Cos(2*d) -
		569.925*math.Cos(2*mm)

	return wrapDeg(lon), lat, dist
}

func moonState(jd, tc float64, obs Observer) BodyState {
	lon, lat, dist := moonEcliptic(tc)
	obl := meanObliquity(tc)
	ra, dec := eclipticToEquatorial(lon, lat, obl)

	sunLon, sunDist := sunEcliptic(tc)
	sunRA, sunDec := eclipticToEquatorial(sunLon, 0, obl)

	// Elongation between Sun and Moon as seen from Earth, then the phase
	// angle at the Moon via the triangle Sun-Moon-Earth.
	elong := angularSeparationDeg(sunRA, sunDec, ra, dec) * deg2rad
	sunKm := sunDist * auKm
	phase := math.Atan2(sunKm*math.Sin(elong), dist-sunKm*math.Cos(elong))
	frac := (1 + math.Cos(phase)) / 2

	return BodyState{
		SkyPosition:         equatorialToHorizontal(ra, dec, jd, obs),
		RADeg:               ra,
		DecDeg:              dec,
		DistanceKm:          dist,
		IlluminatedFraction: frac,
		PhaseAngleDeg:       wrapDeg(phase * rad2deg),
	}
}

// elements are mean Keplerian orbital elements at J2000 plus linear rates
// per Julian century, valid roughly 1800-2050.
type elements struct {
	a, aRate   float64 // semi-major axis, AU
	e, eRate   float64 // eccentricity
	i, iRate   float64 // inclination, deg
	l, lRate   float64 // mean longitude, deg
	lp, lpRate float64 // longitude of perihelion, deg
	o, oRate   float64 // longitude of ascending node, deg
}

var planetElements = map[Body]elements{
	BodyMercury: {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	BodyVenus: {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	BodyMars: {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	BodyJupiter: {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	BodySaturn: {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	BodyUranus: {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	BodyNeptune: {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	BodyPluto: {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818,
		238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// earthElements are the EM barycenter elements used to shift heliocentric
// planet positions to geocentric.
var earthElements = elements{1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
	100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0.0, 0.0}

// heliocentric returns the rectangular ecliptic coordinates (AU) of a body
// from its mean elements at tc centuries past J2000.
func heliocentric(el elements, tc float64) (x, y, z float64) {
	a := el.a + el.aRate*tc
	e := el.e + el.eRate*tc
	i := (el.i + el.iRate*tc) * deg2rad
	l := wrapDeg(el.l + el.lRate*tc)
	lp := el.lp + el.lpRate*tc
	o := el.o + el.oRate*tc

	w := (lp - o) * deg2rad // argument of perihelion
	or := o * deg2rad
	m := wrapDeg(l-lp) * deg2rad

	// Kepler's equation by fixed-point iteration, plenty for these
	// eccentricities.
	ea := m
	for it := 0; it < 10; it++ {
		ea = m + e*math.Sin(ea)
	}

	xo := a * (math.Cos(ea) - e)
	yo := a * math.Sqrt(1-e*e) * math.Sin(ea)

	x = (math.Cos(w)*math.Cos(or)-math.Sin(w)*math.Sin(or)*math.Cos(i))*xo +
		(-math.Sin(w)*math.Cos(or)-math.Cos(w)*math.Sin(or)*math.Cos(i))*yo
	y = (math.Cos(w)*math.Sin(or)+math.Sin(w)*math.Cos(or)*math.Cos(i))*xo +
		(-math.Sin(w)*math.Sin(or)+math.Cos(w)*math.Cos(or)*math.Cos(i))*yo
	z = math.Sin(w)*math.Sin(i)*xo + math.Cos(w)*math.Sin(i)*yo
	return x, y, z
}

func planetState(el elements, jd, tc float64, obs Observer) BodyState {
	px, py, pz := heliocentric(el, tc)
	ex, ey, ez := heliocentric(earthElements, tc)

	gx, gy, gz := px-ex, py-ey, pz-ez
	geoDist := math.Sqrt(gx*gx + gy*gy + gz*gz)
	sunDist := math.Sqrt(px*px + py*py + pz*pz)
	earthDist := math.Sqrt(ex*ex + ey*ey + ez*ez)

	lon := wrapDeg(math.Atan2(gy, gx) * rad2deg)
	lat := math.Asin(gz/geoDist) * rad2deg
	ra, dec := eclipticToEquatorial(lon, lat, meanObliquity(tc))

	// Phase angle from the Sun-planet-Earth triangle.
	cosPhase := (sunDist*sunDist + geoDist*geoDist - earthDist*earthDist) /
		(2 * sunDist * geoDist)
	if cosPhase > 1 {
		cosPhase = 1
	} else if cosPhase < -1 {
		cosPhase = -1
	}
	phase := math.Acos(cosPhase)

	return BodyState{
		SkyPosition:         equatorialToHorizontal(ra, dec, jd, obs),
		RADeg:               ra,
		DecDeg:              dec,
		DistanceKm:          geoDist * auKm,
		IlluminatedFraction: (1 + math.Cos(phase)) / 2,
		PhaseAngleDeg:       phase * rad2deg,
	}
}
