package astro

import (
	"math"
	"time"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi

	auKm = 149597870.7

	// J2000.0 epoch as a Julian day.
	j2000 = 2451545.0
)

// julianDay converts an instant to a Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.UnixMilli())/86400000.0 + 2440587.5
}

// julianCenturies is the time since J2000.0 in Julian centuries.
func julianCenturies(jd float64) float64 {
	return (jd - j2000) / 36525.0
}

// wrapDeg normalizes an angle into [0, 360).
func wrapDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// meanObliquity of the ecliptic, degrees.
func meanObliquity(tc float64) float64 {
	return 23.4392911 - 0.0130042*tc
}

// eclipticToEquatorial converts ecliptic longitude/latitude (degrees) to
// right ascension and declination (degrees) for the given obliquity.
func eclipticToEquatorial(lonDeg, latDeg, oblDeg float64) (raDeg, decDeg float64) {
	lon := lonDeg * deg2rad
	lat := latDeg * deg2rad
	obl := oblDeg * deg2rad

	sinDec := math.Sin(lat)*math.Cos(obl) + math.Cos(lat)*math.Sin(obl)*math.Sin(lon)
	dec := math.Asin(sinDec)

	y := math.Sin(lon)*math.Cos(obl) - math.Tan(lat)*math.Sin(obl)
	ra := math.Atan2(y, math.Cos(lon))

	return wrapDeg(ra * rad2deg), dec * rad2deg
}

// greenwichSiderealDeg is the Greenwich mean sidereal time in degrees.
func greenwichSiderealDeg(jd float64) float64 {
	return wrapDeg(280.46061837 + 360.98564736629*(jd-j2000))
}

// equatorialToHorizontal converts RA/Dec (degrees) to azimuth/altitude for
// an observer. Azimuth is measured from north through east.
func equatorialToHorizontal(raDeg, decDeg, jd float64, obs Observer) SkyPosition {
	lstDeg := wrapDeg(greenwichSiderealDeg(jd) + obs.LngDeg)
	haDeg := wrapDeg(lstDeg - raDeg)

	ha := haDeg * deg2rad
	dec := decDeg * deg2rad
	lat := obs.LatDeg * deg2rad

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(sinAlt)

	y := -math.Sin(ha) * math.Cos(dec)
	x := math.Sin(dec)*math.Cos(lat) - math.Cos(dec)*math.Sin(lat)*math.Cos(ha)
	az := math.Atan2(y, x)

	return SkyPosition{
		AzDeg:  wrapDeg(az * rad2deg),
		AltDeg: alt * rad2deg,
	}
}

// angularSeparationDeg between two RA/Dec directions, degrees.
func angularSeparationDeg(ra1, dec1, ra2, dec2 float64) float64 {
	a1 := ra1 * deg2rad
	d1 := dec1 * deg2rad
	a2 := ra2 * deg2rad
	d2 := dec2 * deg2rad

	cosSep := math.Sin(d1)*math.Sin(d2) + math.Cos(d1)*math.Cos(d2)*math.Cos(a1-a2)
	if cosSep > 1 {
		cosSep = 1
	} else if cosSep < -1 {
		cosSep = -1
	}
	return math.Acos(cosSep) * rad2deg
}
