package model

import "strings"

// FollowTarget is the body or cardinal direction the view tracks.
type FollowTarget string

const (
	FollowSun     FollowTarget = "sun"
	FollowMoon    FollowTarget = "moon"
	FollowMercury FollowTarget = "mercury"
	FollowVenus   FollowTarget = "venus"
	FollowMars    FollowTarget = "mars"
	FollowJupiter FollowTarget = "jupiter"
	FollowSaturn  FollowTarget = "saturn"
	FollowUranus  FollowTarget = "uranus"
	FollowNeptune FollowTarget = "neptune"
	FollowNorth   FollowTarget = "north"
	FollowEast    FollowTarget = "east"
	FollowSouth   FollowTarget = "south"
	FollowWest    FollowTarget = "west"
)

// FollowTargets lists every follow target in wire order. Share URLs encode a
// follow target as its index in this slice, so the slice is append-only:
// reordering or removing entries silently changes the meaning of every link
// ever shared. New targets go at the end.
var FollowTargets = []FollowTarget{
	FollowSun,
	FollowMoon,
	FollowMercury,
	FollowVenus,
	FollowMars,
	FollowJupiter,
	FollowSaturn,
	FollowUranus,
	FollowNeptune,
	FollowNorth,
	FollowEast,
	FollowSouth,
	FollowWest,
}

// followAliases maps historical follow names from the original French UI to
// their targets. Only consulted on the legacy "follow" query key.
var followAliases = map[string]FollowTarget{
	"lune":    FollowMoon,
	"soleil":  FollowSun,
	"nord":    FollowNorth,
	"est":     FollowEast,
	"sud":     FollowSouth,
	"ouest":   FollowWest,
	"mercure": FollowMercury,
}

// FollowTargetByName resolves a follow target from a legacy name,
// case-insensitively, accepting historical aliases.
func FollowTargetByName(name string) (FollowTarget, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range FollowTargets {
		if string(f) == n {
			return f, true
		}
	}
	if f, ok := followAliases[n]; ok {
		return f, true
	}
	return "", false
}

// FollowTargetIndex returns the wire index of f, or 0 when f is unknown.
func FollowTargetIndex(f FollowTarget) int {
	for i, t := range FollowTargets {
		if t == f {
			return i
		}
	}
	return 0
}

// FollowTargetAt returns the follow target at a wire index, or ok=false when
// the index is out of range.
func FollowTargetAt(i int) (FollowTarget, bool) {
	if i < 0 || i >= len(FollowTargets) {
		return "", false
	}
	return FollowTargets[i], true
}

// ProjectionMode selects how the sky sphere is flattened onto the viewport.
type ProjectionMode string

const (
	ProjectionRectiPanini ProjectionMode = "recti-panini"
	ProjectionStereo      ProjectionMode = "stereo-centered"
	ProjectionOrtho       ProjectionMode = "orthographic"
	ProjectionCylindrical ProjectionMode = "cylindrical"
)

// ProjectionModes lists projections in wire order. Append-only, same contract
// as FollowTargets.
var ProjectionModes = []ProjectionMode{
	ProjectionRectiPanini,
	ProjectionStereo,
	ProjectionOrtho,
	ProjectionCylindrical,
}

// ProjectionModeByName resolves a projection from a legacy name,
// case-insensitively.
func ProjectionModeByName(name string) (ProjectionMode, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range ProjectionModes {
		if string(p) == n {
			return p, true
		}
	}
	return "", false
}

// ProjectionModeIndex returns the wire index of p, or 0 when p is unknown.
func ProjectionModeIndex(p ProjectionMode) int {
	for i, m := range ProjectionModes {
		if m == p {
			return i
		}
	}
	return 0
}

// ProjectionModeAt returns the projection at a wire index, or ok=false when
// the index is out of range.
func ProjectionModeAt(i int) (ProjectionMode, bool) {
	if i < 0 || i >= len(ProjectionModes) {
		return "", false
	}
	return ProjectionModes[i], true
}
