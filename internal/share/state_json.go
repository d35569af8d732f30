// Package share is the HTTP surface over the URL codec: it resolves share
// links into state snapshots, mints permalinks from posted state, answers sky
// queries, and pushes permalink updates to websocket subscribers.
package share

import (
	"github.com/antoine-paris/moontracker-sub002/model"
)

// StatePayload is the JSON shape of a state snapshot on the API surface.
type StatePayload struct {
	WhenMs     int64           `json:"whenMs"`
	Location   LocationPayload `json:"location"`
	Follow     string          `json:"follow"`
	Projection string          `json:"projection"`
	Optics     OpticsPayload   `json:"optics"`

	Toggles       TogglesPayload `json:"toggles"`
	PanelsVisible bool           `json:"panelsVisible"`
	Animating     bool           `json:"animating"`

	// Planets lists the selected planet ids; absent ids are deselected.
	Planets []string `json:"planets"`

	SpeedMinPerSec float64 `json:"speedMinPerSec"`
}

type LocationPayload struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	TimeZone string  `json:"timeZone"`
}

type OpticsPayload struct {
	DeviceID string  `json:"deviceId"`
	ZoomID   string  `json:"zoomId,omitempty"`
	FovXDeg  float64 `json:"fovXDeg"`
	FovYDeg  float64 `json:"fovYDeg"`
	LinkFov  bool    `json:"linkFov"`
}

type TogglesPayload struct {
	Sun        bool `json:"sun"`
	Moon       bool `json:"moon"`
	Phase      bool `json:"phase"`
	Earthshine bool `json:"earthshine"`
	Earth      bool `json:"earth"`
	Atmosphere bool `json:"atmosphere"`
	Stars      bool `json:"stars"`
	Markers    bool `json:"markers"`
	Grid       bool `json:"grid"`
	SunCard    bool `json:"suncard"`
	MoonCard   bool `json:"mooncard"`
	Enlarge    bool `json:"enlarge"`
	Debug      bool `json:"debug"`
}

func PayloadFromState(st model.State) StatePayload {
	planets := make([]string, 0, len(st.Planets))
	for _, id := range model.PlanetIDs {
		if st.Planets[id] {
			planets = append(planets, id)
		}
	}

	return StatePayload{
		WhenMs: st.WhenMs,
		Location: LocationPayload{
			ID:       st.Location.ID,
			Label:    st.Location.Label,
			Lat:      st.Location.Lat,
			Lng:      st.Location.Lng,
			TimeZone: st.Location.TimeZone,
		},
		Follow:     string(st.Follow),
		Projection: string(st.Projection),
		Optics: OpticsPayload{
			DeviceID: st.Optics.DeviceID,
			ZoomID:   st.Optics.ZoomID,
			FovXDeg:  st.Optics.FovXDeg,
			FovYDeg:  st.Optics.FovYDeg,
			LinkFov:  st.Optics.LinkFov,
		},
		Toggles: TogglesPayload{
			Sun:        st.Toggles.Sun,
			Moon:       st.Toggles.Moon,
			Phase:      st.Toggles.Phase,
			Earthshine: st.Toggles.Earthshine,
			Earth:      st.Toggles.Earth,
			Atmosphere: st.Toggles.Atmosphere,
			Stars:      st.Toggles.Stars,
			Markers:    st.Toggles.Markers,
			Grid:       st.Toggles.Grid,
			SunCard:    st.Toggles.SunCard,
			MoonCard:   st.Toggles.MoonCard,
			Enlarge:    st.Toggles.Enlarge,
			Debug:      st.Toggles.Debug,
		},
		PanelsVisible:  st.PanelsVisible,
		Animating:      st.Animating,
		Planets:        planets,
		SpeedMinPerSec: st.SpeedMinPerSec,
	}
}

// ToState converts a payload back to a model snapshot. Unknown follow and
// projection names fall back to the defaults, matching the URL parser.
func (p StatePayload) ToState() model.State {
	follow, ok := model.FollowTargetByName(p.Follow)
	if !ok {
		follow = model.FollowMoon
	}
	projection, ok := model.ProjectionModeByName(p.Projection)
	if !ok {
		projection = model.ProjectionRectiPanini
	}

	planets := make(map[string]bool, len(p.Planets))
	for _, id := range p.Planets {
		planets[id] = true
	}

	return model.State{
		WhenMs: p.WhenMs,
		Location: model.Location{
			ID:       p.Location.ID,
			Label:    p.Location.Label,
			Lat:      model.ClampLat(p.Location.Lat),
			Lng:      model.NormalizeLng(p.Location.Lng),
			TimeZone: p.Location.TimeZone,
		},
		Follow:     follow,
		Projection: projection,
		Optics: model.OpticsSelection{
			DeviceID: p.Optics.DeviceID,
			ZoomID:   p.Optics.ZoomID,
			FovXDeg:  p.Optics.FovXDeg,
			FovYDeg:  p.Optics.FovYDeg,
			LinkFov:  p.Optics.LinkFov,
		},
		Toggles: model.ToggleSet{
			Sun:        p.Toggles.Sun,
			Moon:       p.Toggles.Moon,
			Phase:      p.Toggles.Phase,
			Earthshine: p.Toggles.Earthshine,
			Earth:      p.Toggles.Earth,
			Atmosphere: p.Toggles.Atmosphere,
			Stars:      p.Toggles.Stars,
			Markers:    p.Toggles.Markers,
			Grid:       p.Toggles.Grid,
			SunCard:    p.Toggles.SunCard,
			MoonCard:   p.Toggles.MoonCard,
			Enlarge:    p.Toggles.Enlarge,
			Debug:      p.Toggles.Debug,
		},
		PanelsVisible:  p.PanelsVisible,
		Animating:      p.Animating,
		Planets:        planets,
		SpeedMinPerSec: p.SpeedMinPerSec,
	}
}
