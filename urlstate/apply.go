package urlstate

import "github.com/antoine-paris/moontracker-sub002/model"

// StateSetters returns setters that write every decoded field straight into
// st. Callers that need finer-grained side effects wire their own Setters;
// this covers the common "decode into a snapshot" case.
func StateSetters(st *model.State) Setters {
	return Setters{
		WhenMs:     func(ms int64) { st.WhenMs = ms },
		Location:   func(loc model.Location) { st.Location = loc },
		Follow:     func(f model.FollowTarget) { st.Follow = f },
		Projection: func(p model.ProjectionMode) { st.Projection = p },
		Device:     func(id string) { st.Optics.DeviceID = id },
		Zoom:       func(id string) { st.Optics.ZoomID = id },
		Fov: func(x, y float64) {
			st.Optics.FovXDeg = x
			st.Optics.FovYDeg = y
		},
		LinkFov:       func(on bool) { st.Optics.LinkFov = on },
		Toggle:        func(bit ToggleBit, on bool) { ApplyToggle(&st.Toggles, bit, on) },
		PanelsVisible: func(on bool) { st.PanelsVisible = on },
		Animating:     func(on bool) { st.Animating = on },
		Planets:       func(sel map[string]bool) { st.Planets = sel },
		Speed:         func(v float64) { st.SpeedMinPerSec = v },
	}
}
