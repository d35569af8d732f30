// Package optics models the virtual camera catalog: devices (eye, cameras,
// binoculars, telescopes) with their zoom positions, plus the 35mm-equivalent
// focal length math used to carry a custom field of view through share URLs.
package optics

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"
)

// CustomDeviceID is the reserved device id meaning "explicit field-of-view
// sliders instead of a catalog lens."
const CustomDeviceID = "custom"

// Reference 35mm full-frame sensor dimensions, millimetres.
const (
	frameWidthMM  = 36.0
	frameHeightMM = 24.0
)

// Zoom is one focal position of a device.
type Zoom struct {
	ID      string
	Label   string
	FocalMM float64
	FovXDeg float64
	FovYDeg float64
}

// Device is a catalog entry: a named optic with one or more zoom positions.
type Device struct {
	ID    string
	Label string
	Zooms []Zoom
}

// Catalog is a thread-safe device directory.
type Catalog struct {
	mu      sync.RWMutex
	devices map[string]Device
	order   []string
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{devices: make(map[string]Device)}
}

// Add registers a device. It returns an error if the ID already exists or
// collides with the custom sentinel.
func (c *Catalog) Add(d Device) error {
	if d.ID == "" {
		return fmt.Errorf("optics: device has empty id")
	}
	if d.ID == CustomDeviceID {
		return fmt.Errorf("optics: device id %q is reserved", CustomDeviceID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.devices[d.ID]; exists {
		return fmt.Errorf("optics: device with id %q already exists", d.ID)
	}
	c.devices[d.ID] = d
	c.order = append(c.order, d.ID)
	return nil
}

// Device looks up a catalog entry by id.
func (c *Catalog) Device(id string) (Device, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.devices[id]
	return d, ok
}

// Zoom looks up a zoom position on a device.
func (c *Catalog) Zoom(deviceID, zoomID string) (Zoom, bool) {
	d, ok := c.Device(deviceID)
	if !ok {
		return Zoom{}, false
	}
	for _, z := range d.Zooms {
		if z.ID == zoomID {
			return z, true
		}
	}
	return Zoom{}, false
}

// Resolve maps a device id from a share URL onto the catalog. Unknown ids
// become the custom sentinel so a link referencing a retired device still
// opens with its encoded field of view.
func (c *Catalog) Resolve(id string) string {
	if id == CustomDeviceID {
		return CustomDeviceID
	}
	if _, ok := c.Device(id); ok {
		return id
	}
	return CustomDeviceID
}

// Devices returns catalog entries in registration order.
func (c *Catalog) Devices() []Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Device, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.devices[id])
	}
	return out
}

// Len returns the number of registered devices.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.devices)
}

// internal JSON shapes - unexported so the file format can evolve freely.
type catalogJSON struct {
	Devices []deviceJSON `json:"devices"`
}

type deviceJSON struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Zooms []zoomJSON `json:"zooms"`
}

type zoomJSON struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	FocalMM float64 `json:"focal_mm"`
	FovXDeg float64 `json:"fov_x_deg"`
	FovYDeg float64 `json:"fov_y_deg"`
}

// LoadJSON reads a device catalog from JSON. Zoom positions missing an
// explicit field of view derive it from their focal length.
func LoadJSON(r io.Reader) (*Catalog, error) {
	var raw catalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("optics: decode catalog: %w", err)
	}

	c := NewCatalog()
	for _, dj := range raw.Devices {
		d := Device{ID: dj.ID, Label: dj.Label}
		for _, zj := range dj.Zooms {
			z := Zoom{
				ID:      zj.ID,
				Label:   zj.Label,
				FocalMM: zj.FocalMM,
				FovXDeg: zj.FovXDeg,
				FovYDeg: zj.FovYDeg,
			}
			if z.FovXDeg == 0 && z.FocalMM > 0 {
				z.FovXDeg = FovXFromFocal(z.FocalMM)
				z.FovYDeg = FovYFromFocal(z.FocalMM)
			}
			d.Zooms = append(d.Zooms, z)
		}
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FocalFromFovX converts a horizontal field of view into a 35mm-equivalent
// focal length. It returns 0 when the field of view is degenerate (<= 0 or
// >= 180 degrees), where no finite positive focal exists.
func FocalFromFovX(fovXDeg float64) float64 {
	if fovXDeg <= 0 || fovXDeg >= 180 {
		return 0
	}
	t := math.Tan(fovXDeg * math.Pi / 360)
	if t <= 0 {
		return 0
	}
	return frameWidthMM / (2 * t)
}

// FovXFromFocal is the inverse of FocalFromFovX, degrees.
func FovXFromFocal(f35 float64) float64 {
	if f35 <= 0 {
		return 0
	}
	return 2 * math.Atan(frameWidthMM/(2*f35)) * 180 / math.Pi
}

// FovYFromFocal returns the vertical field of view of a 35mm-equivalent
// focal length, degrees.
func FovYFromFocal(f35 float64) float64 {
	if f35 <= 0 {
		return 0
	}
	return 2 * math.Atan(frameHeightMM/(2*f35)) * 180 / math.Pi
}
