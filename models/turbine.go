package models

import (
	"sync"
)

// Turbine field defaults, in the map's normalized coordinate space.
const (
	DefaultHeight      = 0.08
	DefaultRotorRadius = 0.04
	DefaultPowerKW     = 3000
	DefaultYear        = 2000
)

// Turbine is a geolocated wind turbine. The static fields are set at load
// time and never change; the tier and camera distance are rewritten every
// frame by the pipeline.
type Turbine struct {
	ID uint32

	// Position on the xz ground plane.
	X float32
	Z float32

	// BaseHeight is the terrain elevation the tower stands on.
	BaseHeight  float32
	Height      float32
	RotorRadius float32

	PowerKW float32

	// Year the turbine went into operation. Drives the temporal filter.
	Year int

	// BladeAngle is the rotor phase in degrees, seeded per turbine so a
	// field does not spin in lockstep.
	BladeAngle float32

	mutex          sync.RWMutex
	lodOrdinal     int
	cameraDistance float32
}

// NewTurbine returns a turbine at (x, z) with the default dimensions,
// rating and year. Callers overwrite fields before handing the turbine to
// a scene.
func NewTurbine(x, z float32) *Turbine {
	return &Turbine{
		X:           x,
		Z:           z,
		Height:      DefaultHeight,
		RotorRadius: DefaultRotorRadius,
		PowerKW:     DefaultPowerKW,
		Year:        DefaultYear,
	}
}

// Position implements spatial.Point.
func (t *Turbine) Position() (x, z float32) {
	return t.X, t.Z
}

// SetFrameState records the tier ordinal and camera distance assigned this
// frame.
func (t *Turbine) SetFrameState(lodOrdinal int, cameraDistance float32) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.lodOrdinal = lodOrdinal
	t.cameraDistance = cameraDistance
}

// LODOrdinal returns the tier ordinal assigned by the latest frame.
func (t *Turbine) LODOrdinal() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.lodOrdinal
}

// CameraDistance returns the ground-plane camera distance measured by the
// latest frame.
func (t *Turbine) CameraDistance() float32 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.cameraDistance
}

// CullingSphere returns the bounding sphere used for frustum tests: center
// at half the tower height above the base, radius covering tower and rotor
// with some slack.
func (t *Turbine) CullingSphere() (x, y, z, radius float32) {
	r := t.Height
	if t.RotorRadius > r {
		r = t.RotorRadius
	}
	return t.X, t.BaseHeight + t.Height/2, t.Z, r * 1.2
}
