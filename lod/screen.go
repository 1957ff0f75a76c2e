package lod

import (
	"github.com/chewxy/math32"
)

// ScreenSelector picks a tier from an object's projected screen footprint
// instead of its raw distance. A feature that projects small on screen gets
// a coarse tier no matter how close it is, which matters when feature sizes
// vary.
type ScreenSelector struct {
	ScreenHeight int
	FOV          float32

	screenFactor float32
}

// NewScreenSelector precomputes the projection constant
// screenHeight / (2 * tan(fov/2)) for the given display.
func NewScreenSelector(screenHeight int, fov float32) *ScreenSelector {
	fovRad := fov * math32.Pi / 180

	return &ScreenSelector{
		ScreenHeight: screenHeight,
		FOV:          fov,
		screenFactor: float32(screenHeight) / (2 * math32.Tan(fovRad/2)),
	}
}

// ScreenSize returns the projected height in pixels of an object of the
// given world height at the given distance. At (near) zero distance the
// footprint is unbounded.
func (s *ScreenSelector) ScreenSize(objectHeight, distance float32) float32 {
	if distance < 0.001 {
		return math32.Inf(1)
	}
	return objectHeight * s.screenFactor / distance
}

// Select maps the projected footprint onto the manager's tier table:
// under 10px the coarsest billboard tier, under 25/50/100px progressively
// finer, full detail above. The result is clamped to the available tiers.
func (s *ScreenSelector) Select(objectHeight, distance float32, m *Manager) Level {
	size := s.ScreenSize(objectHeight, distance)

	var ordinal int
	switch {
	case size < 10:
		ordinal = 4
	case size < 25:
		ordinal = 3
	case size < 50:
		ordinal = 2
	case size < 100:
		ordinal = 1
	default:
		ordinal = 0
	}

	return m.Level(ordinal)
}
