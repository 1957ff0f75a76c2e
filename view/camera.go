package view

import (
	"github.com/chewxy/math32"

	"github.com/CaelSnow/windkraft-gpu/spatial"
)

// Camera is the orbital camera the viewer drives: it circles a fixed look-at
// origin at a distance controlled by zoom, tilted by RotX and turned by RotY
// (both in degrees).
type Camera struct {
	RotX   float32
	RotY   float32
	Zoom   float32
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultCamera mirrors the viewer's startup pose over the map.
func DefaultCamera() Camera {
	return Camera{
		RotX:   35,
		RotY:   0,
		Zoom:   2,
		FOV:    45,
		Aspect: 16.0 / 9.0,
		Near:   0.1,
		Far:    100,
	}
}

// Eye returns the camera position in world space.
func (c Camera) Eye() spatial.Vector3f {
	radX := radians(c.RotX)
	radY := radians(c.RotY)

	return spatial.Vector3f{
		X: c.Zoom * math32.Sin(radY) * math32.Cos(radX),
		Y: c.Zoom * math32.Sin(radX),
		Z: c.Zoom * math32.Cos(radY) * math32.Cos(radX),
	}
}

// Forward returns the unit vector from the eye toward the look-at origin.
// A camera sitting exactly on the origin looks down negative z.
func (c Camera) Forward() spatial.Vector3f {
	eye := c.Eye()
	if eye.Length() == 0 {
		return spatial.Vector3f{X: 0, Y: 0, Z: -1}
	}
	return spatial.Normalized(spatial.Mul(eye, -1))
}

// GroundPosition projects the eye onto the xz plane, which is the reference
// point for LOD distances.
func (c Camera) GroundPosition() spatial.Vector3f {
	eye := c.Eye()
	return spatial.Vector3f{X: eye.X, Y: 0, Z: eye.Z}
}

func radians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}
