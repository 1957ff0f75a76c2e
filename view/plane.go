// Package view derives the camera's visibility volume and answers
// point/sphere/box visibility queries for the culling pipeline.
package view

import (
	"github.com/chewxy/math32"

	"github.com/CaelSnow/windkraft-gpu/spatial"
)

// Plane is a plane in 3D space satisfying ax + by + cz + d = 0. The normal
// (a, b, c) is near unit length after Normalized, which keeps signed
// distances directly comparable against sphere radii.
type Plane struct {
	A float32
	B float32
	C float32
	D float32
}

// Normalized scales the plane so its normal has unit length. A degenerate
// zero-length normal is returned unchanged, which makes the plane a
// permissive always-pass in visibility tests.
func (p Plane) Normalized() Plane {
	length := math32.Sqrt(p.A*p.A + p.B*p.B + p.C*p.C)
	if length > 0 {
		return Plane{
			A: p.A / length,
			B: p.B / length,
			C: p.C / length,
			D: p.D / length,
		}
	}
	return p
}

// DistanceToPoint returns the signed distance from the plane to (x, y, z).
// A non-negative distance means the point lies on the visible side.
func (p Plane) DistanceToPoint(x, y, z float32) float32 {
	return p.A*x + p.B*y + p.C*z + p.D
}

func planeFromNormalAndPoint(normal spatial.Vector3f, point spatial.Vector3f) Plane {
	return Plane{
		A: normal.X,
		B: normal.Y,
		C: normal.Z,
		D: -normal.Dot(point),
	}.Normalized()
}
