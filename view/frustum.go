package view

import (
	"github.com/chewxy/math32"

	"github.com/CaelSnow/windkraft-gpu/spatial"
)

// Frustum plane indices.
const (
	PlaneNear = iota
	PlaneFar
	PlaneLeft
	PlaneRight
	PlaneTop
	PlaneBottom

	planeCount
)

// Frustum is the camera's visibility volume, bounded by six planes. It is
// stateless beyond the planes and is recomputed once per frame when the
// camera moves.
//
// Visibility answers are conservative: a truly visible object is never
// rejected, but objects near the frustum edges may be kept even when they
// are outside. The permissive default before any extraction is "everything
// visible", so a frame never goes dark because the camera state is missing.
type Frustum struct {
	planes    [planeCount]Plane
	extracted bool
}

// Extracted reports whether the frustum holds planes from a camera or
// matrix extraction. An unextracted frustum passes every visibility test.
func (f *Frustum) Extracted() bool {
	return f.extracted
}

// Plane returns one of the six planes by index.
func (f *Frustum) Plane(i int) Plane {
	return f.planes[i]
}

// ExtractFromCamera derives the six planes directly from orbital camera
// parameters.
//
// The near and far planes sit along the forward axis; the left and right
// planes are the forward direction rotated around the up axis by the half
// field of view. The top and bottom planes are deliberately permissive: the
// scene is a near-planar point field, so vertical clipping buys nothing and
// is left out.
func (f *Frustum) ExtractFromCamera(c Camera) {
	eye := c.Eye()
	forward := c.Forward()

	up := spatial.Vector3f{Y: 1}
	right := spatial.Normalized(spatial.Cross(forward, up))

	f.planes[PlaneNear] = planeFromNormalAndPoint(
		forward,
		spatial.Add(eye, spatial.Mul(forward, c.Near)),
	)
	f.planes[PlaneFar] = planeFromNormalAndPoint(
		spatial.Mul(forward, -1),
		spatial.Add(eye, spatial.Mul(forward, c.Far)),
	)

	halfFOV := radians(c.FOV) / 2
	sinFOV := math32.Sin(halfFOV)
	cosFOV := math32.Cos(halfFOV)

	leftNormal := spatial.Vector3f{
		X: forward.X*cosFOV + right.X*sinFOV,
		Z: forward.Z*cosFOV + right.Z*sinFOV,
	}
	f.planes[PlaneLeft] = Plane{
		A: leftNormal.X,
		C: leftNormal.Z,
		D: -(leftNormal.X*eye.X + leftNormal.Z*eye.Z),
	}.Normalized()

	rightNormal := spatial.Vector3f{
		X: forward.X*cosFOV - right.X*sinFOV,
		Z: forward.Z*cosFOV - right.Z*sinFOV,
	}
	f.planes[PlaneRight] = Plane{
		A: rightNormal.X,
		C: rightNormal.Z,
		D: -(rightNormal.X*eye.X + rightNormal.Z*eye.Z),
	}.Normalized()

	// Everything between y=-10 and y=10 passes.
	f.planes[PlaneTop] = Plane{B: -1, D: 10}
	f.planes[PlaneBottom] = Plane{B: 1, D: 10}

	f.extracted = true
}

// ExtractFromMatrices derives the six planes from a combined
// projection x modelview transform using the Gribb-Hartmann row method.
func (f *Frustum) ExtractFromMatrices(projection, modelview Matrix4) {
	clip := projection.Mul(modelview)

	rowPlane := func(row int, sign float32) Plane {
		return Plane{
			A: clip[3][0] + sign*clip[row][0],
			B: clip[3][1] + sign*clip[row][1],
			C: clip[3][2] + sign*clip[row][2],
			D: clip[3][3] + sign*clip[row][3],
		}.Normalized()
	}

	f.planes[PlaneLeft] = rowPlane(0, 1)
	f.planes[PlaneRight] = rowPlane(0, -1)
	f.planes[PlaneBottom] = rowPlane(1, 1)
	f.planes[PlaneTop] = rowPlane(1, -1)
	f.planes[PlaneNear] = rowPlane(2, 1)
	f.planes[PlaneFar] = rowPlane(2, -1)

	f.extracted = true
}

// IsPointVisible reports whether (x, y, z) lies inside the frustum.
func (f *Frustum) IsPointVisible(x, y, z float32) bool {
	if !f.extracted {
		return true
	}

	for _, plane := range f.planes {
		if plane.DistanceToPoint(x, y, z) < 0 {
			return false
		}
	}
	return true
}

// IsSphereVisible reports whether a sphere centered at (x, y, z) is at
// least partially inside the frustum.
func (f *Frustum) IsSphereVisible(x, y, z, radius float32) bool {
	if !f.extracted {
		return true
	}

	for _, plane := range f.planes {
		if plane.DistanceToPoint(x, y, z) < -radius {
			return false
		}
	}
	return true
}

// IsAABBVisible reports whether an axis-aligned box is at least partially
// inside the frustum. For each plane only the box vertex most aligned with
// the plane normal is tested (p-vertex), so rejection is O(6) per box.
func (f *Frustum) IsAABBVisible(xMin, xMax, yMin, yMax, zMin, zMax float32) bool {
	if !f.extracted {
		return true
	}

	for _, plane := range f.planes {
		px := xMin
		if plane.A >= 0 {
			px = xMax
		}
		py := yMin
		if plane.B >= 0 {
			py = yMax
		}
		pz := zMin
		if plane.C >= 0 {
			pz = zMax
		}

		if plane.DistanceToPoint(px, py, pz) < 0 {
			return false
		}
	}
	return true
}
