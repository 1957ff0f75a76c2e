package view

import (
	"github.com/chewxy/math32"

	"github.com/CaelSnow/windkraft-gpu/spatial"
)

// Matrix4 is a row-major 4x4 transform, m[row][col].
type Matrix4 [4][4]float32

func Identity() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m * other.
func (m Matrix4) Mul(other Matrix4) Matrix4 {
	var result Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row][k] * other[k][col]
			}
			result[row][col] = sum
		}
	}
	return result
}

// Perspective returns the standard OpenGL perspective projection for a
// vertical field of view in degrees.
func Perspective(fov, aspect, near, far float32) Matrix4 {
	f := 1 / math32.Tan(radians(fov)/2)

	return Matrix4{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, (far + near) / (near - far), 2 * far * near / (near - far)},
		{0, 0, -1, 0},
	}
}

// LookAt returns the view matrix for a camera at eye looking toward center
// with the given up direction.
func LookAt(eye, center, up spatial.Vector3f) Matrix4 {
	f := spatial.Normalized(spatial.Sub(center, eye))
	s := spatial.Normalized(spatial.Cross(f, up))
	u := spatial.Cross(s, f)

	return Matrix4{
		{s.X, s.Y, s.Z, -s.Dot(eye)},
		{u.X, u.Y, u.Z, -u.Dot(eye)},
		{-f.X, -f.Y, -f.Z, f.Dot(eye)},
		{0, 0, 0, 1},
	}
}

// ViewMatrix returns the camera's modelview transform.
func (c Camera) ViewMatrix() Matrix4 {
	return LookAt(c.Eye(), spatial.Vector3f{}, spatial.Vector3f{Y: 1})
}

// ProjectionMatrix returns the camera's projection transform.
func (c Camera) ProjectionMatrix() Matrix4 {
	return Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}
