package spatial

import (
	"math"

	"github.com/chewxy/math32"
)

func EqualWithEpsilon(a float32, b float32, epsilon float64) bool {
	return math.Abs((float64)(a-b)) <= epsilon
}

// Vector3f is a 3D vector over the scene's normalized coordinate space.
// The ground plane is xz; y points up.
type Vector3f struct {
	X float32
	Y float32
	Z float32
}

func NewVector3f(x, y, z float32) Vector3f {
	return Vector3f{x, y, z}
}

func (v1 Vector3f) EqualWithEpsilon(v2 Vector3f, epsilon float64) bool {
	return math.Abs((float64)(v1.X-v2.X)) <= epsilon &&
		math.Abs((float64)(v1.Y-v2.Y)) <= epsilon &&
		math.Abs((float64)(v1.Z-v2.Z)) <= epsilon
}

func (v1 *Vector3f) Equal(v2 Vector3f) bool {
	return v1.X == v2.X && v1.Y == v2.Y && v1.Z == v2.Z
}

func Add(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func Sub(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func Mul(a Vector3f, s float32) Vector3f {
	return Vector3f{a.X * s, a.Y * s, a.Z * s}
}

func (a *Vector3f) Length() float32 {
	return math32.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

func (a *Vector3f) NormalizeInPlace() {
	length := a.Length()
	if length != 0 {
		a.X /= length
		a.Y /= length
		a.Z /= length
	}
}

func Normalized(a Vector3f) Vector3f {
	result := a
	result.NormalizeInPlace()
	return result
}

func (a *Vector3f) Dot(b Vector3f) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func Cross(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

// DistanceXZ is the distance between a and b projected on the ground plane.
// LOD selection only cares about the horizontal distance since all features
// stand on the terrain.
func DistanceXZ(a Vector3f, b Vector3f) float32 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math32.Sqrt(dx*dx + dz*dz)
}
