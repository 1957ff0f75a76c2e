package spatial

// BoundingBox is an axis-aligned rectangle on the xz ground plane. The y
// coordinate is ignored since all features stand on the terrain.
//
// Invariant: XMin <= XMax and ZMin <= ZMax. A BoundingBox is a value and is
// never mutated after construction.
type BoundingBox struct {
	XMin float32
	XMax float32
	ZMin float32
	ZMax float32
}

func NewBoundingBox(xMin, xMax, zMin, zMax float32) BoundingBox {
	if xMin > xMax {
		xMin, xMax = xMax, xMin
	}
	if zMin > zMax {
		zMin, zMax = zMax, zMin
	}
	return BoundingBox{
		XMin: xMin,
		XMax: xMax,
		ZMin: zMin,
		ZMax: zMax,
	}
}

// ContainsPoint reports whether (x, z) lies in the box, borders included.
func (b BoundingBox) ContainsPoint(x, z float32) bool {
	return b.XMin <= x && x <= b.XMax &&
		b.ZMin <= z && z <= b.ZMax
}

// Intersects reports whether two boxes overlap, borders included.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.XMin <= other.XMax &&
		b.XMax >= other.XMin &&
		b.ZMin <= other.ZMax &&
		b.ZMax >= other.ZMin
}

func (b BoundingBox) Center() (x, z float32) {
	return (b.XMin + b.XMax) / 2, (b.ZMin + b.ZMax) / 2
}

func (b BoundingBox) Width() float32 {
	return b.XMax - b.XMin
}

func (b BoundingBox) Height() float32 {
	return b.ZMax - b.ZMin
}
