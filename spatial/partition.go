package spatial

// Point is an item that can be indexed by a spatial partition. Implementations
// must return a stable position for as long as they are indexed; moving an
// indexed item requires a rebuild.
type Point interface {
	Position() (x, z float32)
}

// Index is a spatial partition over the xz ground plane.
type Index[T Point] interface {
	// Build discards the current structure and indexes every given item.
	Build(items []T)

	// Insert adds a single item. It reports whether the item landed inside
	// the index bounds.
	Insert(item T) bool

	// Query returns every indexed item whose position lies in the given box.
	Query(box BoundingBox) []T

	// Len returns the number of indexed items.
	Len() int

	// debug stuff:
	DebugInfo() DebugInfo
}

// DebugInfo describes the shape of a spatial partition for diagnostics.
type DebugInfo struct {
	NodeCount  int
	LeafCount  int
	ItemCount  int
	MaxDepth   int
	AvgPerLeaf float64
	QueryCount uint64
}
