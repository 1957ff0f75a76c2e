package spatial

import (
	"sync/atomic"
)

// Quadtree default tuning. Capacity is the number of items a leaf holds
// before it splits; depth is capped to keep degenerate clusters (many items
// sharing one position) from recursing forever.
const (
	DefaultLeafCapacity = 8
	DefaultMaxDepth     = 10
)

// Quadtree is a 4-way recursive partition of the xz ground plane answering
// windowed queries in O(log n + k).
//
// The tree is built wholesale: Build replaces the previous structure and
// there is no incremental removal. It is safe for concurrent readers only;
// a rebuild must not be interleaved with queries.
type Quadtree[T Point] struct {
	bounds       BoundingBox
	leafCapacity int
	maxDepth     int

	root       *node[T]
	count      int
	queryCount atomic.Uint64
}

// NewQuadtree returns an empty quadtree covering bounds with the default
// tuning. Items outside bounds are rejected by Insert.
func NewQuadtree[T Point](bounds BoundingBox) *Quadtree[T] {
	return NewQuadtreeWithTuning[T](bounds, DefaultLeafCapacity, DefaultMaxDepth)
}

// NewQuadtreeWithTuning returns an empty quadtree with an explicit leaf
// capacity and depth cap.
func NewQuadtreeWithTuning[T Point](bounds BoundingBox, leafCapacity, maxDepth int) *Quadtree[T] {
	if leafCapacity < 1 {
		leafCapacity = DefaultLeafCapacity
	}
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Quadtree[T]{
		bounds:       bounds,
		leafCapacity: leafCapacity,
		maxDepth:     maxDepth,
		root:         &node[T]{bounds: bounds},
	}
}

func (q *Quadtree[T]) Bounds() BoundingBox {
	return q.bounds
}

func (q *Quadtree[T]) Len() int {
	return q.count
}

// Build discards the current structure and indexes every given item.
func (q *Quadtree[T]) Build(items []T) {
	q.root = &node[T]{bounds: q.bounds}
	q.count = 0

	for _, item := range items {
		if q.root.insert(item, q.leafCapacity, q.maxDepth) {
			q.count++
		}
	}
}

// Insert adds one item, splitting the target leaf when it exceeds the leaf
// capacity. It reports whether the item landed inside the index bounds.
func (q *Quadtree[T]) Insert(item T) bool {
	ok := q.root.insert(item, q.leafCapacity, q.maxDepth)
	if ok {
		q.count++
	}
	return ok
}

// Query returns every indexed item whose position lies in box.
func (q *Quadtree[T]) Query(box BoundingBox) []T {
	q.queryCount.Add(1)

	var result []T
	q.root.query(box, &result)
	return result
}

// Count returns the number of indexed items inside box without collecting
// them.
func (q *Quadtree[T]) Count(box BoundingBox) int {
	return q.root.count(box)
}

func (q *Quadtree[T]) DebugInfo() DebugInfo {
	info := DebugInfo{QueryCount: q.queryCount.Load()}
	q.root.collectInfo(&info)
	if info.LeafCount > 0 {
		info.AvgPerLeaf = float64(info.ItemCount) / float64(info.LeafCount)
	}
	return info
}

// node is either a leaf holding items or an internal node with exactly four
// children (NW, NE, SW, SE) partitioning its box at the midpoint.
type node[T Point] struct {
	bounds   BoundingBox
	depth    int
	items    []T
	children *[4]*node[T]
}

func (n *node[T]) isLeaf() bool {
	return n.children == nil
}

// quadrant picks the child index for a point using a half-open convention:
// a point exactly on the split line belongs to the higher quadrant. Keeping
// this consistent guarantees every point lands in exactly one child.
func (n *node[T]) quadrant(x, z float32) int {
	cx, cz := n.bounds.Center()

	i := 0
	if x >= cx {
		i |= 1 // east
	}
	if z >= cz {
		i |= 2 // south
	}
	return i
}

func (n *node[T]) childBounds(i int) BoundingBox {
	cx, cz := n.bounds.Center()

	switch i {
	case 0: // NW
		return BoundingBox{XMin: n.bounds.XMin, XMax: cx, ZMin: n.bounds.ZMin, ZMax: cz}
	case 1: // NE
		return BoundingBox{XMin: cx, XMax: n.bounds.XMax, ZMin: n.bounds.ZMin, ZMax: cz}
	case 2: // SW
		return BoundingBox{XMin: n.bounds.XMin, XMax: cx, ZMin: cz, ZMax: n.bounds.ZMax}
	default: // SE
		return BoundingBox{XMin: cx, XMax: n.bounds.XMax, ZMin: cz, ZMax: n.bounds.ZMax}
	}
}

func (n *node[T]) insert(item T, leafCapacity, maxDepth int) bool {
	x, z := item.Position()
	if !n.bounds.ContainsPoint(x, z) {
		return false
	}

	for !n.isLeaf() {
		n = n.children[n.quadrant(x, z)]
	}

	n.items = append(n.items, item)

	// An overfull leaf at the depth cap keeps growing instead of splitting.
	if len(n.items) > leafCapacity && n.depth < maxDepth {
		n.split(leafCapacity, maxDepth)
	}
	return true
}

// split creates the four quadrant children and moves the node's items into
// them. Items are assigned by the half-open quadrant rule, so redistribution
// never duplicates or loses a point.
func (n *node[T]) split(leafCapacity, maxDepth int) {
	var children [4]*node[T]
	for i := range children {
		children[i] = &node[T]{
			bounds: n.childBounds(i),
			depth:  n.depth + 1,
		}
	}
	n.children = &children

	for _, item := range n.items {
		x, z := item.Position()
		child := children[n.quadrant(x, z)]
		child.items = append(child.items, item)
	}
	n.items = nil

	for _, child := range children {
		if len(child.items) > leafCapacity && child.depth < maxDepth {
			child.split(leafCapacity, maxDepth)
		}
	}
}

func (n *node[T]) query(box BoundingBox, result *[]T) {
	if !n.bounds.Intersects(box) {
		return
	}

	if n.isLeaf() {
		// A leaf's box may extend beyond the query box, so every item
		// needs the exact point test.
		for _, item := range n.items {
			if box.ContainsPoint(item.Position()) {
				*result = append(*result, item)
			}
		}
		return
	}

	for _, child := range n.children {
		child.query(box, result)
	}
}

func (n *node[T]) count(box BoundingBox) int {
	if !n.bounds.Intersects(box) {
		return 0
	}

	total := 0
	if n.isLeaf() {
		for _, item := range n.items {
			if box.ContainsPoint(item.Position()) {
				total++
			}
		}
		return total
	}

	for _, child := range n.children {
		total += child.count(box)
	}
	return total
}

func (n *node[T]) collectInfo(info *DebugInfo) {
	info.NodeCount++
	if n.depth > info.MaxDepth {
		info.MaxDepth = n.depth
	}

	if n.isLeaf() {
		info.LeafCount++
		info.ItemCount += len(n.items)
		return
	}

	for _, child := range n.children {
		child.collectInfo(info)
	}
}
