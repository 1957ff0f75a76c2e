package models

import "sync"

// A sequential id generator. Turbines are never removed individually, so
// ids are handed out once and never recycled.
type SequentialIDGenerator struct {
	mutex     sync.Mutex
	currentID uint32
}

// New returns a sequential id, starting at 1.
func (g *SequentialIDGenerator) New() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.currentID++
	return g.currentID
}
