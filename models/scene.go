package models

import (
	"sync"

	"github.com/CaelSnow/windkraft-gpu/lod"
	"github.com/CaelSnow/windkraft-gpu/spatial"
)

// Germany in normalized scene units. The field generator and the viewer
// agree on this extent.
const (
	SceneXMin float32 = -1.6
	SceneXMax float32 = 1.6
	SceneZMin float32 = -1.9
	SceneZMax float32 = 1.9
)

// Scene owns the turbine field and the caches derived from it. Mutations
// invalidate the caches, queries rebuild them on demand.
type Scene struct {
	mutex sync.RWMutex

	bounds       spatial.BoundingBox
	turbines     []*Turbine
	idGen        SequentialIDGenerator
	yearIndex    *YearIndex
	quadtree     *spatial.Quadtree[*Turbine]
	lodMgr       *lod.Manager
	pinnedPreset lod.Preset
}

func NewScene() *Scene {
	return &Scene{
		bounds:    spatial.NewBoundingBox(SceneXMin, SceneXMax, SceneZMin, SceneZMax),
		yearIndex: NewYearIndex(),
	}
}

// Bounds returns the scene extent.
func (s *Scene) Bounds() spatial.BoundingBox {
	return s.bounds
}

// Add appends a turbine to the field, assigning it an id and a deterministic
// blade angle, and invalidates the caches.
func (s *Scene) Add(t *Turbine) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t.ID = s.idGen.New()
	t.BladeAngle = float32((len(s.turbines) * 37) % 360)
	s.turbines = append(s.turbines, t)
	s.yearIndex.Invalidate()
	s.quadtree = nil
}

// AddAll appends multiple turbines under a single lock.
func (s *Scene) AddAll(turbines []*Turbine) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, t := range turbines {
		t.ID = s.idGen.New()
		t.BladeAngle = float32((len(s.turbines) * 37) % 360)
		s.turbines = append(s.turbines, t)
	}
	s.yearIndex.Invalidate()
	s.quadtree = nil
}

// Len returns the number of turbines in the field.
func (s *Scene) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.turbines)
}

// Turbines returns the field. The returned slice must not be mutated.
func (s *Scene) Turbines() []*Turbine {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.turbines
}

// BuildCaches eagerly rebuilds the year index, the quadtree and the
// count-appropriate lod manager.
func (s *Scene) BuildCaches() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.rebuild()
}

func (s *Scene) rebuild() {
	s.yearIndex.Build(s.turbines)

	qt := spatial.NewQuadtree[*Turbine](s.bounds)
	qt.Build(s.turbines)
	s.quadtree = qt

	if s.pinnedPreset != "" {
		s.lodMgr = lod.NewPresetManager(s.pinnedPreset)
	} else {
		s.lodMgr = lod.ManagerForCount(len(s.turbines))
	}
	setSceneSize(len(s.turbines))
}

// SetLODPreset pins the lod preset instead of sizing it from the field.
func (s *Scene) SetLODPreset(p lod.Preset) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.pinnedPreset = p
	s.lodMgr = lod.NewPresetManager(p)
}

// YearIndex returns the year index, rebuilding the caches if stale.
func (s *Scene) YearIndex() *YearIndex {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.yearIndex.Built() {
		s.rebuild()
	}
	return s.yearIndex
}

// Quadtree returns the spatial index, rebuilding the caches if stale.
func (s *Scene) Quadtree() *spatial.Quadtree[*Turbine] {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.quadtree == nil || !s.yearIndex.Built() {
		s.rebuild()
	}
	return s.quadtree
}

// LODManager returns the lod manager matching the current field size,
// rebuilding the caches if stale.
func (s *Scene) LODManager() *lod.Manager {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.lodMgr == nil || !s.yearIndex.Built() {
		s.rebuild()
	}
	return s.lodMgr
}

// FeaturesUntil returns every turbine commissioned in or before year,
// rebuilding the caches if stale.
func (s *Scene) FeaturesUntil(year int) []*Turbine {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.yearIndex.Built() {
		s.rebuild()
	}

	turbines, err := s.yearIndex.FeaturesUntil(year)
	if err != nil {
		return nil
	}
	return turbines
}

// Years returns the distinct commissioning years in ascending order,
// rebuilding the caches if stale.
func (s *Scene) Years() []int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.yearIndex.Built() {
		s.rebuild()
	}
	return s.yearIndex.Years()
}
