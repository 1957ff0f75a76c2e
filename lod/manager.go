package lod

import (
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Preset names a built-in tier table.
type Preset string

const (
	// PresetStandard trades ~40% of polygons over three tiers.
	PresetStandard Preset = "standard"

	// PresetAggressive trades 60-75% of polygons over five tiers, ending
	// in a billboard.
	PresetAggressive Preset = "aggressive"

	// PresetExtreme drops detail much earlier for very large fields
	// (>25k features).
	PresetExtreme Preset = "extreme"
)

func standardLevels() []Level {
	return []Level{
		{Name: "LOD0", PolygonRatio: 1.00, DistanceThreshold: 0.0, SegmentCount: 8, BladeCount: 3},
		{Name: "LOD1", PolygonRatio: 0.50, DistanceThreshold: 0.3, SegmentCount: 8, BladeCount: 3},
		{Name: "LOD2", PolygonRatio: 0.10, DistanceThreshold: 0.8, SegmentCount: 8, BladeCount: 3},
	}
}

func aggressiveLevels() []Level {
	return []Level{
		{Name: "LOD0", PolygonRatio: 1.00, DistanceThreshold: 0.00, SegmentCount: 8, BladeCount: 3},
		{Name: "LOD1", PolygonRatio: 0.60, DistanceThreshold: 0.15, SegmentCount: 6, BladeCount: 3},
		{Name: "LOD2", PolygonRatio: 0.25, DistanceThreshold: 0.35, SegmentCount: 4, BladeCount: 3},
		{Name: "LOD3", PolygonRatio: 0.08, DistanceThreshold: 0.55, SegmentCount: 4, BladeCount: 1, SkipNacelle: true},
		{Name: "LOD4", PolygonRatio: 0.02, DistanceThreshold: 0.85, SegmentCount: 3, BladeCount: 0, SkipNacelle: true, SkipBlades: true, UseBillboard: true},
	}
}

func extremeLevels() []Level {
	return []Level{
		{Name: "LOD0", PolygonRatio: 1.00, DistanceThreshold: 0.00, SegmentCount: 6, BladeCount: 3},
		{Name: "LOD1", PolygonRatio: 0.40, DistanceThreshold: 0.10, SegmentCount: 4, BladeCount: 2},
		{Name: "LOD2", PolygonRatio: 0.15, DistanceThreshold: 0.25, SegmentCount: 4, BladeCount: 1, SkipNacelle: true},
		{Name: "LOD3", PolygonRatio: 0.05, DistanceThreshold: 0.45, SegmentCount: 3, BladeCount: 0, SkipNacelle: true, SkipBlades: true},
		{Name: "LOD4", PolygonRatio: 0.01, DistanceThreshold: 0.70, SegmentCount: 3, BladeCount: 0, SkipNacelle: true, SkipBlades: true, UseBillboard: true},
	}
}

// Manager holds an ordered set of detail tiers and selects one for a given
// normalized camera distance. Selection is a pure function of (distance,
// config): the same distance always yields the same tier.
type Manager struct {
	preset     Preset
	levels     []Level
	thresholds []float32
}

// NewManager builds a manager from custom tiers. Construction fails fast on
// any invalid level, on duplicate or unsorted thresholds, and on polygon
// ratios that increase with distance.
func NewManager(preset Preset, levels []Level) (*Manager, error) {
	if len(levels) == 0 {
		return nil, errors.New("a lod manager needs at least one level").
			WithType(ErrTypeNoLevels)
	}

	sorted := make([]Level, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DistanceThreshold < sorted[j].DistanceThreshold
	})

	thresholds := make([]float32, len(sorted))
	for i, level := range sorted {
		if err := level.Validate(); err != nil {
			return nil, err
		}

		if i > 0 {
			if level.DistanceThreshold == sorted[i-1].DistanceThreshold {
				return nil, errors.New("distance thresholds must be distinct").
					WithType(ErrTypeNotAscending).
					WithTag("level", level.Name).
					WithTag("threshold", level.DistanceThreshold)
			}
			if level.PolygonRatio > sorted[i-1].PolygonRatio {
				return nil, errors.New("polygon ratio must not increase with distance").
					WithType(ErrTypeRatioIncrease).
					WithTag("level", level.Name).
					WithTag("ratio", level.PolygonRatio)
			}
		}
		thresholds[i] = level.DistanceThreshold
	}

	return &Manager{
		preset:     preset,
		levels:     sorted,
		thresholds: thresholds,
	}, nil
}

// NewPresetManager builds a manager from a named preset. Unknown presets
// fall back to aggressive, matching the viewer's historical default.
func NewPresetManager(preset Preset) *Manager {
	var levels []Level
	switch preset {
	case PresetStandard:
		levels = standardLevels()
	case PresetExtreme:
		levels = extremeLevels()
	default:
		preset = PresetAggressive
		levels = aggressiveLevels()
	}

	// Built-in tables always validate.
	m, err := NewManager(preset, levels)
	if err != nil {
		panic(err)
	}
	return m
}

// ManagerForCount picks the preset matching a scene size: extreme above
// 25k features, aggressive above 10k, standard otherwise.
func ManagerForCount(featureCount int) *Manager {
	switch {
	case featureCount > 25000:
		return NewPresetManager(PresetExtreme)
	case featureCount > 10000:
		return NewPresetManager(PresetAggressive)
	default:
		return NewPresetManager(PresetStandard)
	}
}

func (m *Manager) Preset() Preset {
	return m.preset
}

// Levels returns the tiers in ascending threshold order.
func (m *Manager) Levels() []Level {
	return m.levels
}

// ForDistance returns the tier with the greatest threshold <= the given
// normalized distance, found by binary search.
func (m *Manager) ForDistance(distance float32) Level {
	idx := sort.Search(len(m.thresholds), func(i int) bool {
		return m.thresholds[i] > distance
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return m.levels[idx]
}

// Ordinal returns the index of the tier ForDistance would pick. The wire
// protocol ships ordinals instead of names.
func (m *Manager) Ordinal(distance float32) int {
	idx := sort.Search(len(m.thresholds), func(i int) bool {
		return m.thresholds[i] > distance
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Level returns the tier at the given ordinal, clamped to the table.
func (m *Manager) Level(ordinal int) Level {
	if ordinal < 0 {
		ordinal = 0
	}
	if ordinal >= len(m.levels) {
		ordinal = len(m.levels) - 1
	}
	return m.levels[ordinal]
}
