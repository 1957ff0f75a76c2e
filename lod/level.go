// Package lod selects the geometric complexity a feature is rendered at,
// keyed by its normalized camera distance or projected screen size.
package lod

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Typed errors reported by level and manager construction.
const (
	ErrTypeBadRatio      = "lod_bad_polygon_ratio"
	ErrTypeBadThreshold  = "lod_bad_distance_threshold"
	ErrTypeBadSegments   = "lod_bad_segment_count"
	ErrTypeBadBlades     = "lod_bad_blade_count"
	ErrTypeNoLevels      = "lod_no_levels"
	ErrTypeNotAscending  = "lod_thresholds_not_ascending"
	ErrTypeRatioIncrease = "lod_ratio_not_monotonic"
)

// Level is one detail tier. PolygonRatio is the fraction of the full
// model's polygons kept at this tier; DistanceThreshold is the normalized
// camera distance from which the tier applies. The structural hints tell
// the renderer how to simplify the model beyond the raw ratio.
type Level struct {
	Name              string
	PolygonRatio      float32
	DistanceThreshold float32

	SegmentCount int
	BladeCount   int
	SkipNacelle  bool
	SkipBlades   bool
	UseBillboard bool
}

// Validate checks the level against its construction invariants.
func (l Level) Validate() error {
	if l.PolygonRatio < 0 || l.PolygonRatio > 1 {
		return errors.New("polygon ratio is out of range").
			WithType(ErrTypeBadRatio).
			WithTag("level", l.Name).
			WithTag("ratio", l.PolygonRatio)
	}
	if l.DistanceThreshold < 0 {
		return errors.New("distance threshold is negative").
			WithType(ErrTypeBadThreshold).
			WithTag("level", l.Name).
			WithTag("threshold", l.DistanceThreshold)
	}
	if l.SegmentCount < 3 {
		return errors.New("cylindrical shapes need at least 3 segments").
			WithType(ErrTypeBadSegments).
			WithTag("level", l.Name).
			WithTag("segments", l.SegmentCount)
	}
	if l.BladeCount < 0 || l.BladeCount > 3 {
		return errors.New("blade count is out of range").
			WithType(ErrTypeBadBlades).
			WithTag("level", l.Name).
			WithTag("blades", l.BladeCount)
	}
	return nil
}

// PolygonCount scales a full-detail polygon count down to this tier.
func (l Level) PolygonCount(basePolygons int) int {
	return int(float32(basePolygons) * l.PolygonRatio)
}
