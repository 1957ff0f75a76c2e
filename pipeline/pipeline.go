package pipeline

import (
	"sync"
	"time"

	"github.com/CaelSnow/windkraft-gpu/featureflag"
	"github.com/CaelSnow/windkraft-gpu/lod"
	"github.com/CaelSnow/windkraft-gpu/models"
	"github.com/CaelSnow/windkraft-gpu/spatial"
	"github.com/CaelSnow/windkraft-gpu/view"
	"github.com/chewxy/math32"
)

const (
	// DefaultSpatialPrefilterThreshold is the candidate count above which the
	// quadtree prefilter pays for itself.
	DefaultSpatialPrefilterThreshold = 1000

	// DefaultMaxRange normalizes camera distances for lod selection. Beyond
	// this distance everything sits in the cheapest tier.
	DefaultMaxRange float32 = 2.0

	// cullingRadiusScale pads culling spheres so turbines never pop at the
	// screen edge.
	cullingRadiusScale float32 = 1.2

	minPrefilterHalfExtent float32 = 0.5
)

// FrameStats records what each stage of a single frame did.
type FrameStats struct {
	TotalCandidates int
	CulledBySpatial int
	CulledByFrustum int
	Visible         int
	TierCounts      map[string]int
	Elapsed         time.Duration
}

// Frame is the result of one pipeline run, visible turbines grouped by lod
// tier name.
type Frame struct {
	Year   int
	Groups map[string][]*models.Turbine
	Stats  FrameStats
}

// RunInput carries everything one frame needs. LOD overrides the scene's
// count-derived manager when set.
type RunInput struct {
	Year    int
	Camera  view.Camera
	Frustum *view.Frustum
	Scene   *models.Scene
	LOD     *lod.Manager
}

// Pipeline runs the per-frame culling and lod stages over a scene.
type Pipeline struct {
	SpatialPrefilterThreshold int
	MaxRange                  float32
	FeatureFlags              featureflag.FeatureFlag

	mutex     sync.RWMutex
	lastStats FrameStats
}

func New(flags featureflag.FeatureFlag) *Pipeline {
	return &Pipeline{
		SpatialPrefilterThreshold: DefaultSpatialPrefilterThreshold,
		MaxRange:                  DefaultMaxRange,
		FeatureFlags:              flags,
	}
}

// LastStats returns the stats of the most recent frame.
func (p *Pipeline) LastStats() FrameStats {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.lastStats
}

// Run produces one frame: year filter, spatial prefilter, frustum cull, lod
// assignment.
func (p *Pipeline) Run(in RunInput) Frame {
	start := time.Now()

	mgr := in.LOD
	if mgr == nil {
		mgr = in.Scene.LODManager()
	}
	candidates := in.Scene.FeaturesUntil(in.Year)

	stats := FrameStats{
		TotalCandidates: len(candidates),
		TierCounts:      make(map[string]int),
	}

	candidates, stats.CulledBySpatial = p.spatialPrefilter(in, candidates)
	visible, culledByFrustum := p.frustumCull(in, candidates)
	stats.CulledByFrustum = culledByFrustum
	stats.Visible = len(visible)

	groups := p.assignLOD(in, mgr, visible, stats.TierCounts)

	stats.Elapsed = time.Since(start)
	p.observe(stats)

	p.mutex.Lock()
	p.lastStats = stats
	p.mutex.Unlock()

	return Frame{
		Year:   in.Year,
		Groups: groups,
		Stats:  stats,
	}
}

// spatialPrefilter narrows large candidate sets to a box around the camera
// ground position. Small sets are cheaper to cull directly.
func (p *Pipeline) spatialPrefilter(in RunInput, candidates []*models.Turbine) ([]*models.Turbine, int) {
	if len(candidates) <= p.SpatialPrefilterThreshold {
		return candidates, 0
	}

	skip := false
	p.FeatureFlags.IfSet(featureflag.FlagDisableSpatialPrefilter, func() {
		skip = true
	})
	if skip {
		return candidates, 0
	}

	ground := in.Camera.GroundPosition()
	cx, cz := ground.X, ground.Z
	halfExtent := minPrefilterHalfExtent
	if in.Camera.Zoom > 0 {
		halfExtent = math32.Max(minPrefilterHalfExtent, 2.0/in.Camera.Zoom)
	}
	box := spatial.NewBoundingBox(cx-halfExtent, cx+halfExtent, cz-halfExtent, cz+halfExtent)

	inYear := make(map[uint32]struct{}, len(candidates))
	for _, t := range candidates {
		inYear[t.ID] = struct{}{}
	}

	nearby := in.Scene.Quadtree().Query(box)
	out := make([]*models.Turbine, 0, len(nearby))
	for _, t := range nearby {
		if _, ok := inYear[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out, len(candidates) - len(out)
}

func (p *Pipeline) frustumCull(in RunInput, candidates []*models.Turbine) ([]*models.Turbine, int) {
	skip := in.Frustum == nil || !in.Frustum.Extracted()
	p.FeatureFlags.IfSet(featureflag.FlagDisableFrustumCulling, func() {
		skip = true
	})
	if skip {
		return candidates, 0
	}

	visible := make([]*models.Turbine, 0, len(candidates))
	for _, t := range candidates {
		x, y, z, r := t.CullingSphere()
		if in.Frustum.IsSphereVisible(x, y, z, r) {
			visible = append(visible, t)
		}
	}
	return visible, len(candidates) - len(visible)
}

func (p *Pipeline) assignLOD(in RunInput, mgr *lod.Manager, visible []*models.Turbine, tierCounts map[string]int) map[string][]*models.Turbine {
	groups := make(map[string][]*models.Turbine)

	fullDetail := false
	p.FeatureFlags.IfSet(featureflag.FlagDisableLOD, func() {
		fullDetail = true
	})

	eye := in.Camera.Eye()
	maxRange := p.MaxRange
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}

	for _, t := range visible {
		ordinal := 0
		distance := float32(0)
		if !fullDetail {
			x, z := t.Position()
			dx := eye.X - x
			dy := eye.Y - (t.BaseHeight + t.Height/2)
			dz := eye.Z - z
			distance = math32.Sqrt(dx*dx + dy*dy + dz*dz)
			ordinal = mgr.Ordinal(distance / maxRange)
		}

		t.SetFrameState(ordinal, distance)
		name := mgr.Level(ordinal).Name
		groups[name] = append(groups[name], t)
		tierCounts[name]++
	}
	return groups
}
