package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const stageLabel = "stage"

const (
	stageSpatial = "spatial"
	stageFrustum = "frustum"
)

var (
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "windkraft_pipeline_frame_duration_seconds",
		Help:    "The time spent running the culling pipeline per frame.",
		Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
	})

	visibleTurbines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "windkraft_pipeline_visible_turbines",
		Help: "The number of turbines visible in the latest frame.",
	})

	culledTurbines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windkraft_pipeline_culled_turbines_total",
		Help: "The number of turbines removed per culling stage.",
	},
		[]string{stageLabel},
	)
)

func (p *Pipeline) observe(stats FrameStats) {
	frameDuration.Observe(stats.Elapsed.Seconds())
	visibleTurbines.Set(float64(stats.Visible))
	culledTurbines.With(prometheus.Labels{stageLabel: stageSpatial}).
		Add(float64(stats.CulledBySpatial))
	culledTurbines.With(prometheus.Labels{stageLabel: stageFrustum}).
		Add(float64(stats.CulledByFrustum))
}
