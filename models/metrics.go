package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sceneSizeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "windkraft_scene_turbines",
		Help: "The number of turbines in the scene.",
	})

	cacheRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "windkraft_scene_cache_rebuilds_total",
		Help: "The number of times the scene caches were rebuilt.",
	})
)

func setSceneSize(n int) {
	sceneSizeGauge.Set(float64(n))
	cacheRebuilds.Inc()
}
