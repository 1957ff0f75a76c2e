package http

import (
	"net/http"

	"github.com/CaelSnow/windkraft-gpu/pipeline"
	"github.com/segmentio/encoding/json"
)

// HandleStats serves the stats of the most recent pipeline frame as JSON.
func HandleStats(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := p.LastStats()

		body, err := json.Marshal(struct {
			TotalCandidates int            `json:"total_candidates"`
			CulledBySpatial int            `json:"culled_by_spatial"`
			CulledByFrustum int            `json:"culled_by_frustum"`
			Visible         int            `json:"visible"`
			TierCounts      map[string]int `json:"tier_counts"`
			ElapsedMicros   int64          `json:"elapsed_us"`
		}{
			TotalCandidates: stats.TotalCandidates,
			CulledBySpatial: stats.CulledBySpatial,
			CulledByFrustum: stats.CulledByFrustum,
			Visible:         stats.Visible,
			TierCounts:      stats.TierCounts,
			ElapsedMicros:   stats.Elapsed.Microseconds(),
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
