package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jobintel/ml-gateway/internal/models"
)

type classStats struct {
	EndpointClass string `json:"endpoint_class"`
	Requests      int64  `json:"requests"`
	Blocked       int64  `json:"blocked"`
	CacheHits     int64  `json:"cache_hits"`
}

type statsResponse struct {
	Since   time.Time    `json:"since"`
	Classes []classStats `json:"classes"`
}

// HandleStats summarizes the last 24 hours of proxy traffic per endpoint
// class from the persisted request log.
func (h *ProxyHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(errorResponse{
			Error:   "stats_unavailable",
			Message: "Request log persistence is disabled",
		})
		return
	}

	since := time.Now().Add(-24 * time.Hour)

	var rows []classStats
	err := h.db.Model(&models.ProxyRequestLog{}).
		Select("endpoint_class, count(*) as requests, sum(case when blocked then 1 else 0 end) as blocked, sum(case when cache_hit then 1 else 0 end) as cache_hits").
		Where("timestamp > ?", since).
		Group("endpoint_class").
		Order("endpoint_class").
		Scan(&rows).Error
	if err != nil {
		h.log.WithError(err).Error("Stats query failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorResponse{
			Error:   "stats_query_failed",
			Message: "Failed to read request log",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statsResponse{Since: since, Classes: rows})
}
