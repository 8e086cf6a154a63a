package handlers

import (
	"context"
	"time"

	"github.com/jobintel/ml-gateway/internal/models"
	"github.com/sirupsen/logrus"
)

// logEvent emits the single terminal event for a request: once per inbound
// request, at the point the outcome is known, whether the request was
// short-circuited, served from cache or forwarded upstream. The same event is
// persisted on a short-deadline background write when a DB is configured.
func (h *ProxyHandler) logEvent(rctx *RequestContext, route, class string, status int, blocked bool, reason string, cacheHit bool) {
	latency := time.Since(rctx.Start)
	latencyMs := float64(latency.Microseconds()) / 1000

	h.log.WithFields(logrus.Fields{
		"route":          route,
		"endpoint_class": class,
		"ip_hash":        rctx.ClientIPHash,
		"request_id":     rctx.RequestID,
		"status":         status,
		"blocked":        blocked,
		"reason":         reason,
		"cache_hit":      cacheHit,
		"latency_ms":     latencyMs,
	}).Info("ML proxy request")

	if h.db == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		entry := models.ProxyRequestLog{
			Timestamp:     rctx.Start,
			Route:         route,
			EndpointClass: class,
			IPHash:        rctx.ClientIPHash,
			Status:        status,
			Blocked:       blocked,
			Reason:        reason,
			LatencyMs:     latencyMs,
			CacheHit:      cacheHit,
		}

		if err := h.db.WithContext(ctx).Create(&entry).Error; err != nil {
			h.log.WithError(err).Warn("Failed to save proxy request log")
		}
	}()
}
