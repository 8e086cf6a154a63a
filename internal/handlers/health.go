package handlers

import (
	"net/http"
	"time"

	"github.com/jobintel/ml-gateway/internal/clientip"
	"github.com/jobintel/ml-gateway/internal/mlclient"
)

const routeHealth = "/api/ml/health"

// HandleHealth proxies the upstream health probe. It bypasses the guard and
// the rate limiter, mirroring the upstream's own exemption of its health
// route.
func (h *ProxyHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ip := clientip.FromRequest(r)
	rctx := &RequestContext{
		Start:        time.Now(),
		ClientIP:     ip,
		ClientIPHash: clientip.Hash(ip),
		RequestID:    requestID(r),
	}

	res := h.client.Forward(r.Context(), http.MethodGet, "/api/v1/health", nil, nil, h.forwarded(rctx))
	writeResult(w, res)
	h.logEvent(rctx, routeHealth, ClassHealth, res.Status, res.Reason == mlclient.ReasonException, res.Reason, false)
}
