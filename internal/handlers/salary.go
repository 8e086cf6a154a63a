package handlers

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	routeSalaryPredict  = "/api/ml/salary/predict"
	routeSalaryMetadata = "/api/ml/salary/metadata"
)

func (h *ProxyHandler) HandleSalaryPredict(w http.ResponseWriter, r *http.Request) {
	rctx, rej := h.guard(r, ClassPredict)
	if rej != nil {
		h.rejectRequest(w, rctx, routeSalaryPredict, ClassPredict, rej)
		return
	}
	h.forwardBody(w, r, rctx, routeSalaryPredict, ClassPredict, "/api/v1/salary/predict")
}

// HandleSalaryMetadata serves title/skill metadata lookups. The unfiltered
// base query is requested far more often and changes more slowly than
// free-text queries, so it gets the longer TTL tier.
func (h *ProxyHandler) HandleSalaryMetadata(w http.ResponseWriter, r *http.Request) {
	rctx, rej := h.guard(r, ClassMetadata)
	if rej != nil {
		h.rejectRequest(w, rctx, routeSalaryMetadata, ClassMetadata, rej)
		return
	}

	q := r.URL.Query().Get("q")
	limit := strings.TrimSpace(r.URL.Query().Get("limit"))
	if limit == "" {
		limit = "15"
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", limit)

	ttl := h.cfg.CacheTTLQuery
	if strings.TrimSpace(q) == "" {
		ttl = h.cfg.CacheTTLBase
	}

	h.forwardCached(w, r, rctx, routeSalaryMetadata, ClassMetadata, "/api/v1/salary/metadata", params, ttl)
}
