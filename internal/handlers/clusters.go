package handlers

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

const (
	routeClusters      = "/api/ml/clusters"
	routeAdjacentRoles = "/api/ml/clusters/adjacent"
)

func (h *ProxyHandler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	rctx, rej := h.guard(r, ClassLookup)
	if rej != nil {
		h.rejectRequest(w, rctx, routeClusters, ClassLookup, rej)
		return
	}
	h.forwardCached(w, r, rctx, routeClusters, ClassLookup, "/api/v1/clusters", nil, h.cfg.CacheTTLBase)
}

// HandleAdjacentRoles proxies the adjacent-role lookup for a role slug.
// Unknown slugs come back as an upstream 404 JSON body, passed through
// unchanged.
func (h *ProxyHandler) HandleAdjacentRoles(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	route := routeAdjacentRoles + "/" + slug

	rctx, rej := h.guard(r, ClassLookup)
	if rej != nil {
		h.rejectRequest(w, rctx, route, ClassLookup, rej)
		return
	}

	upstreamPath := "/api/v1/clusters/adjacent/" + url.PathEscape(slug)
	h.forwardCached(w, r, rctx, route, ClassLookup, upstreamPath, nil, h.cfg.CacheTTLBase)
}
