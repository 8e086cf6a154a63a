package handlers

import (
	"net/http"
)

const (
	routeSkillGapAnalyze = "/api/ml/skill-gap/analyze"
	routeSkillGapRoles   = "/api/ml/skill-gap/roles"
)

func (h *ProxyHandler) HandleSkillGapAnalyze(w http.ResponseWriter, r *http.Request) {
	rctx, rej := h.guard(r, ClassSkillGap)
	if rej != nil {
		h.rejectRequest(w, rctx, routeSkillGapAnalyze, ClassSkillGap, rej)
		return
	}
	h.forwardBody(w, r, rctx, routeSkillGapAnalyze, ClassSkillGap, "/api/v1/skill-gap/analyze")
}

func (h *ProxyHandler) HandleSkillGapRoles(w http.ResponseWriter, r *http.Request) {
	rctx, rej := h.guard(r, ClassLookup)
	if rej != nil {
		h.rejectRequest(w, rctx, routeSkillGapRoles, ClassLookup, rej)
		return
	}
	h.forwardCached(w, r, rctx, routeSkillGapRoles, ClassLookup, "/api/v1/skill-gap/roles", nil, h.cfg.CacheTTLBase)
}
