package handlers

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jobintel/ml-gateway/internal/cache"
	"github.com/jobintel/ml-gateway/internal/mlclient"
)

// Upstream bodies are small JSON documents; anything larger is not a
// legitimate request.
const maxBodyBytes = 1 << 20

func (h *ProxyHandler) forwarded(rctx *RequestContext) mlclient.Forwarded {
	return mlclient.Forwarded{
		ClientIP:  rctx.ClientIP,
		RequestID: rctx.RequestID,
	}
}

// forwardBody proxies a body-carrying POST to the upstream. Responses are
// never cached for these endpoint classes.
func (h *ProxyHandler) forwardBody(w http.ResponseWriter, r *http.Request, rctx *RequestContext, route, class, upstreamPath string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		rej := &Rejection{
			Status:  http.StatusRequestEntityTooLarge,
			Error:   "request_too_large",
			Message: "Request body exceeds the allowed size",
			Reason:  "body_too_large",
		}
		h.rejectRequest(w, rctx, route, class, rej)
		return
	}

	res := h.client.Forward(r.Context(), http.MethodPost, upstreamPath, nil, body, h.forwarded(rctx))
	writeResult(w, res)
	h.logEvent(rctx, route, class, res.Status, res.Reason == mlclient.ReasonException, res.Reason, false)
}

// forwardCached proxies a GET through the response cache. Only clean 2xx
// upstream responses are stored; a cache failure of any kind degrades to a
// miss.
func (h *ProxyHandler) forwardCached(w http.ResponseWriter, r *http.Request, rctx *RequestContext, route, class, upstreamPath string, params url.Values, ttl time.Duration) {
	key := cache.Key(route, params)
	if data, contentType, ok := h.cache.Get(key); ok {
		writeCached(w, data, contentType)
		h.logEvent(rctx, route, class, http.StatusOK, false, mlclient.ReasonOK, true)
		return
	}

	res := h.client.Forward(r.Context(), http.MethodGet, upstreamPath, params, nil, h.forwarded(rctx))
	if res.Status == http.StatusOK && res.Reason == mlclient.ReasonOK {
		h.cache.Set(key, res.Body, res.ContentType, ttl)
	}
	writeResult(w, res)
	h.logEvent(rctx, route, class, res.Status, res.Reason == mlclient.ReasonException, res.Reason, false)
}
