package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jobintel/ml-gateway/internal/clientip"
)

// Rejection reasons emitted by the guard.
const (
	reasonProxyDisabled     = "proxy_disabled"
	reasonMissingServiceKey = "missing_service_key"
)

// RequestContext is created once per inbound request at the top of the guard
// and flows through forwarding and logging. It is never shared across
// requests.
type RequestContext struct {
	Start        time.Time
	ClientIP     string
	ClientIPHash string
	RequestID    string
}

// Rejection is a ready-to-write short-circuit response.
type Rejection struct {
	Status  int
	Error   string
	Message string
	Headers map[string]string
	Reason  string

	// RetryAfterSeconds is set only for rate-limit rejections.
	RetryAfterSeconds int
}

// guard is the single entry point at the top of every proxied route handler.
// The returned context is always non-nil so rejections still log with a
// client hash; a non-nil rejection means the request must not proceed.
//
// Check order: proxy enabled, credential configured, rate limit. The first
// failing check wins and later state (including limiter buckets) is never
// touched.
func (h *ProxyHandler) guard(r *http.Request, class string) (*RequestContext, *Rejection) {
	ip := clientip.FromRequest(r)
	rctx := &RequestContext{
		Start:        time.Now(),
		ClientIP:     ip,
		ClientIPHash: clientip.Hash(ip),
		RequestID:    requestID(r),
	}

	if !h.cfg.ProxyEnabled {
		return rctx, &Rejection{
			Status:  http.StatusServiceUnavailable,
			Error:   "ml_unavailable",
			Message: "ML features are currently disabled",
			Reason:  reasonProxyDisabled,
		}
	}

	// A missing credential is a deploy error, not a client error, but the
	// gateway fails closed rather than forwarding unauthenticated.
	if h.cfg.ServiceKey == "" {
		return rctx, &Rejection{
			Status:  http.StatusServiceUnavailable,
			Error:   "ml_unavailable",
			Message: "ML service is not configured",
			Reason:  reasonMissingServiceKey,
		}
	}

	if h.cfg.RateLimitEnabled {
		decision := h.limiter.Check(ip, class)
		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			return rctx, &Rejection{
				Status:            http.StatusTooManyRequests,
				Error:             "rate_limited",
				Message:           "Too many requests",
				Reason:            "rate_limited_" + scopeLabel(decision.Scope, class),
				RetryAfterSeconds: retryAfter,
				Headers: map[string]string{
					"Retry-After":           strconv.Itoa(retryAfter),
					"X-RateLimit-Limit":     strconv.Itoa(decision.Limit),
					"X-RateLimit-Remaining": strconv.Itoa(decision.Remaining),
					"X-RateLimit-Reset":     strconv.FormatInt(decision.ResetAt.Unix(), 10),
				},
			}
		}
	}

	return rctx, nil
}

func scopeLabel(scope, class string) string {
	if scope == class {
		return "route"
	}
	return scope
}

// rejectRequest writes a guard rejection and emits its terminal log event.
func (h *ProxyHandler) rejectRequest(w http.ResponseWriter, rctx *RequestContext, route, class string, rej *Rejection) {
	writeRejection(w, rej)
	h.logEvent(rctx, route, class, rej.Status, true, rej.Reason, false)
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
