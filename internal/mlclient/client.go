// Package mlclient forwards allowed requests to the ML inference service and
// normalizes upstream responses into the gateway's own response shape.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobintel/ml-gateway/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Reason tokens carried into the terminal log event.
const (
	ReasonOK            = "ok"
	ReasonUpstreamError = "upstream_error"
	ReasonException     = "exception"
)

// Headers from the upstream that are relayed to the client. The upstream
// enforces its own limits, so a double-limited client still gets actionable
// guidance.
var relayedHeaders = []string{
	"Retry-After",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
}

type Client struct {
	httpClient *http.Client
	cfg        *config.Config
	log        *logrus.Entry
	limiter    *rate.Limiter
}

type loggingTransport struct {
	log *logrus.Entry
}

// Forwarded carries the per-request identity threaded into outbound headers.
type Forwarded struct {
	ClientIP  string
	RequestID string
}

// Result is a normalized upstream outcome. It is always well-formed: a
// transport failure becomes a 503 with an ml_unavailable body rather than an
// error return.
type Result struct {
	Status      int
	Body        []byte
	ContentType string
	Relay       http.Header
	Reason      string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewClient(logger *logrus.Logger, cfg *config.Config) *Client {
	window := cfg.LimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.UpstreamTimeout,
			Transport: &loggingTransport{log: logger.WithField("component", "ml_transport")},
		},
		cfg: cfg,
		log: logger.WithField("component", "ml_client"),
		// Courtesy smoothing toward the upstream: the aggregate outbound
		// rate tracks the global client budget.
		limiter: rate.NewLimiter(
			rate.Limit(float64(cfg.LimitGlobal)/window.Seconds()),
			cfg.LimitGlobal,
		),
	}
}

// Forward issues the upstream call and normalizes the response. Method and
// body are passed through from the client request; query parameters must
// already be normalized by the caller.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, body []byte, fwd Forwarded) *Result {
	target := strings.TrimSuffix(c.cfg.ServiceURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		c.log.WithError(err).Error("Failed to build upstream request")
		return unavailable()
	}

	req.Header.Set("X-ML-Service-Key", c.cfg.ServiceKey)
	req.Header.Set("X-Forwarded-For", fwd.ClientIP)
	req.Header.Set("Cache-Control", "no-store")
	if fwd.RequestID != "" {
		req.Header.Set("X-Request-ID", fwd.RequestID)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	// Shed rather than queue when the aggregate outbound budget is spent;
	// a blocked wait here would hold the client connection open.
	if c.cfg.RateLimitEnabled && !c.limiter.Allow() {
		c.log.Warn("Outbound budget exhausted")
		return unavailable()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Error("Upstream request failed")
		return unavailable()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.WithError(err).Error("Failed to read upstream response")
		return unavailable()
	}

	relay := make(http.Header)
	for _, name := range relayedHeaders {
		if value := resp.Header.Get(name); value != "" {
			relay.Set(name, value)
		}
	}

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Result{
			Status:      resp.StatusCode,
			Body:        respBody,
			ContentType: contentType,
			Relay:       relay,
			Reason:      ReasonOK,
		}
	}

	// JSON error bodies pass through unchanged so the upstream's own error
	// taxonomy is preserved.
	if strings.Contains(contentType, "application/json") && json.Valid(respBody) {
		return &Result{
			Status:      resp.StatusCode,
			Body:        respBody,
			ContentType: contentType,
			Relay:       relay,
			Reason:      ReasonUpstreamError,
		}
	}

	message := strings.TrimSpace(string(respBody))
	if message == "" {
		message = "ML service error"
	}
	synthesized, _ := json.Marshal(errorBody{Error: "ml_service_error", Message: message})
	return &Result{
		Status:      resp.StatusCode,
		Body:        synthesized,
		ContentType: "application/json",
		Relay:       relay,
		Reason:      ReasonUpstreamError,
	}
}

func unavailable() *Result {
	body, _ := json.Marshal(errorBody{Error: "ml_unavailable", Message: "ML service unavailable"})
	return &Result{
		Status:      http.StatusServiceUnavailable,
		Body:        body,
		ContentType: "application/json",
		Relay:       make(http.Header),
		Reason:      ReasonException,
	}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := t.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		log.WithError(err).Error("HTTP request failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start),
	}).Debug("HTTP request completed")
	return resp, nil
}
