package mlclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jobintel/ml-gateway/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(serviceURL string) *config.Config {
	return &config.Config{
		ServiceURL:      serviceURL,
		ServiceKey:      "secret-key",
		UpstreamTimeout: 2 * time.Second,
		LimitGlobal:     100,
		LimitWindow:     time.Minute,
	}
}

func testClient(serviceURL string) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(logger, testConfig(serviceURL))
}

func TestForwardBuildsOutboundHeaders(t *testing.T) {
	var got http.Header
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	c := testClient(upstream.URL)
	res := c.Forward(context.Background(), http.MethodPost, "/api/v1/salary/predict", nil,
		[]byte(`{"title":"data engineer"}`),
		Forwarded{ClientIP: "203.0.113.7", RequestID: "req-42"})

	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, ReasonOK, res.Reason)
	assert.Equal(t, "secret-key", got.Get("X-ML-Service-Key"))
	assert.Contains(t, got.Get("X-Forwarded-For"), "203.0.113.7")
	assert.Equal(t, "req-42", got.Get("X-Request-ID"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "no-store", got.Get("Cache-Control"))
	assert.Equal(t, `{"title":"data engineer"}`, string(gotBody))
}

func TestForwardOmitsContentTypeWithoutBody(t *testing.T) {
	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	c := testClient(upstream.URL)
	c.Forward(context.Background(), http.MethodGet, "/api/v1/clusters", nil, nil, Forwarded{ClientIP: "203.0.113.7"})

	assert.Empty(t, got.Get("Content-Type"))
	assert.Empty(t, got.Get("X-Request-Id"))
}

func TestForwardEncodesQuery(t *testing.T) {
	var gotQuery url.Values
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	params := url.Values{}
	params.Set("q", "data engineer")
	params.Set("limit", "15")

	c := testClient(upstream.URL)
	c.Forward(context.Background(), http.MethodGet, "/api/v1/salary/metadata", params, nil, Forwarded{ClientIP: "203.0.113.7"})

	assert.Equal(t, "data engineer", gotQuery.Get("q"))
	assert.Equal(t, "15", gotQuery.Get("limit"))
}

func TestJSONErrorBodyPassesThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found"}`))
	}))
	defer upstream.Close()

	c := testClient(upstream.URL)
	res := c.Forward(context.Background(), http.MethodGet, "/api/v1/clusters/adjacent/nope", nil, nil, Forwarded{ClientIP: "203.0.113.7"})

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, ReasonUpstreamError, res.Reason)
	assert.JSONEq(t, `{"error":"not_found"}`, string(res.Body))
}

func TestNonJSONErrorIsSynthesized(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream blew up"))
	}))
	defer upstream.Close()

	c := testClient(upstream.URL)
	res := c.Forward(context.Background(), http.MethodGet, "/api/v1/clusters", nil, nil, Forwarded{ClientIP: "203.0.113.7"})

	require.Equal(t, http.StatusBadGateway, res.Status)
	assert.Equal(t, ReasonUpstreamError, res.Reason)

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(res.Body, &body))
	assert.Equal(t, "ml_service_error", body.Error)
	assert.Equal(t, "upstream blew up", body.Message)
}

func TestRateLimitHeadersAreRelayed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.Header().Set("X-RateLimit-Limit", "10")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1750000000")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate_limited"}`))
	}))
	defer upstream.Close()

	c := testClient(upstream.URL)
	res := c.Forward(context.Background(), http.MethodGet, "/api/v1/salary/metadata", nil, nil, Forwarded{ClientIP: "203.0.113.7"})

	assert.Equal(t, "30", res.Relay.Get("Retry-After"))
	assert.Equal(t, "10", res.Relay.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", res.Relay.Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1750000000", res.Relay.Get("X-RateLimit-Reset"))
}

func TestOutboundBudgetShedsInsteadOfBlocking(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.RateLimitEnabled = true
	cfg.LimitGlobal = 2
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewClient(logger, cfg)

	fwd := Forwarded{ClientIP: "203.0.113.7"}
	require.Equal(t, http.StatusOK, c.Forward(context.Background(), http.MethodGet, "/api/v1/clusters", nil, nil, fwd).Status)
	require.Equal(t, http.StatusOK, c.Forward(context.Background(), http.MethodGet, "/api/v1/clusters", nil, nil, fwd).Status)

	start := time.Now()
	res := c.Forward(context.Background(), http.MethodGet, "/api/v1/clusters", nil, nil, fwd)
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Equal(t, ReasonException, res.Reason)
	// The shed must be immediate, not a wait for the next token.
	assert.Less(t, time.Since(start), time.Second)
}

func TestOutboundBudgetIgnoredWhenRateLimitDisabled(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.RateLimitEnabled = false
	cfg.LimitGlobal = 1
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewClient(logger, cfg)

	fwd := Forwarded{ClientIP: "203.0.113.7"}
	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusOK, c.Forward(context.Background(), http.MethodGet, "/api/v1/clusters", nil, nil, fwd).Status)
	}
}

func TestTransportFailureNormalizedToUnavailable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	c := testClient(upstream.URL)
	res := c.Forward(context.Background(), http.MethodGet, "/api/v1/health", nil, nil, Forwarded{ClientIP: "203.0.113.7"})

	require.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Equal(t, ReasonException, res.Reason)
	assert.JSONEq(t, `{"error":"ml_unavailable","message":"ML service unavailable"}`, string(res.Body))
}
