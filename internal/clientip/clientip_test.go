package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForwardedForTakesPriority(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	r.Header.Set("X-Real-IP", "198.51.100.2")

	assert.Equal(t, "203.0.113.7", FromRequest(r))
}

func TestRealIPFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.2")

	assert.Equal(t, "198.51.100.2", FromRequest(r))
}

func TestPlatformHeaderFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = ""
	r.Header.Set("CF-Connecting-IP", "198.51.100.9")

	assert.Equal(t, "198.51.100.9", FromRequest(r))
}

func TestRemoteAddrFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.4:51234"

	assert.Equal(t, "192.0.2.4", FromRequest(r))
}

func TestUnknownSentinel(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = ""

	assert.Equal(t, Unknown, FromRequest(r))
}

func TestHashIsStableAndFixedWidth(t *testing.T) {
	a := Hash("203.0.113.7")
	b := Hash("203.0.113.7")
	c := Hash("203.0.113.8")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 12)
	assert.NotContains(t, a, ".")
}
