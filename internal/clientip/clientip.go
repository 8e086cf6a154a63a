// Package clientip resolves a best-effort client network identifier from
// inbound request headers and hashes it for use in logs and metrics.
package clientip

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const Unknown = "unknown"

// FromRequest returns the client identifier using a fixed priority order:
// X-Forwarded-For (first entry), X-Real-IP, CF-Connecting-IP, then the
// connection's remote address. Always returns a value.
func FromRequest(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if cfIP := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}

	return Unknown
}

// Hash reduces an identifier to a fixed-width 12-character hex token. The raw
// identifier is used only for limiter keys and the forwarded-for header;
// everything that is logged or persisted goes through Hash.
func Hash(identifier string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(identifier))[:12]
}
