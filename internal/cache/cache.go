// Package cache provides a best-effort TTL cache for idempotent upstream
// responses. Implementations must treat expired entries as absent and must
// never let a cache failure block the request path.
package cache

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

type Cache interface {
	Get(key string) (data []byte, contentType string, ok bool)
	Set(key string, data []byte, contentType string, ttl time.Duration)
}

// Key builds a deterministic cache key from a route and its query
// parameters. Values are trimmed and lower-cased so equivalent queries
// collide predictably.
func Key(route string, params url.Values) string {
	if len(params) == 0 {
		return route
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(route)
	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.ToLower(strings.TrimSpace(params.Get(name))))
	}
	return b.String()
}

type entry struct {
	data        []byte
	contentType string
	expiresAt   time.Time
}

// Memory is the in-process implementation. Entries are evicted lazily on
// lookup; there is no background sweep.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, "", false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, "", false
	}
	return e.data, e.contentType, true
}

func (m *Memory) Set(key string, data []byte, contentType string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{data: data, contentType: contentType, expiresAt: m.now().Add(ttl)}
}

// Len reports the number of stored entries, including ones that have expired
// but not yet been evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
