// Package ratelimit implements a dual-scope token-bucket limiter. Every
// client is checked against a per-endpoint-class budget and a global budget;
// a request proceeds only when both allow it.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// ScopeGlobal is the scope discriminator for the per-client global bucket.
const ScopeGlobal = "global"

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Rule is the static budget for one scope: Capacity tokens refilled
// continuously over Window.
type Rule struct {
	Capacity int
	Window   time.Duration
}

// Decision is the outcome of a composite check. On denial Remaining is 0 and
// RetryAfter is the time needed to accumulate one token from the current
// deficit. ResetAt is when the deciding bucket is back at full capacity.
type Decision struct {
	Allowed    bool
	Scope      string
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Tokens are fractional so partial refill between requests is exact.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rules   map[string]Rule
	global  Rule
	clock   Clock
}

// New creates a limiter with one rule per endpoint class plus a global rule.
func New(rules map[string]Rule, global Rule) *Limiter {
	return NewWithClock(rules, global, systemClock{})
}

func NewWithClock(rules map[string]Rule, global Rule, clock Clock) *Limiter {
	normalized := make(map[string]Rule, len(rules))
	for class, rule := range rules {
		normalized[class] = normalizeRule(rule)
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		rules:   normalized,
		global:  normalizeRule(global),
		clock:   clock,
	}
}

// normalizeRule keeps the refill math finite: a capacity below one token or a
// non-positive window would make the refill rate zero and the retry-after
// division unbounded.
func normalizeRule(r Rule) Rule {
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.Window <= 0 {
		r.Window = time.Minute
	}
	return r
}

// Check decides whether one unit of work may proceed for the given client and
// endpoint class. The class bucket is consulted first; a class denial returns
// immediately without touching the global bucket. If the class bucket allows
// but the global bucket denies, the class token is refunded so a globally
// exhausted client cannot drain per-class budgets it is not allowed to use.
func (l *Limiter) Check(clientIP, class string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	rule := l.ruleFor(class)
	classKey := clientIP + ":" + class
	globalKey := clientIP + ":" + ScopeGlobal

	classDec := l.take(classKey, class, rule, now)
	if !classDec.Allowed {
		return classDec
	}

	globalDec := l.take(globalKey, ScopeGlobal, l.global, now)
	if !globalDec.Allowed {
		l.refund(classKey, rule)
		return globalDec
	}

	return classDec
}

// BucketCount reports how many buckets exist. Used to verify that disabled
// paths never touch limiter state.
func (l *Limiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Tokens returns the current token count for a (client, scope) pair without
// refilling, or the rule capacity when the bucket does not exist yet.
func (l *Limiter) Tokens(clientIP, scope string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[clientIP+":"+scope]
	if !ok {
		return float64(l.ruleFor(scope).Capacity)
	}
	return b.tokens
}

func (l *Limiter) ruleFor(scope string) Rule {
	if scope == ScopeGlobal {
		return l.global
	}
	if rule, ok := l.rules[scope]; ok {
		return rule
	}
	return l.global
}

// take refills the bucket for elapsed time, then consumes one token if
// available. Updated state is persisted on both allow and deny.
func (l *Limiter) take(key, scope string, rule Rule, now time.Time) Decision {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(rule.Capacity), lastRefill: now}
		l.buckets[key] = b
	}

	capacity := float64(rule.Capacity)
	perNano := capacity / float64(rule.Window.Nanoseconds())

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+float64(elapsed.Nanoseconds())*perNano)
	}
	b.lastRefill = now

	if b.tokens < 1 {
		deficit := 1 - b.tokens
		retryAfter := time.Duration(deficit / perNano)
		return Decision{
			Allowed:    false,
			Scope:      scope,
			Limit:      rule.Capacity,
			Remaining:  0,
			RetryAfter: retryAfter,
			ResetAt:    now.Add(time.Duration((capacity - b.tokens) / perNano)),
		}
	}

	b.tokens--
	return Decision{
		Allowed:   true,
		Scope:     scope,
		Limit:     rule.Capacity,
		Remaining: int(math.Floor(b.tokens)),
		ResetAt:   now.Add(time.Duration((capacity - b.tokens) / perNano)),
	}
}

func (l *Limiter) refund(key string, rule Rule) {
	if b, ok := l.buckets[key]; ok {
		b.tokens = math.Min(float64(rule.Capacity), b.tokens+1)
	}
}
