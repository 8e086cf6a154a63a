package cache

import (
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisWithClient(logger, rdb), mr
}

func TestRedisRoundTrip(t *testing.T) {
	c, _ := newTestRedis(t)

	c.Set("k", []byte("payload"), "application/json; charset=utf-8", time.Minute)
	data, contentType, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, "application/json; charset=utf-8", contentType)
}

func TestRedisMissOnUnknownKey(t *testing.T) {
	c, _ := newTestRedis(t)

	_, _, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestRedisExpiry(t *testing.T) {
	c, mr := newTestRedis(t)

	c.Set("k", []byte("payload"), "application/json", time.Second)
	mr.FastForward(2 * time.Second)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestRedisFailureDegradesToMiss(t *testing.T) {
	c, mr := newTestRedis(t)

	c.Set("k", []byte("payload"), "application/json", time.Minute)
	mr.Close()

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}
