package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisOpTimeout = 500 * time.Millisecond

// Redis implements Cache against a shared Redis instance, letting multiple
// gateway replicas share one response cache. Expiry is delegated to Redis
// key TTLs, so the Get/Set contract is unchanged from the memory
// implementation.
type Redis struct {
	rdb *redis.Client
	log *logrus.Entry
}

func NewRedis(logger *logrus.Logger, addr string) *Redis {
	return &Redis{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		log: logger.WithField("component", "redis_cache"),
	}
}

// NewRedisWithClient wraps an existing client, used by tests.
func NewRedisWithClient(logger *logrus.Logger, rdb *redis.Client) *Redis {
	return &Redis{
		rdb: rdb,
		log: logger.WithField("component", "redis_cache"),
	}
}

// Entries are stored as a small JSON envelope so the content type survives
// the round trip alongside the payload.
type redisEnvelope struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (r *Redis) Get(key string) ([]byte, string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.WithError(err).Warn("Cache read failed")
		}
		return nil, "", false
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.log.WithError(err).Warn("Cache entry corrupt")
		return nil, "", false
	}
	return env.Data, env.ContentType, true
}

func (r *Redis) Set(key string, data []byte, contentType string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(redisEnvelope{ContentType: contentType, Data: data})
	if err != nil {
		r.log.WithError(err).Warn("Cache entry encode failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		r.log.WithError(err).Warn("Cache write failed")
	}
}
