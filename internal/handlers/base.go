package handlers

import (
	"github.com/jobintel/ml-gateway/internal/cache"
	"github.com/jobintel/ml-gateway/internal/config"
	"github.com/jobintel/ml-gateway/internal/mlclient"
	"github.com/jobintel/ml-gateway/internal/ratelimit"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Endpoint classes. Each proxied route belongs to exactly one class; budgets
// and cache policy are decided per class.
const (
	ClassPredict  = "predict"
	ClassSkillGap = "skill_gap"
	ClassMetadata = "metadata"
	ClassLookup   = "lookup"
	ClassHealth   = "health"
)

type ProxyHandler struct {
	cfg     *config.Config
	limiter *ratelimit.Limiter
	cache   cache.Cache
	client  *mlclient.Client
	db      *gorm.DB
	log     *logrus.Entry
}

// NewProxyHandler wires the guard, limiter, cache and forwarder into one
// handler set. db may be nil, in which case log events are emitted but not
// persisted.
func NewProxyHandler(logger *logrus.Logger, cfg *config.Config, limiter *ratelimit.Limiter, c cache.Cache, client *mlclient.Client, db *gorm.DB) *ProxyHandler {
	return &ProxyHandler{
		cfg:     cfg,
		limiter: limiter,
		cache:   c,
		client:  client,
		db:      db,
		log:     logger.WithField("component", "ml_proxy"),
	}
}
