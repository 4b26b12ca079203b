package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"PriceAnomaly/internal/domain/models"
	domrepo "PriceAnomaly/internal/domain/repository"
	domsvc "PriceAnomaly/internal/domain/service"
	pkgcache "PriceAnomaly/pkg/cache"
	applogger "PriceAnomaly/pkg/logger"
)

const keyPrefix = "zscore"

// ZScoreCache memoizes z-score computations in a pkg/cache backend. Keys are
// a content fingerprint of the prices plus the series length and window.
type ZScoreCache struct {
	backend pkgcache.Service
	ttl     time.Duration
	layer   string
	metrics domrepo.Metrics
	logger  *applogger.Logger
}

// NewZScoreCache creates the cache. layer labels lookups in metrics. metrics may be nil.
func NewZScoreCache(backend pkgcache.Service, ttl time.Duration, layer string, metrics domrepo.Metrics, logger *applogger.Logger) *ZScoreCache {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &ZScoreCache{backend: backend, ttl: ttl, layer: layer, metrics: metrics, logger: logger}
}

// Key returns the cache key for prices and window.
func Key(prices []float64, window int) string {
	return pkgcache.GenerateKey(keyPrefix, len(prices), strconv.FormatUint(pkgcache.HashFloat64s(prices), 16), window)
}

func (c *ZScoreCache) Get(ctx context.Context, prices []float64, window int) (models.ZScores, bool) {
	key := Key(prices, window)
	var zs models.ZScores
	err := c.backend.Get(ctx, key, &zs)
	hit := err == nil && len(zs.Scores) == len(prices) && len(zs.Thresholds) == len(prices)
	if err != nil && !errors.Is(err, pkgcache.ErrCacheMiss) {
		c.logger.Warn("zscore cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(c.layer, hit)
	}
	c.logger.Debug("zscore cache lookup", applogger.String("key", key), applogger.Bool("hit", hit))
	if !hit {
		return models.ZScores{}, false
	}
	return cloneZScores(zs), true
}

func (c *ZScoreCache) Put(ctx context.Context, prices []float64, window int, zs models.ZScores) {
	key := Key(prices, window)
	if err := c.backend.Set(ctx, key, cloneZScores(zs), c.ttl); err != nil {
		c.logger.Warn("zscore cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// Len reports the number of cached entries when the backend can tell, else -1.
func (c *ZScoreCache) Len() int {
	if s, ok := c.backend.(pkgcache.Sizer); ok {
		return s.Len()
	}
	return -1
}

func cloneZScores(zs models.ZScores) models.ZScores {
	return models.ZScores{
		Scores:     append([]float64(nil), zs.Scores...),
		Thresholds: append([]float64(nil), zs.Thresholds...),
	}
}

var _ domsvc.ZScoreCache = (*ZScoreCache)(nil)
