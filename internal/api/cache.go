package api

import (
	"ecommerce_backend/internal/metrics" // Cache hit counters
	"ecommerce_backend/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// catalogCachePrefix namespaces every cached catalog listing
const catalogCachePrefix = "catalog:"

// listingCache wraps the Redis cache used for catalog listings; a nil client disables it
type listingCache struct {
	rdb     *redis.Client
	metrics *metrics.Metrics
}

// get loads key into dest and reports whether it was found
func (lc listingCache) get(c *gin.Context, key string, dest any) bool {
	if lc.rdb == nil {
		return false
	}
	found, err := utils.GetCache(c.Request.Context(), lc.rdb, catalogCachePrefix+key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("cache read failed")
		return false // Fall through to the database
	}
	lc.metrics.CacheHit(found)
	return found
}

// set stores value for the listing TTL
func (lc listingCache) set(c *gin.Context, key string, value any) {
	if lc.rdb == nil {
		return
	}
	if err := utils.SetCache(c.Request.Context(), lc.rdb, catalogCachePrefix+key, value, utils.CacheTTL); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("cache write failed")
	}
}

// invalidate drops every cached catalog listing after a mutation
func (lc listingCache) invalidate(c *gin.Context) {
	if lc.rdb == nil {
		return
	}
	if err := utils.DeleteCacheByPrefix(c.Request.Context(), lc.rdb, catalogCachePrefix); err != nil {
		logrus.WithFields(logrus.Fields{"error": err}).Error("cache invalidation failed")
	}
}
