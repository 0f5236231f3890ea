package api

import (
	"context" // Context for Redis operations

	"asset_tracker/internal/utils" // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// currentUserID extracts the authenticated user's id set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// invalidatePortfolioCache drops the user's cached portfolio series after any
// asset write. A nil client (tests) is a no-op; a Redis error is not fatal.
func invalidatePortfolioCache(ctx context.Context, rdb *redis.Client, userID uint) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCache(ctx, rdb, utils.PortfolioCacheKey(userID))
}
