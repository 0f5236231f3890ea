package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query param parsing
	"strings"  // Search term splitting
	"time"     // Cache TTL

	"asset_tracker/internal/market" // Upstream market clients
	"asset_tracker/internal/store"  // Persistence interface
	"asset_tracker/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

const marketCacheTTL = 60 * time.Second // Snapshot and series cache lifetime

// LatestMarketHandler serves the paginated or symbol-searched market
// snapshot, cached per (page, limit, search) for 60 seconds.
func LatestMarketHandler(p market.SnapshotProvider, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 0   // Default page
		limit := 20 // Default page size
		// If page exists in query
		if v := c.Query("page"); v != "" {
			// Convert page to integer
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				page = n // Set page if valid
			}
		}
		// If limit exists in query
		if v := c.Query("limit"); v != "" {
			// Convert limit to integer
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n // Set limit if valid
			}
		}
		search := strings.TrimSpace(c.Query("search"))

		ctx := c.Request.Context()
		cacheKey := "market:latest:page=" + strconv.Itoa(page) +
			":limit=" + strconv.Itoa(limit) + ":search=" + strings.ToUpper(search)
		// Try to get from cache
		if rdb != nil {
			var cached []market.Coin
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"success": true, "data": cached, "count": len(cached), "cached": true})
				return
			}
		}

		var coins []market.Coin
		var err error
		if search != "" {
			// Symbol search: upper-case, whitespace-separated symbols
			coins, err = p.PriceMultiFull(ctx, strings.Fields(strings.ToUpper(search)))
		} else {
			// Standard top list with pagination
			coins, err = p.TopList(ctx, page, limit)
		}
		if err != nil {
			// Raw upstream errors are logged, never echoed to the client
			logrus.WithField("error", err.Error()).Error("Market snapshot fetch failed")
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch market data"})
			return
		}
		if coins == nil {
			coins = []market.Coin{} // Serialize as [] rather than null
		}
		// Cache the result for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, coins, marketCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": coins, "count": len(coins), "cached": false})
	}
}

// PortfolioHistoryHandler serves the caller's ~24h aggregate portfolio value
// series, cached per user for 60 seconds and invalidated on asset writes.
func PortfolioHistoryHandler(s store.Store, p market.HistoryProvider, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.PortfolioCacheKey(userID)
		// Try to get from cache
		if rdb != nil {
			var cached []market.PortfolioPoint
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"success": true, "data": cached, "cached": true})
				return
			}
		}
		// Priceable crypto assets only (type CRYPTO with a symbol)
		assets, err := s.CryptoAssetsByUser(ctx, userID)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to load crypto assets")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch portfolio history"})
			return
		}
		points := market.PortfolioHistory(ctx, p, assets) // Aggregate the series
		// Cache the result for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, points, marketCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": points, "cached": false})
	}
}
