package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query param parsing

	"asset_tracker/internal/market" // Upstream market clients

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Unauthenticated passthroughs to CoinGecko. Payloads are forwarded raw
// inside the standard envelope; upstream failures map to 502 with a
// classification message only.

// upstreamError logs the raw error and answers with the generic message
func upstreamError(c *gin.Context, what string, err error) {
	logrus.WithFields(logrus.Fields{
		"endpoint": what,        // Which passthrough failed
		"error":    err.Error(), // Raw upstream error, log only
	}).Error("CoinGecko fetch failed")
	c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch " + what})
}

// queryInt parses an integer query param, 0 when absent or invalid
func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// CryptoListHandler proxies GET /coins/markets
func CryptoListHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.CoinList(c.Request.Context(), market.CoinListParams{
			VsCurrency:            c.Query("vs_currency"),             // Quote currency
			Order:                 c.Query("order"),                   // Sort order
			PerPage:               queryInt(c, "per_page"),            // Page size
			Page:                  queryInt(c, "page"),                // Page number
			Sparkline:             c.Query("sparkline") == "true",     // Sparkline flag
			PriceChangePercentage: c.Query("price_change_percentage"), // Change window
		})
		if err != nil {
			upstreamError(c, "crypto list", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
	}
}

// CryptoDetailsHandler proxies GET /coins/{id}
func CryptoDetailsHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.CoinDetails(c.Request.Context(), c.Param("coinId"))
		if err != nil {
			upstreamError(c, "crypto details", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}

// CryptoTrendingHandler proxies GET /search/trending
func CryptoTrendingHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.TrendingCoins(c.Request.Context())
		if err != nil {
			upstreamError(c, "trending crypto", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}

// CryptoChartHandler proxies GET /coins/{id}/market_chart
func CryptoChartHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.CoinMarketChart(c.Request.Context(), c.Param("coinId"),
			c.Query("vs_currency"), queryInt(c, "days"), c.Query("interval"))
		if err != nil {
			upstreamError(c, "crypto chart", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}

// NFTListHandler proxies GET /nfts/list
func NFTListHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.NFTList(c.Request.Context(), c.Query("order"),
			queryInt(c, "per_page"), queryInt(c, "page"))
		if err != nil {
			upstreamError(c, "NFT list", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
	}
}

// NFTDetailsHandler proxies GET /nfts/{id}
func NFTDetailsHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.NFTDetails(c.Request.Context(), c.Param("nftId"))
		if err != nil {
			upstreamError(c, "NFT details", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}

// NFTTrendingHandler proxies the nfts slice of GET /search/trending
func NFTTrendingHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.TrendingNFTs(c.Request.Context())
		if err != nil {
			upstreamError(c, "trending NFTs", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
	}
}

// NFTChartHandler proxies GET /nfts/{id}/market_chart
func NFTChartHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.NFTMarketChart(c.Request.Context(), c.Param("nftId"), queryInt(c, "days"))
		if err != nil {
			upstreamError(c, "NFT chart", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}

// GlobalMarketHandler proxies GET /global
func GlobalMarketHandler(g *market.CoinGeckoClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := g.Global(c.Request.Context())
		if err != nil {
			upstreamError(c, "global market data", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}
