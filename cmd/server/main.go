package main

import (
	"context" // context package is needed for Redis operations
	"time"    // Health timestamps and CORS max age

	"asset_tracker/internal/api"        // Custom package for API handlers
	"asset_tracker/internal/config"     // Custom package for configuration
	"asset_tracker/internal/domain"     // Custom package for domain models
	"asset_tracker/internal/market"     // Custom package for upstream market clients
	"asset_tracker/internal/middleware" // Custom package for middleware
	"asset_tracker/internal/store"      // Custom package for persistence

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	// Keep the schema current on boot
	if err := db.AutoMigrate(&domain.User{}, &domain.Asset{}, &domain.Expense{}); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Persistence and upstream provider clients
	st := store.NewGormStore(db)                                          // GORM-backed store
	cryptoCompare := market.NewCryptoCompareClient("", cfg.CryptoCompareKey) // Price snapshot/history provider
	coinGecko := market.NewCoinGeckoClient("", cfg.CoinGeckoKey)          // Metadata passthrough provider

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// CORS for the SPA origins
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,                               // Allowed origins from env
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, // REST verbs
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"}, // Bearer auth header
		AllowCredentials: true,                                          // Cookies/credentials allowed
		MaxAge:           12 * time.Hour,                                // Preflight cache
	}))

	// Health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success":   true,                            // Server is up
			"message":   "Server running",                // Status message
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		})
	})

	// Auth routes
	authGroup := r.Group("/api/auth")
	authGroup.POST("/signup", api.SignupHandler(st, cfg.JWTSecret)) // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(st, cfg.JWTSecret))   // Login endpoint
	// Authenticated profile routes
	authed := authGroup.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authed.GET("/me", api.ProfileHandler(st))             // Current user endpoint
	authed.GET("/profile", api.ProfileHandler(st))        // Profile fetch endpoint
	authed.PUT("/profile", api.UpdateProfileHandler(st))  // Profile update endpoint

	// Asset routes (protected by JWT)
	assetGroup := r.Group("/api/assets")
	assetGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	assetGroup.GET("", api.ListAssetsHandler(st))                      // List assets endpoint
	assetGroup.POST("", api.CreateAssetHandler(st, redisClient))       // Create asset endpoint
	assetGroup.POST("/buy", api.BuyAssetHandler(st, redisClient))      // Buy asset endpoint
	assetGroup.PUT("/:id", api.UpdateAssetHandler(st, redisClient))    // Update asset endpoint
	assetGroup.DELETE("/:id", api.DeleteAssetHandler(st, redisClient)) // Delete asset endpoint

	// Expense routes (protected by JWT)
	expenseGroup := r.Group("/api/expenses")
	expenseGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	expenseGroup.GET("", api.ListExpensesHandler(st))          // List expenses endpoint
	expenseGroup.POST("", api.CreateExpenseHandler(st))        // Create expense endpoint
	expenseGroup.PUT("/:id", api.UpdateExpenseHandler(st))     // Update expense endpoint
	expenseGroup.DELETE("/:id", api.DeleteExpenseHandler(st))  // Delete expense endpoint

	// Market routes
	marketGroup := r.Group("/api/market")
	// Authenticated snapshot and portfolio endpoints
	authedMarket := marketGroup.Group("")
	authedMarket.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authedMarket.GET("/latest", api.LatestMarketHandler(cryptoCompare, redisClient))                     // Market snapshot endpoint
	authedMarket.GET("/portfolio-history", api.PortfolioHistoryHandler(st, cryptoCompare, redisClient)) // Portfolio series endpoint
	// Unauthenticated CoinGecko passthroughs
	marketGroup.GET("/crypto/list", api.CryptoListHandler(coinGecko))              // Coin list endpoint
	marketGroup.GET("/crypto/details/:coinId", api.CryptoDetailsHandler(coinGecko)) // Coin details endpoint
	marketGroup.GET("/crypto/trending", api.CryptoTrendingHandler(coinGecko))      // Trending coins endpoint
	marketGroup.GET("/crypto/chart/:coinId", api.CryptoChartHandler(coinGecko))    // Coin chart endpoint
	marketGroup.GET("/nft/list", api.NFTListHandler(coinGecko))                    // NFT list endpoint
	marketGroup.GET("/nft/details/:nftId", api.NFTDetailsHandler(coinGecko))       // NFT details endpoint
	marketGroup.GET("/nft/trending", api.NFTTrendingHandler(coinGecko))            // Trending NFTs endpoint
	marketGroup.GET("/nft/chart/:nftId", api.NFTChartHandler(coinGecko))           // NFT chart endpoint
	marketGroup.GET("/global", api.GlobalMarketHandler(coinGecko))                 // Global market endpoint

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server exited: %v", err) // Fatal error on listener failure
	}
}
