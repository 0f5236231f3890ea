package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes
	"strconv"  // Path param parsing
	"time"     // Logged timestamps

	"asset_tracker/internal/domain" // Importing domain models
	"asset_tracker/internal/store"  // Persistence interface

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Request struct for creating an asset
type CreateAssetRequest struct {
	Name     string  `json:"name" binding:"required"` // Display name must be provided
	Type     string  `json:"type" binding:"required"` // Asset type must be provided
	Value    float64 `json:"value"`                   // Dollar value snapshot, signed
	Symbol   string  `json:"symbol"`                  // Optional ticker
	ImageURL string  `json:"imageUrl"`                // Optional image URL
}

// Request struct for updating an asset; absent fields are left untouched
type UpdateAssetRequest struct {
	Name     *string  `json:"name"`     // New display name
	Type     *string  `json:"type"`     // New asset type
	Value    *float64 `json:"value"`    // New dollar value
	Symbol   *string  `json:"symbol"`   // New ticker
	ImageURL *string  `json:"imageUrl"` // New image URL
}

// Request struct for buying an asset
type BuyAssetRequest struct {
	Name      string  `json:"name" binding:"required"`     // Display name must be provided
	Type      string  `json:"type" binding:"required"`     // Asset type must be provided
	Value     float64 `json:"value" binding:"required,gt=0"` // Purchase price must be positive
	Symbol    string  `json:"symbol"`                      // Optional ticker
	ImageURL  string  `json:"imageUrl"`                    // Optional image URL
	UseWallet bool    `json:"useWallet"`                   // Fund the purchase from CASH rows
}

// ListAssetsHandler returns the caller's assets, newest first
func ListAssetsHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		assets, err := s.AssetsByUser(c.Request.Context(), userID) // Fetch rows
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to list assets")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch assets"})
			return
		}
		if assets == nil {
			assets = []domain.Asset{} // Serialize as [] rather than null
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": assets, "count": len(assets)})
	}
}

// CreateAssetHandler persists a new asset for the caller
func CreateAssetHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		var req CreateAssetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		// Asset type must belong to the closed set
		assetType, valid := domain.NormalizeAssetType(req.Type)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid asset type"})
			return
		}
		// Owner id comes from the token, never from the payload
		asset := domain.Asset{
			UserID:   userID,       // Authenticated owner
			Name:     req.Name,     // Display name
			Type:     assetType,    // Normalized type
			Value:    req.Value,    // Dollar value snapshot
			Symbol:   req.Symbol,   // Optional ticker
			ImageURL: req.ImageURL, // Optional image URL
		}
		if err := s.CreateAsset(c.Request.Context(), &asset); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to create asset")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create asset"})
			return
		}
		// A new row changes the portfolio series
		invalidatePortfolioCache(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": asset})
	}
}

// UpdateAssetHandler mutates one of the caller's assets. The row is fetched
// scoped by owner first, so another user's row reads as missing.
func UpdateAssetHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse path id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid asset id"})
			return
		}
		var req UpdateAssetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		// Ownership guard: fetch scoped by owner before mutating
		asset, err := s.AssetByID(c.Request.Context(), uint(id), userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Asset not found"})
			return
		}
		// Apply only the provided fields
		if req.Name != nil {
			asset.Name = *req.Name
		}
		if req.Type != nil {
			assetType, valid := domain.NormalizeAssetType(*req.Type)
			if !valid {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid asset type"})
				return
			}
			asset.Type = assetType
		}
		if req.Value != nil {
			asset.Value = *req.Value
		}
		if req.Symbol != nil {
			asset.Symbol = *req.Symbol
		}
		if req.ImageURL != nil {
			asset.ImageURL = *req.ImageURL
		}
		if err := s.UpdateAsset(c.Request.Context(), asset); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to update asset")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update asset"})
			return
		}
		invalidatePortfolioCache(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": asset})
	}
}

// DeleteAssetHandler removes one of the caller's assets
func DeleteAssetHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse path id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid asset id"})
			return
		}
		// Delete is owner-scoped; a foreign row reads as missing
		if err := s.DeleteAsset(c.Request.Context(), uint(id), userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Asset not found"})
				return
			}
			logrus.WithField("error", err.Error()).Error("Failed to delete asset")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete asset"})
			return
		}
		invalidatePortfolioCache(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Asset deleted"})
	}
}

// BuyAssetHandler records a purchase. With useWallet the purchased asset and
// a matching CASH debit row are written in one transaction; the wallet is the
// sum of the caller's CASH rows and must cover the price.
func BuyAssetHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		var req BuyAssetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		// Asset type must belong to the closed set
		assetType, valid := domain.NormalizeAssetType(req.Type)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid asset type"})
			return
		}
		// Purchased asset row
		asset := domain.Asset{
			UserID:   userID,       // Authenticated owner
			Name:     req.Name,     // Display name
			Type:     assetType,    // Normalized type
			Value:    req.Value,    // Purchase price
			Symbol:   req.Symbol,   // Optional ticker
			ImageURL: req.ImageURL, // Optional image URL
		}
		// Direct purchase: single insert, no wallet involved
		if !req.UseWallet {
			if err := s.CreateAsset(c.Request.Context(), &asset); err != nil {
				logrus.WithField("error", err.Error()).Error("Buy failed")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Buy failed"})
				return
			}
			invalidatePortfolioCache(c.Request.Context(), rdb, userID)
			c.JSON(http.StatusCreated, gin.H{"success": true, "data": asset})
			return
		}
		// Wallet-funded purchase: matching CASH debit row
		debit := domain.Asset{
			UserID: userID,               // Authenticated owner
			Name:   "Bought " + req.Name, // Ledger entry label
			Type:   domain.AssetTypeCash, // Debit posts against cash
			Value:  -req.Value,           // Negative value is a debit
			Symbol: "USD",                // Debits are dollar rows
		}
		// Both inserts succeed or neither does
		if err := s.BuyWithWallet(c.Request.Context(), &asset, &debit); err != nil {
			if errors.Is(err, store.ErrInsufficientFunds) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient wallet funds"})
				return
			}
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Buyer user ID
				"amount":  req.Value,   // Purchase price
				"error":   err.Error(), // Error message
			}).Error("Wallet buy failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Buy failed"})
			return
		}
		// Log successful purchase
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // Buyer user ID
			"amount":    req.Value,                       // Purchase price
			"type":      "wallet_buy",                    // Transaction type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Wallet purchase")
		invalidatePortfolioCache(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"asset": asset, "deduction": debit}})
	}
}
