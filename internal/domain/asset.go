package domain

import (
	"strings" // Case-insensitive type normalization
	"time"    // Timestamps
)

// Asset types form a closed set; free-text input is normalized before persisting
const (
	AssetTypeCash   = "CASH"   // Cash ledger row (negative value = wallet debit)
	AssetTypeCrypto = "CRYPTO" // Crypto holding, priced by symbol
	AssetTypeNFT    = "NFT"    // NFT holding
	AssetTypeOther  = "OTHER"  // Anything else the user tracks
)

// Asset Model
type Asset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`    // Primary key
	UserID    uint      `gorm:"index;not null" json:"userId"` // Owning user
	Name      string    `gorm:"not null" json:"name"`    // Display name
	Type      string    `gorm:"not null" json:"type"`    // One of the AssetType constants
	Value     float64   `json:"value"`                   // Dollar value snapshot, signed
	Symbol    string    `json:"symbol"`                  // Optional ticker (e.g. BTC)
	ImageURL  string    `json:"imageUrl"`                // Optional image URL
	CreatedAt time.Time `json:"createdAt"`               // Timestamp of creation
}

// NormalizeAssetType maps free-cased input ("cash", "Crypto") onto the closed
// set. The second return is false for empty or unknown types.
func NormalizeAssetType(t string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case AssetTypeCash:
		return AssetTypeCash, true
	case AssetTypeCrypto:
		return AssetTypeCrypto, true
	case AssetTypeNFT:
		return AssetTypeNFT, true
	case AssetTypeOther:
		return AssetTypeOther, true
	}
	return "", false
}
