package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createAsset posts one asset and returns its id
func createAsset(t *testing.T, r *gin.Engine, token string, payload gin.H) uint {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/assets", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]any)
	return uint(data["id"].(float64))
}

// listAssets fetches the caller's assets as raw maps
func listAssets(t *testing.T, r *gin.Engine, token string) []any {
	t.Helper()
	w := doRequest(t, r, http.MethodGet, "/api/assets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decodeBody(t, w)["data"].([]any)
}

func TestAssetCreateAndListOrder(t *testing.T) {
	r := newTestRouter(newMockStore(), nil, nil)
	token := signupUser(t, r, "lister@example.com")

	for i := 1; i <= 3; i++ {
		createAsset(t, r, token, gin.H{"name": fmt.Sprintf("asset-%d", i), "type": "cash", "value": float64(i)})
	}

	assets := listAssets(t, r, token)
	require.Len(t, assets, 3)
	// Newest first
	assert.Equal(t, "asset-3", assets[0].(map[string]any)["name"])
	assert.Equal(t, "asset-1", assets[2].(map[string]any)["name"])
	// Free-cased input lands on the closed enum
	assert.Equal(t, "CASH", assets[0].(map[string]any)["type"])

	// Repeated reads with no writes return identical results
	again := listAssets(t, r, token)
	assert.Equal(t, assets, again)
}

func TestAssetTypeValidation(t *testing.T) {
	r := newTestRouter(newMockStore(), nil, nil)
	token := signupUser(t, r, "typed@example.com")

	w := doRequest(t, r, http.MethodPost, "/api/assets", token, gin.H{
		"name": "mystery", "type": "real-estate", "value": 10.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// All four canonical types pass regardless of input casing
	for _, typ := range []string{"cash", "CRYPTO", "Nft", "other"} {
		w := doRequest(t, r, http.MethodPost, "/api/assets", token, gin.H{
			"name": "ok-" + typ, "type": typ, "value": 1.0,
		})
		assert.Equal(t, http.StatusCreated, w.Code, typ)
	}
}

func TestAssetOwnershipGuard(t *testing.T) {
	r := newTestRouter(newMockStore(), nil, nil)
	owner := signupUser(t, r, "owner@example.com")
	intruder := signupUser(t, r, "intruder@example.com")

	id := createAsset(t, r, owner, gin.H{"name": "precious", "type": "nft", "value": 500.0})
	path := fmt.Sprintf("/api/assets/%d", id)

	// Another authenticated user cannot mutate or remove the row
	w := doRequest(t, r, http.MethodPut, path, intruder, gin.H{"name": "stolen"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, r, http.MethodDelete, path, intruder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The row is untouched
	assets := listAssets(t, r, owner)
	require.Len(t, assets, 1)
	assert.Equal(t, "precious", assets[0].(map[string]any)["name"])

	// The owner can
	w = doRequest(t, r, http.MethodPut, path, owner, gin.H{"name": "renamed"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, r, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, listAssets(t, r, owner))
}

func TestWalletBuyInsufficientFunds(t *testing.T) {
	r := newTestRouter(newMockStore(), nil, nil)
	token := signupUser(t, r, "poor@example.com")

	// CASH rows summing to $100
	createAsset(t, r, token, gin.H{"name": "Paycheck", "type": "cash", "value": 80.0})
	createAsset(t, r, token, gin.H{"name": "Found money", "type": "cash", "value": 20.0})

	w := doRequest(t, r, http.MethodPost, "/api/assets/buy", token, gin.H{
		"name": "ETH", "type": "crypto", "value": 150.0, "symbol": "ETH", "useWallet": true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The failed buy wrote nothing
	assert.Len(t, listAssets(t, r, token), 2)
}

func TestWalletBuyCreatesAssetAndDebit(t *testing.T) {
	r := newTestRouter(newMockStore(), nil, nil)
	token := signupUser(t, r, "buyer@example.com")
	createAsset(t, r, token, gin.H{"name": "Paycheck", "type": "cash", "value": 100.0})

	w := doRequest(t, r, http.MethodPost, "/api/assets/buy", token, gin.H{
		"name": "Bitcoin", "type": "crypto", "value": 60.0, "symbol": "BTC", "useWallet": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeBody(t, w)["data"].(map[string]any)
	purchased := data["asset"].(map[string]any)
	deduction := data["deduction"].(map[string]any)
	assert.Equal(t, 60.0, purchased["value"])
	assert.Equal(t, -60.0, deduction["value"])
	assert.Equal(t, "CASH", deduction["type"])
	assert.Equal(t, "Bought Bitcoin", deduction["name"])

	// Exactly two new rows, and the remaining cash balance is $40
	assets := listAssets(t, r, token)
	require.Len(t, assets, 3)
	var cash float64
	for _, a := range assets {
		m := a.(map[string]any)
		if m["type"] == "CASH" {
			cash += m["value"].(float64)
		}
	}
	assert.Equal(t, 40.0, cash)
}

func TestDirectBuySkipsWallet(t *testing.T) {
	r := newTestRouter(newMockStore(), nil, nil)
	token := signupUser(t, r, "direct@example.com")

	// No cash at all, but a direct buy does not touch the wallet
	w := doRequest(t, r, http.MethodPost, "/api/assets/buy", token, gin.H{
		"name": "Bitcoin", "type": "crypto", "value": 250.0, "symbol": "BTC", "useWallet": false,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, listAssets(t, r, token), 1)
}
