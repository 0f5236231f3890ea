package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"asset_tracker/internal/market"
	"asset_tracker/internal/middleware"
	"asset_tracker/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "handler-test-secret"

// fakeHistory is a canned HistoryProvider for portfolio tests
type fakeHistory struct {
	candles map[string][]market.Candle
}

func (f *fakeHistory) HistoHour(_ context.Context, symbol string, _ int) ([]market.Candle, error) {
	if c, ok := f.candles[symbol]; ok {
		return c, nil
	}
	return nil, errors.New("symbol not served")
}

// fakeSnapshot is a canned SnapshotProvider for /latest tests
type fakeSnapshot struct {
	coins []market.Coin
	err   error
}

func (f *fakeSnapshot) TopList(context.Context, int, int) ([]market.Coin, error) {
	return f.coins, f.err
}

func (f *fakeSnapshot) PriceMultiFull(context.Context, []string) ([]market.Coin, error) {
	return f.coins, f.err
}

// newTestRouter wires the handlers exactly like cmd/server, minus redis
func newTestRouter(s store.Store, hist market.HistoryProvider, snap market.SnapshotProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authGroup := r.Group("/api/auth")
	authGroup.POST("/signup", SignupHandler(s, testJWTSecret))
	authGroup.POST("/login", LoginHandler(s, testJWTSecret))
	authed := authGroup.Group("")
	authed.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	authed.GET("/me", ProfileHandler(s))
	authed.GET("/profile", ProfileHandler(s))
	authed.PUT("/profile", UpdateProfileHandler(s))

	assetGroup := r.Group("/api/assets")
	assetGroup.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	assetGroup.GET("", ListAssetsHandler(s))
	assetGroup.POST("", CreateAssetHandler(s, nil))
	assetGroup.POST("/buy", BuyAssetHandler(s, nil))
	assetGroup.PUT("/:id", UpdateAssetHandler(s, nil))
	assetGroup.DELETE("/:id", DeleteAssetHandler(s, nil))

	expenseGroup := r.Group("/api/expenses")
	expenseGroup.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	expenseGroup.GET("", ListExpensesHandler(s))
	expenseGroup.POST("", CreateExpenseHandler(s))
	expenseGroup.PUT("/:id", UpdateExpenseHandler(s))
	expenseGroup.DELETE("/:id", DeleteExpenseHandler(s))

	marketGroup := r.Group("/api/market")
	marketGroup.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	if snap != nil {
		marketGroup.GET("/latest", LatestMarketHandler(snap, nil))
	}
	if hist != nil {
		marketGroup.GET("/portfolio-history", PortfolioHistoryHandler(s, hist, nil))
	}
	return r
}

// doRequest runs one request through the router and returns the recorder
func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorder body into a generic map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signupUser registers a user and returns its bearer token
func signupUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"password": "hunter2hunter2",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
