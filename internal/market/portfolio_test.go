package market

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"asset_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider serves canned candles and records fetch concurrency
type stubProvider struct {
	candles  map[string][]Candle
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *stubProvider) HistoHour(ctx context.Context, symbol string, _ int) ([]Candle, error) {
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if cur <= seen || s.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c, ok := s.candles[symbol]; ok {
		return c, nil
	}
	return nil, errors.New("no data for " + symbol)
}

// hourly builds n candles starting at base with the given closes
func hourly(base int64, closes ...float64) []Candle {
	out := make([]Candle, len(closes))
	for i, c := range closes {
		out[i] = Candle{Time: base + int64(i)*3600, Close: c}
	}
	return out
}

func TestPortfolioHistoryEmptyAssets(t *testing.T) {
	p := &stubProvider{}
	points := PortfolioHistory(context.Background(), p, nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestPortfolioHistorySingleSymbol(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 200 + float64(i)
	}
	p := &stubProvider{candles: map[string][]Candle{"BTC": hourly(1700000000, closes...)}}

	assets := []domain.Asset{{Name: "Bitcoin", Type: domain.AssetTypeCrypto, Symbol: "BTC", Value: 450}}
	points := PortfolioHistory(context.Background(), p, assets)
	require.Len(t, points, 25)

	qty := 450.0 / closes[24]
	for i, pt := range points {
		assert.InDelta(t, qty*closes[i], pt.Value, 1e-9, "point %d", i)
		assert.Equal(t, int64(1700000000+i*3600), pt.Time)
	}
}

func TestPortfolioHistoryShortHistoryTruncatesSeries(t *testing.T) {
	// Only 24 candles: index 24 has no timestamp anywhere, so it is skipped
	closes := make([]float64, 24)
	for i := range closes {
		closes[i] = 100
	}
	p := &stubProvider{candles: map[string][]Candle{"ETH": hourly(1700000000, closes...)}}

	assets := []domain.Asset{{Type: domain.AssetTypeCrypto, Symbol: "ETH", Value: 300}}
	points := PortfolioHistory(context.Background(), p, assets)
	assert.Len(t, points, 24)
}

func TestPortfolioHistoryFlatFallbackForUnresolvedSymbol(t *testing.T) {
	closes := []float64{100, 110, 120}
	p := &stubProvider{candles: map[string][]Candle{"BTC": hourly(1700000000, closes...)}}

	assets := []domain.Asset{
		{Type: domain.AssetTypeCrypto, Symbol: "BTC", Value: 240},
		{Type: domain.AssetTypeCrypto, Symbol: "DOGE", Value: 55}, // fetch fails
	}
	points := PortfolioHistory(context.Background(), p, assets)
	require.Len(t, points, 3)

	// The unresolved asset rides along flat at its stored value
	qty := 240.0 / closes[2]
	for i, pt := range points {
		assert.InDelta(t, qty*closes[i]+55, pt.Value, 1e-9)
	}
}

func TestPortfolioHistoryZeroCloseMeansZeroQuantity(t *testing.T) {
	// Most recent close is zero: the dollar value cannot convert to units
	p := &stubProvider{candles: map[string][]Candle{"RUG": hourly(1700000000, 5, 3, 0)}}

	assets := []domain.Asset{{Type: domain.AssetTypeCrypto, Symbol: "RUG", Value: 80}}
	points := PortfolioHistory(context.Background(), p, assets)
	require.Len(t, points, 3)
	for _, pt := range points {
		assert.Zero(t, pt.Value)
	}
}

func TestPortfolioHistoryAllSymbolsUnavailable(t *testing.T) {
	p := &stubProvider{} // every fetch errors
	assets := []domain.Asset{
		{Type: domain.AssetTypeCrypto, Symbol: "AAA", Value: 10},
		{Type: domain.AssetTypeCrypto, Symbol: "BBB", Value: 20},
	}
	// No timestamps resolve, so the series is empty rather than a flat line
	points := PortfolioHistory(context.Background(), p, assets)
	assert.Empty(t, points)
}

func TestPortfolioHistoryBoundsConcurrency(t *testing.T) {
	candles := map[string][]Candle{}
	assets := make([]domain.Asset, 0, 10)
	for _, sym := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		candles[sym] = hourly(1700000000, 1, 2, 3)
		assets = append(assets, domain.Asset{Type: domain.AssetTypeCrypto, Symbol: sym, Value: 1})
	}
	p := &stubProvider{candles: candles, delay: 20 * time.Millisecond}

	points := PortfolioHistory(context.Background(), p, assets)
	assert.NotEmpty(t, points)
	assert.LessOrEqual(t, p.maxSeen.Load(), int32(fetchParallel))
}

func TestPortfolioHistoryDuplicateSymbolsFetchOnce(t *testing.T) {
	var calls atomic.Int32
	p := &countingProvider{inner: &stubProvider{candles: map[string][]Candle{
		"BTC": hourly(1700000000, 100, 100, 100),
	}}, calls: &calls}

	assets := []domain.Asset{
		{Type: domain.AssetTypeCrypto, Symbol: "BTC", Value: 100},
		{Type: domain.AssetTypeCrypto, Symbol: "BTC", Value: 300},
	}
	points := PortfolioHistory(context.Background(), p, assets)
	require.Len(t, points, 3)
	assert.Equal(t, int32(1), calls.Load())
	// Both holdings of the same symbol contribute
	assert.InDelta(t, 400.0, points[0].Value, 1e-9)
}

// countingProvider counts HistoHour invocations
type countingProvider struct {
	inner HistoryProvider
	calls *atomic.Int32
}

func (c *countingProvider) HistoHour(ctx context.Context, symbol string, limit int) ([]Candle, error) {
	c.calls.Add(1)
	return c.inner.HistoHour(ctx, symbol, limit)
}
