package market

import (
	"context" // Per-fetch timeouts
	"sync"    // Guarding the shared history map
	"time"    // Timeout duration

	"asset_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/sync/errgroup" // Bounded fan-out
)

const (
	historyHours   = 24               // Hourly candles requested per symbol
	fetchParallel  = 4                // Max concurrent upstream fetches
	fetchTimeout   = 10 * time.Second // Per-symbol upstream deadline
)

// PortfolioPoint is one sample of the aggregate portfolio value series
type PortfolioPoint struct {
	Time  int64   `json:"time"`  // Unix timestamp of the sample
	Value float64 `json:"value"` // Aggregate USD value at that time
}

// PortfolioHistory builds a ~24h hourly series of the aggregate value of the
// given crypto assets.
//
// Per distinct symbol, the last 24 hourly candles are fetched with bounded
// concurrency and a per-call timeout; a symbol whose fetch fails is marked
// unavailable and logged, never aborting the request. Each asset's implied
// quantity is its stored dollar value divided by the most recent close (zero
// when no history resolved or the close is zero). For every index 0..24 the
// series sums quantity x close; an asset without history at that index
// contributes its stored value flat instead. Indexes where no asset produced
// a timestamp are skipped, so the result is <= 25 chronological points.
func PortfolioHistory(ctx context.Context, provider HistoryProvider, assets []domain.Asset) []PortfolioPoint {
	points := make([]PortfolioPoint, 0, historyHours+1)
	if len(assets) == 0 {
		return points
	}

	// Distinct symbols across the assets
	symbols := make([]string, 0, len(assets))
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		if a.Symbol != "" && !seen[a.Symbol] {
			seen[a.Symbol] = true
			symbols = append(symbols, a.Symbol)
		}
	}

	// Fan out the history fetches; failures degrade, they do not propagate
	histories := make(map[string][]Candle, len(symbols))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallel)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, fetchTimeout)
			defer cancel()
			candles, err := provider.HistoHour(fctx, symbol, historyHours)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"symbol": symbol,      // Symbol whose history is unavailable
					"error":  err.Error(), // Upstream error
				}).Warn("Price history unavailable")
				return nil
			}
			mu.Lock()
			histories[symbol] = candles
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // Workers never return errors

	// Implied quantity per asset: stored dollar value over most recent close
	type holding struct {
		asset domain.Asset // The asset row
		qty   float64      // Implied unit count, 0 when unpriceable
	}
	holdings := make([]holding, 0, len(assets))
	for _, a := range assets {
		h := holding{asset: a}
		if hist := histories[a.Symbol]; len(hist) > 0 {
			if last := hist[len(hist)-1].Close; last > 0 {
				h.qty = a.Value / last
			}
		}
		holdings = append(holdings, h)
	}

	// Aggregate the series point by point
	for i := 0; i <= historyHours; i++ {
		var total float64
		var ts int64
		for _, h := range holdings {
			hist := histories[h.asset.Symbol]
			if i < len(hist) {
				total += h.qty * hist[i].Close
				ts = hist[i].Time
			} else {
				// No live sample for this asset: carry its stored value flat
				total += h.asset.Value
			}
		}
		// Only emit indexes where some asset produced a timestamp
		if ts > 0 {
			points = append(points, PortfolioPoint{Time: ts, Value: total})
		}
	}
	return points
}
