// Package portfolio derives aggregate statistics from a holdings
// snapshot. Stats are a pure projection: recomputed on every read,
// never stored or incrementally maintained.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Stats holds portfolio-level aggregates for one snapshot.
type Stats struct {
	TotalValue         float64 `json:"total_value"`
	TotalChange        float64 `json:"total_change"`
	TotalChangePercent float64 `json:"total_change_percent"`
	HoldingCount       int     `json:"holding_count"`
	TotalShares        int     `json:"total_shares"`
	Gainers            int     `json:"gainers"`
	Losers             int     `json:"losers"`
}

// Summarize computes Stats over holdings. Percent change is
// change / (value - change) * 100, reported as zero when the
// denominator is zero. Monetary values are rounded to cents.
func Summarize(holdings []models.Holding) Stats {
	stats := Stats{HoldingCount: len(holdings)}

	value := decimal.Zero
	change := decimal.Zero
	for _, h := range holdings {
		shares := decimal.NewFromInt(int64(h.Shares))
		value = value.Add(decimal.NewFromFloat(h.Price).Mul(shares))
		change = change.Add(decimal.NewFromFloat(h.PriceDelta).Mul(shares))

		stats.TotalShares += h.Shares
		if h.PriceDelta >= 0 {
			stats.Gainers++
		} else {
			stats.Losers++
		}
	}

	stats.TotalValue, _ = value.Round(2).Float64()
	stats.TotalChange, _ = change.Round(2).Float64()

	if denom := value.Sub(change); !denom.IsZero() {
		stats.TotalChangePercent, _ = change.Div(denom).Mul(hundred).Round(2).Float64()
	}

	return stats
}
