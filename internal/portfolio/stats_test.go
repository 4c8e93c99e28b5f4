package portfolio

import (
	"testing"

	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/models"
)

func holding(price, delta float64, shares int) models.Holding {
	return models.Holding{Price: price, PriceDelta: delta, Shares: shares}
}

func TestSummarize(t *testing.T) {
	t.Run("aggregates value and change per share", func(t *testing.T) {
		stats := Summarize([]models.Holding{
			holding(100.00, 5.00, 2),
			holding(50.00, -5.00, 1),
		})

		if stats.TotalValue != 250.00 {
			t.Errorf("total value = %v, want 250.00", stats.TotalValue)
		}
		if stats.TotalChange != 5.00 {
			t.Errorf("total change = %v, want 5.00", stats.TotalChange)
		}
		// 5 / (250 - 5) * 100 = 2.0408... rounds to 2.04
		if stats.TotalChangePercent != 2.04 {
			t.Errorf("total change percent = %v, want 2.04", stats.TotalChangePercent)
		}
		if stats.HoldingCount != 2 || stats.TotalShares != 3 {
			t.Errorf("counts = (%d holdings, %d shares), want (2, 3)", stats.HoldingCount, stats.TotalShares)
		}
		if stats.Gainers != 1 || stats.Losers != 1 {
			t.Errorf("gainers/losers = %d/%d, want 1/1", stats.Gainers, stats.Losers)
		}
	})

	t.Run("empty snapshot yields zero stats", func(t *testing.T) {
		stats := Summarize(nil)
		if stats != (Stats{}) {
			t.Errorf("expected zero stats, got %+v", stats)
		}
	})

	t.Run("zero denominator reports zero percent", func(t *testing.T) {
		// value - change == 0: the position was worthless before the move.
		stats := Summarize([]models.Holding{holding(5.00, 5.00, 1)})
		if stats.TotalChangePercent != 0 {
			t.Errorf("total change percent = %v, want 0", stats.TotalChangePercent)
		}
	})

	t.Run("flat holding counts as gainer", func(t *testing.T) {
		stats := Summarize([]models.Holding{holding(80.00, 0, 4)})
		if stats.Gainers != 1 || stats.Losers != 0 {
			t.Errorf("gainers/losers = %d/%d, want 1/0", stats.Gainers, stats.Losers)
		}
	})

	t.Run("cent-level sums avoid float drift", func(t *testing.T) {
		holdings := make([]models.Holding, 10)
		for i := range holdings {
			holdings[i] = holding(0.10, 0.01, 1)
		}
		stats := Summarize(holdings)
		if stats.TotalValue != 1.00 {
			t.Errorf("total value = %v, want 1.00", stats.TotalValue)
		}
		if stats.TotalChange != 0.10 {
			t.Errorf("total change = %v, want 0.10", stats.TotalChange)
		}
	})
}
