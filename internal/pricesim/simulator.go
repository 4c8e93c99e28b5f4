// Package pricesim generates a bounded random walk per instrument.
// Prices are synthetic display state, not a market-data feed.
package pricesim

import (
	"math"
	"math/rand"
	"time"
)

const (
	// Volatility scales the per-tick fractional price change.
	Volatility = 0.02
	// FloorPrice is the minimum simulated price; the walk never decays
	// below it.
	FloorPrice = 10.00

	initialMin  = 50.0
	initialSpan = 400.0
)

// Tick is one simulated price step.
type Tick struct {
	Price    float64
	Delta    float64
	DeltaPct float64
}

// Simulator draws random price steps. It carries no memory of trend:
// each Tick is a pure function of the previous price and the next draw,
// restartable at any price.
type Simulator struct {
	rng *rand.Rand
}

// New creates a Simulator seeded from the clock.
func New() *Simulator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a Simulator with a caller-supplied source, for
// deterministic tests.
func NewWithSource(src rand.Source) *Simulator {
	return &Simulator{rng: rand.New(src)}
}

// Next advances current one step: a uniform draw in [-1, 1) scaled by
// Volatility, applied multiplicatively and floored at FloorPrice. The
// deltas are derived before rounding; all three outputs are rounded to
// cents once, here at the boundary.
func (s *Simulator) Next(current float64) Tick {
	frac := (s.rng.Float64() - 0.5) * 2 * Volatility

	price := current * (1 + frac)
	if price < FloorPrice {
		price = FloorPrice
	}

	delta := price - current
	var pct float64
	if current != 0 {
		pct = delta / current * 100
	}

	return Tick{
		Price:    Round2(price),
		Delta:    Round2(delta),
		DeltaPct: Round2(pct),
	}
}

// InitialPrice draws the starting price for a newly created holding,
// uniform over [50, 450), rounded to cents.
func (s *Simulator) InitialPrice() float64 {
	return Round2(initialMin + s.rng.Float64()*initialSpan)
}

// Round2 rounds to cent precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
