// Package predictor defines the forecast contract consumed by the trading
// engine. The engine only ever needs a single near-term price estimate; how
// that estimate is produced stays entirely behind the interface.
package predictor

import (
	"fmt"

	"crypto-trading-bot-go/internal/models"

	"gonum.org/v1/gonum/stat"
)

// Predictor produces a price forecast one interval ahead of the last candle.
type Predictor interface {
	Predict(candles []models.Candle) (float64, error)
}

// LeastSquares is the default forecaster: an ordinary least-squares fit over
// the closing prices of the trailing window, extrapolated one step forward.
type LeastSquares struct {
	Window int
}

// NewLeastSquares creates a forecaster with the given lookback window.
func NewLeastSquares(window int) *LeastSquares {
	return &LeastSquares{Window: window}
}

// Predict fits close = alpha + beta*i over the last Window candles and
// returns the value at the next index.
func (p *LeastSquares) Predict(candles []models.Candle) (float64, error) {
	window := p.Window
	if window < 2 {
		window = 2
	}
	if len(candles) < 2 {
		return 0, fmt.Errorf("need at least 2 candles to forecast, got %d", len(candles))
	}
	if len(candles) > window {
		candles = candles[len(candles)-window:]
	}

	xs := make([]float64, len(candles))
	ys := make([]float64, len(candles))
	for i, c := range candles {
		xs[i] = float64(i)
		ys[i] = c.Close
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return alpha + beta*float64(len(candles)), nil
}
