// Package indicator enriches a candle series with the technical indicators
// the trading engine evaluates: RSI(14), MACD(12,26) and its signal line.
// Everything here is deterministic and side-effect free.
package indicator

import (
	"math"

	"crypto-trading-bot-go/internal/models"
)

const (
	RSIPeriod    = 14
	MACDFast     = 12
	MACDSlow     = 26
	SignalPeriod = 9
)

// MinCandles is the shortest series for which the decision row carries
// defined values for all three indicators.
const MinCandles = MACDSlow

// Enrich computes RSI, MACD and Signal over the series and writes them into
// the candles in place. The slice is returned for convenience.
//
// Leading rows without enough history get NaN instead of an error; callers
// must not act on a decision row containing NaN.
func Enrich(candles []models.Candle) []models.Candle {
	if len(candles) == 0 {
		return candles
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	rsi := relativeStrength(closes)
	macd, signal := macdLines(closes)

	for i := range candles {
		candles[i].RSI = rsi[i]
		candles[i].MACD = macd[i]
		candles[i].Signal = signal[i]
	}
	return candles
}

// relativeStrength computes RSI over a simple rolling window of close deltas.
// A window whose average loss is zero saturates to 100 rather than dividing
// by zero.
func relativeStrength(closes []float64) []float64 {
	rsi := make([]float64, len(closes))
	for i := range rsi {
		rsi[i] = math.NaN()
	}
	if len(closes) <= RSIPeriod {
		return rsi
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := RSIPeriod; i < len(closes); i++ {
		var gainSum, lossSum float64
		for j := i - RSIPeriod + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		avgGain := gainSum / RSIPeriod
		avgLoss := lossSum / RSIPeriod

		if avgLoss == 0 {
			rsi[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi
}

// macdLines computes MACD = EMA(close,12) - EMA(close,26) and its 9-period
// signal line.
func macdLines(closes []float64) (macd, signal []float64) {
	fast := ema(closes, MACDFast)
	slow := ema(closes, MACDSlow)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	signal = ema(macd, SignalPeriod)
	return macd, signal
}

// ema is the non-adjusted exponential moving average: smoothing factor
// 2/(span+1), seeded with the first value.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
