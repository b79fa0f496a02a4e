// Package screener selects trade candidates: low-price USDT pairs with the
// highest quote-asset turnover.
package screener

import (
	"context"
	"sort"
	"strings"

	"crypto-trading-bot-go/internal/exchange"
	"crypto-trading-bot-go/internal/logger"
	"crypto-trading-bot-go/internal/models"

	"go.uber.org/zap"
)

// Screener queries the market gateway for ticker snapshots and ranks them.
type Screener struct {
	exchange exchange.Exchange
	onError  func(message string)
	logger   *zap.SugaredLogger
}

// NewScreener creates a screener. onError, if non-nil, is invoked with a
// description of any gateway failure; the failure never propagates.
func NewScreener(ex exchange.Exchange, onError func(message string)) *Screener {
	return &Screener{
		exchange: ex,
		onError:  onError,
		logger:   logger.S(),
	}
}

// ListViableCoins returns the topN USDT pairs priced below maxPrice, ordered
// by descending quote volume. Ties keep the gateway's original order so runs
// are reproducible. On gateway error it reports and returns an empty list.
func (s *Screener) ListViableCoins(ctx context.Context, maxPrice float64, topN int) []models.ViableCoin {
	tickers, err := s.exchange.GetAllTickers(ctx)
	if err != nil {
		s.logger.Errorf("error getting viable coins: %v", err)
		if s.onError != nil {
			s.onError("error getting viable coins: " + err.Error())
		}
		return []models.ViableCoin{}
	}

	viable := make([]models.ViableCoin, 0, topN)
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		if t.LastPrice <= 0 || t.LastPrice >= maxPrice {
			continue
		}
		viable = append(viable, models.ViableCoin{
			Symbol:      t.Symbol,
			Price:       t.LastPrice,
			QuoteVolume: t.Volume * t.LastPrice,
		})
	}

	sort.SliceStable(viable, func(i, j int) bool {
		return viable[i].QuoteVolume > viable[j].QuoteVolume
	})

	if len(viable) > topN {
		viable = viable[:topN]
	}
	return viable
}
