package exchange

import (
	"context"

	"crypto-trading-bot-go/internal/models"
)

// Exchange defines everything the trading engine needs from a market gateway.
// Having the engine depend on this interface keeps live trading, paper
// trading and tests interchangeable. Every call can fail and every failure
// is recoverable from the engine's point of view.
type Exchange interface {
	// GetAllTickers returns a 24h snapshot for every symbol.
	GetAllTickers(ctx context.Context) ([]models.Ticker, error)

	// GetKlines returns up to limit candles for symbol at the given
	// interval, ascending by open time.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)

	// GetPrice returns the current spot price for symbol.
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// GetSymbolRule returns the LOT_SIZE constraints for symbol.
	GetSymbolRule(ctx context.Context, symbol string) (*models.SymbolRule, error)

	// GetAssetBalance returns the free balance of a single asset.
	GetAssetBalance(ctx context.Context, asset string) (float64, error)

	// PlaceMarketOrder executes a market order and returns the fill.
	PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, quantity float64, clientOrderID string) (*models.Fill, error)
}
