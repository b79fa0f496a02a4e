package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"crypto-trading-bot-go/internal/logger"
	"crypto-trading-bot-go/internal/models"

	"github.com/adshao/go-binance/v2"
	"go.uber.org/zap"
)

// BinanceExchange implements Exchange against the Binance spot API.
type BinanceExchange struct {
	client *binance.Client
	logger *zap.SugaredLogger
}

// NewBinanceExchange creates a gateway to Binance. Market-data calls work
// without credentials; account and order calls need them. baseURL overrides
// the production endpoint when non-empty (e.g. for the testnet).
func NewBinanceExchange(apiKey, secretKey, baseURL string) *BinanceExchange {
	client := binance.NewClient(apiKey, secretKey)
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return &BinanceExchange{
		client: client,
		logger: logger.S(),
	}
}

// GetAllTickers returns the 24h snapshot for every symbol.
func (e *BinanceExchange) GetAllTickers(ctx context.Context) ([]models.Ticker, error) {
	stats, err := e.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickers: %w", err)
	}

	tickers := make([]models.Ticker, 0, len(stats))
	for _, s := range stats {
		price, errP := strconv.ParseFloat(s.LastPrice, 64)
		volume, errV := strconv.ParseFloat(s.Volume, 64)
		if errP != nil || errV != nil {
			// A malformed row must not poison the whole snapshot.
			e.logger.Debugf("skipping unparsable ticker %s: price=%q volume=%q", s.Symbol, s.LastPrice, s.Volume)
			continue
		}
		tickers = append(tickers, models.Ticker{
			Symbol:    s.Symbol,
			LastPrice: price,
			Volume:    volume,
		})
	}
	return tickers, nil
}

// GetKlines fetches up to limit candles, ascending by open time.
func (e *BinanceExchange) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	klines, err := e.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines for %s: %w", symbol, err)
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, errC := strconv.ParseFloat(k.Close, 64)
		volume, errV := strconv.ParseFloat(k.Volume, 64)
		if errC != nil || errV != nil {
			return nil, fmt.Errorf("unparsable kline for %s at %d", symbol, k.OpenTime)
		}
		candles = append(candles, models.Candle{
			OpenTime: time.UnixMilli(k.OpenTime),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
		})
	}
	return candles, nil
}

// GetPrice returns the current spot price for symbol.
func (e *BinanceExchange) GetPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := e.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch price for %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no price returned for %s", symbol)
	}
	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable price %q for %s", prices[0].Price, symbol)
	}
	return price, nil
}

// GetSymbolRule extracts the LOT_SIZE filter for symbol.
func (e *BinanceExchange) GetSymbolRule(ctx context.Context, symbol string) (*models.SymbolRule, error) {
	info, err := e.client.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange info for %s: %w", symbol, err)
	}
	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		lotSize := s.LotSizeFilter()
		if lotSize == nil {
			return nil, fmt.Errorf("no LOT_SIZE filter for %s", symbol)
		}
		return &models.SymbolRule{
			MinQuantity: lotSize.MinQuantity,
			StepSize:    lotSize.StepSize,
		}, nil
	}
	return nil, fmt.Errorf("symbol %s not found in exchange info", symbol)
}

// GetAssetBalance returns the free balance of a single asset.
func (e *BinanceExchange) GetAssetBalance(ctx context.Context, asset string) (float64, error) {
	account, err := e.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch account: %w", err)
	}
	for _, b := range account.Balances {
		if b.Asset == asset {
			free, err := strconv.ParseFloat(b.Free, 64)
			if err != nil {
				return 0, fmt.Errorf("unparsable balance %q for %s", b.Free, asset)
			}
			return free, nil
		}
	}
	return 0, nil
}

// PlaceMarketOrder executes a market order and returns the actual fill.
func (e *BinanceExchange) PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, quantity float64, clientOrderID string) (*models.Fill, error) {
	res, err := e.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideType(side)).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(quantity, 'f', -1, 64)).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("market %s order for %s failed: %w", side, symbol, err)
	}
	if len(res.Fills) == 0 {
		return nil, fmt.Errorf("market %s order for %s returned no fills", side, symbol)
	}

	// The first fill carries the execution price, same as the executed
	// quantity reported on the order itself.
	fillPrice, err := strconv.ParseFloat(res.Fills[0].Price, 64)
	if err != nil {
		return nil, fmt.Errorf("unparsable fill price %q: %w", res.Fills[0].Price, err)
	}
	executedQty, err := strconv.ParseFloat(res.ExecutedQuantity, 64)
	if err != nil || executedQty == 0 {
		executedQty = quantity
	}

	e.logger.Infow("market order filled",
		"symbol", symbol, "side", side, "quantity", executedQty, "price", fillPrice, "orderId", res.OrderID)

	return &models.Fill{Price: fillPrice, Quantity: executedQty}, nil
}
