package exchange

import (
	"context"
	"fmt"
	"sync"

	"crypto-trading-bot-go/internal/logger"
	"crypto-trading-bot-go/internal/models"

	"go.uber.org/zap"
)

// PaperExchange implements Exchange against an internal balance sheet, so
// strategies can run without touching a real account. Market data is served
// from an in-memory book, or delegated to another Exchange (typically a
// credential-less Binance client) when one is attached.
//
// Orders fill immediately at the current price adjusted for slippage, minus
// a taker fee charged in USDT.
type PaperExchange struct {
	mu sync.Mutex

	market Exchange // optional market-data delegate

	prices   map[string]float64
	klines   map[string][]models.Candle
	tickers  []models.Ticker
	rules    map[string]*models.SymbolRule
	balances map[string]float64

	takerFeeRate float64
	slippageRate float64
	totalFees    float64

	logger *zap.SugaredLogger
}

// NewPaperExchange creates a paper exchange seeded with the configured
// initial USDT balance. market may be nil; then all market data must be fed
// in through the setters.
func NewPaperExchange(market Exchange, cfg *models.Config) *PaperExchange {
	return &PaperExchange{
		market:       market,
		prices:       make(map[string]float64),
		klines:       make(map[string][]models.Candle),
		rules:        make(map[string]*models.SymbolRule),
		balances:     map[string]float64{"USDT": cfg.InitialBalance},
		takerFeeRate: cfg.TakerFeeRate,
		slippageRate: cfg.SlippageRate,
		logger:       logger.S(),
	}
}

// SetPrice sets the simulated spot price of a symbol.
func (e *PaperExchange) SetPrice(symbol string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prices[symbol] = price
}

// SetKlines sets the simulated candle history of a symbol.
func (e *PaperExchange) SetKlines(symbol string, candles []models.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.klines[symbol] = candles
}

// SetTickers sets the simulated 24h ticker snapshot.
func (e *PaperExchange) SetTickers(tickers []models.Ticker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickers = tickers
}

// SetRule sets the simulated LOT_SIZE rule of a symbol.
func (e *PaperExchange) SetRule(symbol string, rule *models.SymbolRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[symbol] = rule
}

// SetBalance overrides the balance of a single asset.
func (e *PaperExchange) SetBalance(asset string, quantity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[asset] = quantity
}

// TotalFees returns the fees accumulated by simulated fills.
func (e *PaperExchange) TotalFees() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFees
}

func (e *PaperExchange) GetAllTickers(ctx context.Context) ([]models.Ticker, error) {
	if e.market != nil {
		return e.market.GetAllTickers(ctx)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Ticker, len(e.tickers))
	copy(out, e.tickers)
	return out, nil
}

func (e *PaperExchange) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if e.market != nil {
		return e.market.GetKlines(ctx, symbol, interval, limit)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	candles, ok := e.klines[symbol]
	if !ok {
		return nil, fmt.Errorf("no kline data for %s", symbol)
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	out := make([]models.Candle, len(candles))
	copy(out, candles)
	return out, nil
}

func (e *PaperExchange) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if e.market != nil {
		return e.market.GetPrice(ctx, symbol)
	}
	return e.lastPrice(symbol)
}

func (e *PaperExchange) GetSymbolRule(ctx context.Context, symbol string) (*models.SymbolRule, error) {
	e.mu.Lock()
	rule, ok := e.rules[symbol]
	e.mu.Unlock()
	if ok {
		copied := *rule
		return &copied, nil
	}
	if e.market != nil {
		return e.market.GetSymbolRule(ctx, symbol)
	}
	return nil, fmt.Errorf("no trading rule for %s", symbol)
}

func (e *PaperExchange) GetAssetBalance(ctx context.Context, asset string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balances[asset], nil
}

// PlaceMarketOrder simulates an immediate fill against the internal balance
// sheet. Buys that the USDT balance cannot cover and sells larger than the
// held quantity are rejected, exactly as the real exchange would.
func (e *PaperExchange) PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, quantity float64, clientOrderID string) (*models.Fill, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("invalid order quantity %f for %s", quantity, symbol)
	}

	price, err := e.fillPrice(ctx, symbol, side)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	base := baseAsset(symbol)
	notional := quantity * price
	fee := notional * e.takerFeeRate

	switch side {
	case models.Buy:
		if notional+fee > e.balances["USDT"]+1e-9 {
			return nil, fmt.Errorf("insufficient USDT balance: need %.8f, have %.8f", notional+fee, e.balances["USDT"])
		}
		e.balances["USDT"] -= notional + fee
		e.balances[base] += quantity
	case models.Sell:
		if quantity > e.balances[base]+1e-9 {
			return nil, fmt.Errorf("insufficient %s balance: need %.8f, have %.8f", base, quantity, e.balances[base])
		}
		e.balances[base] -= quantity
		e.balances["USDT"] += notional - fee
	default:
		return nil, fmt.Errorf("unknown order side %q", side)
	}

	e.totalFees += fee
	e.logger.Infow("paper order filled",
		"symbol", symbol, "side", side, "quantity", quantity, "price", price, "fee", fee, "clientOrderId", clientOrderID)

	return &models.Fill{Price: price, Quantity: quantity}, nil
}

// fillPrice applies slippage against the taker: buys fill above the quote,
// sells below it.
func (e *PaperExchange) fillPrice(ctx context.Context, symbol string, side models.Side) (float64, error) {
	price, err := e.GetPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if side == models.Buy {
		return price * (1 + e.slippageRate), nil
	}
	return price * (1 - e.slippageRate), nil
}

func (e *PaperExchange) lastPrice(symbol string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	price, ok := e.prices[symbol]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

// baseAsset strips the quote asset from a USDT pair symbol.
func baseAsset(symbol string) string {
	if len(symbol) > 4 && symbol[len(symbol)-4:] == "USDT" {
		return symbol[:len(symbol)-4]
	}
	return symbol
}
