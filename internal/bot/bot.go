// Package bot contains the trading engine: the periodic decision loop that
// turns market data, indicators and a price forecast into market orders.
package bot

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"crypto-trading-bot-go/internal/exchange"
	"crypto-trading-bot-go/internal/indicator"
	"crypto-trading-bot-go/internal/logger"
	"crypto-trading-bot-go/internal/models"
	"crypto-trading-bot-go/internal/notifier"
	"crypto-trading-bot-go/internal/predictor"
	"crypto-trading-bot-go/internal/state"

	"github.com/jxskiss/base62"
	"go.uber.org/zap"
)

// Thresholds of the decision rule.
const (
	rsiOversold   = 30
	rsiOverbought = 70
)

// TradingBot runs the decision-and-execution loop for a single symbol.
// It is the only writer of the bot state; everything external (exchange,
// forecaster, notifier) is treated as fallible and contained per cycle.
type TradingBot struct {
	config    *models.Config
	exchange  exchange.Exchange
	predictor predictor.Predictor
	notifier  notifier.Notifier
	state     *state.Manager
	feed      *exchange.PriceFeed
	logger    *zap.SugaredLogger

	mu          sync.Mutex
	isRunning   bool
	stopChannel chan struct{}

	// Optional observer callbacks, invoked synchronously after a
	// successful trade / a handled error. The engine works without them.
	OnTrade func(models.TradeRecord)
	OnError func(message string)
}

// NewTradingBot wires the engine to its collaborators.
func NewTradingBot(cfg *models.Config, ex exchange.Exchange, pred predictor.Predictor, notif notifier.Notifier, st *state.Manager) *TradingBot {
	return &TradingBot{
		config:    cfg,
		exchange:  ex,
		predictor: pred,
		notifier:  notif,
		state:     st,
		logger:    logger.S(),
	}
}

// AttachPriceFeed gives the status monitor a live price source. Optional.
func (b *TradingBot) AttachPriceFeed(feed *exchange.PriceFeed) {
	b.feed = feed
}

// SetActiveSymbol switches the coin the loop trades. Takes effect on the
// next cycle.
func (b *TradingBot) SetActiveSymbol(symbol string) error {
	if err := b.state.SetActiveCoin(symbol); err != nil {
		return err
	}
	b.logger.Infof("active symbol set to %s", symbol)
	return nil
}

// Start launches the trading loop and the status monitor. It is idempotent.
func (b *TradingBot) Start() error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return nil
	}
	b.isRunning = true
	b.stopChannel = make(chan struct{})
	b.mu.Unlock()

	if b.feed != nil {
		if err := b.feed.Start(); err != nil {
			// The feed is informational only; the loop runs without it.
			b.logger.Warnf("price feed unavailable: %v", err)
		}
	}

	go b.tradingLoop()
	go b.monitorStatus()

	b.logger.Info("trading bot started")
	return nil
}

// Stop signals the loop to exit after the current cycle. It never interrupts
// an in-flight order.
func (b *TradingBot) Stop() {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = false
	close(b.stopChannel)
	b.mu.Unlock()

	if b.feed != nil {
		b.feed.Stop()
	}
	b.logger.Info("trading bot stopped")
}

// IsRunning reports whether the loop is active.
func (b *TradingBot) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isRunning
}

// Metrics returns the performance summary of the recorded history.
func (b *TradingBot) Metrics() models.Metrics {
	return computeMetrics(b.state.Snapshot())
}

// StateSnapshot exposes a read-only copy of the bot state.
func (b *TradingBot) StateSnapshot() *models.BotState {
	return b.state.Snapshot()
}

// tradingLoop runs one cycle per update interval until stopped. The cycle
// itself is strictly sequential; errors are contained inside it, so the loop
// only ever exits on an explicit stop.
func (b *TradingBot) tradingLoop() {
	ticker := time.NewTicker(b.config.UpdateInterval())
	defer ticker.Stop()

	b.runCycleGuarded()
	for {
		select {
		case <-b.stopChannel:
			return
		case <-ticker.C:
			b.runCycleGuarded()
		}
	}
}

// runCycleGuarded is the outermost guard: even a panic inside a cycle is
// turned into a handled error and the loop lives on.
func (b *TradingBot) runCycleGuarded() {
	defer func() {
		if r := recover(); r != nil {
			b.handleError(fmt.Sprintf("error in trading loop: %v", r))
		}
	}()
	b.runCycle()
}

// runCycle executes one pass of the decision algorithm.
func (b *TradingBot) runCycle() {
	symbol := b.state.ActiveCoin()
	if symbol == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.UpdateInterval())
	defer cancel()

	candles, err := b.exchange.GetKlines(ctx, symbol, b.config.Interval, b.config.CandleLimit)
	if err != nil {
		b.handleError(fmt.Sprintf("error getting historical data for %s: %v", symbol, err))
		return
	}
	if len(candles) < indicator.MinCandles {
		// Not enough history is a skip, not an error.
		b.logger.Debugf("only %d candles for %s, skipping cycle", len(candles), symbol)
		return
	}

	candles = indicator.Enrich(candles)
	last := candles[len(candles)-1]
	if math.IsNaN(last.RSI) || math.IsNaN(last.MACD) || math.IsNaN(last.Signal) {
		b.logger.Debugf("indicators for %s still warming up, skipping cycle", symbol)
		return
	}

	forecast, err := b.predictor.Predict(candles)
	if err != nil {
		b.handleError(fmt.Sprintf("error forecasting %s: %v", symbol, err))
		return
	}
	spot, err := b.exchange.GetPrice(ctx, symbol)
	if err != nil {
		b.handleError(fmt.Sprintf("error getting price for %s: %v", symbol, err))
		return
	}

	balance := b.state.Balance()
	position := b.state.Holding()

	switch {
	case position == nil && balance > 0 &&
		last.RSI < rsiOversold && last.MACD > last.Signal && forecast > spot:
		b.logger.Infof("buy signal for %s: RSI=%.2f MACD=%.6f Signal=%.6f forecast=%.6f spot=%.6f",
			symbol, last.RSI, last.MACD, last.Signal, forecast, spot)
		quantity, err := b.sizeOrder(ctx, symbol, balance)
		if err != nil {
			b.handleError(fmt.Sprintf("error calculating quantity for %s: %v", symbol, err))
			return
		}
		b.executeTrade(ctx, symbol, models.Buy, quantity)

	case position != nil &&
		last.RSI > rsiOverbought && last.MACD < last.Signal && forecast < spot:
		b.logger.Infof("sell signal for %s: RSI=%.2f MACD=%.6f Signal=%.6f forecast=%.6f spot=%.6f",
			symbol, last.RSI, last.MACD, last.Signal, forecast, spot)
		quantity := b.heldQuantity(ctx, symbol, position)
		if quantity <= 0 {
			return
		}
		b.executeTrade(ctx, symbol, models.Sell, quantity)

	default:
		b.logger.Debugf("no signal for %s: RSI=%.2f MACD=%.6f Signal=%.6f forecast=%.6f spot=%.6f",
			symbol, last.RSI, last.MACD, last.Signal, forecast, spot)
	}
}

// sizeOrder turns the full available quote balance into an exchange-legal
// order quantity: floored to the lot step, minimum enforced.
func (b *TradingBot) sizeOrder(ctx context.Context, symbol string, available float64) (float64, error) {
	price, err := b.exchange.GetPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	rule, err := b.exchange.GetSymbolRule(ctx, symbol)
	if err != nil {
		return 0, err
	}

	quantity, clamped, err := sizeToRule(available, price, rule, b.config.RejectBelowMinQty)
	if err != nil {
		return 0, err
	}
	if clamped {
		b.logger.Warnf("order for %s clamped to exchange minimum %s; this may spend more than the %.2f USDT budget",
			symbol, rule.MinQuantity, available)
	}
	return quantity, nil
}

// heldQuantity determines how much of the coin there is to sell. The
// exchange balance is authoritative (dust, partial fills); the recorded
// position is the fallback when the balance query fails.
func (b *TradingBot) heldQuantity(ctx context.Context, symbol string, position *models.Position) float64 {
	held, err := b.exchange.GetAssetBalance(ctx, baseAsset(symbol))
	if err != nil {
		b.handleError(fmt.Sprintf("error getting balance for %s: %v", symbol, err))
		return position.Quantity
	}
	return held
}

// executeTrade places the market order and, only after the exchange has
// acknowledged the fill, commits the state mutation, the persistence write,
// the notification and the observer callback — in that order. A failed
// order changes nothing.
func (b *TradingBot) executeTrade(ctx context.Context, symbol string, side models.Side, quantity float64) {
	fill, err := b.exchange.PlaceMarketOrder(ctx, symbol, side, quantity, newClientOrderID())
	if err != nil {
		b.handleError(fmt.Sprintf("error executing trade: %v", err))
		return
	}

	rec := models.TradeRecord{
		Timestamp: models.NewTimestamp(time.Now()),
		Symbol:    symbol,
		Side:      side,
		Quantity:  fill.Quantity,
		Price:     fill.Price,
	}

	if err := b.state.ApplyFill(rec); err != nil {
		// The fill is real even if the snapshot write failed.
		b.handleError(fmt.Sprintf("error persisting trade: %v", err))
	}

	b.notifier.Notify(fmt.Sprintf("%s %v %s at %v", side, rec.Quantity, symbol, rec.Price))
	if b.OnTrade != nil {
		b.OnTrade(rec)
	}
}

// handleError is the single funnel for every contained failure: log it,
// push it to the notifier, tell the observer. The loop keeps running.
func (b *TradingBot) handleError(message string) {
	b.logger.Error(message)
	b.notifier.Notify("❌ Error: " + message)
	if b.OnError != nil {
		b.OnError(message)
	}
}

// monitorStatus periodically logs a one-line heartbeat.
func (b *TradingBot) monitorStatus() {
	ticker := time.NewTicker(b.config.StatusInterval())
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChannel:
			return
		case <-ticker.C:
			b.printStatus()
		}
	}
}

func (b *TradingBot) printStatus() {
	snapshot := b.state.Snapshot()
	price := "n/a"
	if b.feed != nil {
		if last, ok := b.feed.Last(); ok {
			price = fmt.Sprintf("%.8f", last)
		}
	}
	holding := "flat"
	if snapshot.Position != nil {
		holding = fmt.Sprintf("%.8f %s @ %.8f",
			snapshot.Position.Quantity, snapshot.Position.Symbol, snapshot.Position.EntryPrice)
	}
	b.logger.Infof("status: coin=%s price=%s balance=%.2f USDT position=%s trades=%d",
		snapshot.CurrentCoin, price, snapshot.Balance, holding, len(snapshot.TradingHistory))
}

// newClientOrderID produces a unique, exchange-safe order id.
func newClientOrderID() string {
	return "bot-" + string(base62.FormatInt(time.Now().UnixNano()))
}

// baseAsset strips the USDT quote from a pair symbol.
func baseAsset(symbol string) string {
	return strings.TrimSuffix(symbol, "USDT")
}
