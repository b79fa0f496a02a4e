// Package state owns the mutable bot state. All mutations go through the
// Manager and are serialized by its lock; every mutation is persisted before
// it is considered committed. Readers only ever get deep-copied snapshots,
// so a reader can never observe a trade without its balance update.
package state

import (
	"fmt"
	"time"

	"sync"

	"crypto-trading-bot-go/internal/logger"
	"crypto-trading-bot-go/internal/models"
	"crypto-trading-bot-go/internal/persistence"

	"go.uber.org/zap"
)

// Manager is the single writer of BotState.
type Manager struct {
	mu     sync.RWMutex
	state  *models.BotState
	repo   persistence.StateRepository
	logger *zap.SugaredLogger
}

// NewManager loads the persisted state, falling back to the default state
// when no snapshot exists or the snapshot is unreadable. Corruption is
// logged, never fatal.
func NewManager(repo persistence.StateRepository, initialBalance float64) *Manager {
	m := &Manager{
		repo:   repo,
		logger: logger.S(),
	}

	loaded, err := repo.LoadState()
	switch {
	case err != nil:
		m.logger.Errorf("failed to load persisted state, starting fresh: %v", err)
		m.state = models.DefaultState(initialBalance)
	case loaded == nil:
		m.logger.Info("no persisted state found, starting fresh")
		m.state = models.DefaultState(initialBalance)
	default:
		m.logger.Infof("restored state: balance=%.2f USDT, coin=%q, trades=%d",
			loaded.Balance, loaded.CurrentCoin, len(loaded.TradingHistory))
		if loaded.TradingHistory == nil {
			loaded.TradingHistory = []models.TradeRecord{}
		}
		m.state = loaded
	}
	return m
}

// Snapshot returns a deep copy of the current state for safe concurrent
// reading.
func (m *Manager) Snapshot() *models.BotState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deepCopy()
}

// Balance returns the current quote balance.
func (m *Manager) Balance() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Balance
}

// ActiveCoin returns the symbol the bot is currently working.
func (m *Manager) ActiveCoin() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.CurrentCoin
}

// Holding returns a copy of the open position, or nil when flat.
func (m *Manager) Holding() *models.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.Position == nil {
		return nil
	}
	copied := *m.state.Position
	return &copied
}

// SetActiveCoin switches the symbol the trading loop works on and persists
// the change.
func (m *Manager) SetActiveCoin(symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.CurrentCoin = symbol
	m.state.LastUpdate = models.NewTimestamp(time.Now())
	return m.persistLocked()
}

// ApplyFill records a confirmed exchange fill: it appends the trade record,
// updates balance and position, and persists — one serialized step. It must
// only be called with fills the exchange has acknowledged.
func (m *Manager) ApplyFill(rec models.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch rec.Side {
	case models.Buy:
		cost := rec.Quantity * rec.Price
		m.state.Balance -= cost
		if m.state.Balance < 0 {
			// Minimum-quantity sizing can overspend the tracked budget.
			m.logger.Warnf("buy cost %.8f exceeded tracked balance, clamping to zero", cost)
			m.state.Balance = 0
		}
		if pos := m.state.Position; pos != nil && pos.Symbol == rec.Symbol {
			total := pos.Quantity + rec.Quantity
			pos.EntryPrice = (pos.EntryPrice*pos.Quantity + rec.Price*rec.Quantity) / total
			pos.Quantity = total
		} else {
			m.state.Position = &models.Position{
				Symbol:     rec.Symbol,
				Quantity:   rec.Quantity,
				EntryPrice: rec.Price,
			}
		}
	case models.Sell:
		m.state.Balance += rec.Quantity * rec.Price
		if pos := m.state.Position; pos != nil && rec.Quantity < pos.Quantity {
			pos.Quantity -= rec.Quantity
		} else {
			m.state.Position = nil
		}
	default:
		return fmt.Errorf("unknown trade side %q", rec.Side)
	}

	m.state.TradingHistory = append(m.state.TradingHistory, rec)
	m.state.LastUpdate = models.NewTimestamp(time.Now())

	return m.persistLocked()
}

// persistLocked writes the current state. Called with the write lock held.
// A failed write is critical (the exchange fill already happened and cannot
// be rolled back) but the in-memory state stays authoritative.
func (m *Manager) persistLocked() error {
	if m.repo == nil {
		return nil
	}
	if err := m.repo.SaveState(m.deepCopy()); err != nil {
		m.logger.Errorf("CRITICAL: failed to persist state: %v", err)
		return err
	}
	return nil
}

// deepCopy clones the state so callers can never alias internal data.
func (m *Manager) deepCopy() *models.BotState {
	stateCopy := *m.state

	if m.state.Position != nil {
		posCopy := *m.state.Position
		stateCopy.Position = &posCopy
	}
	if m.state.TradingHistory != nil {
		stateCopy.TradingHistory = make([]models.TradeRecord, len(m.state.TradingHistory))
		copy(stateCopy.TradingHistory, m.state.TradingHistory)
	}
	return &stateCopy
}
