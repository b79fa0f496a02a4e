package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"crypto-trading-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStateRepository records saves for inspection.
type mockStateRepository struct {
	sync.Mutex
	savedState *models.BotState
	saveCount  int
	loadState  *models.BotState
	loadError  error
	saveError  error
}

func (m *mockStateRepository) SaveState(state *models.BotState) error {
	m.Lock()
	defer m.Unlock()
	m.saveCount++
	m.savedState = state
	return m.saveError
}

func (m *mockStateRepository) LoadState() (*models.BotState, error) {
	m.Lock()
	defer m.Unlock()
	return m.loadState, m.loadError
}

func (m *mockStateRepository) Close() error { return nil }

func (m *mockStateRepository) saved() (*models.BotState, int) {
	m.Lock()
	defer m.Unlock()
	return m.savedState, m.saveCount
}

func record(side models.Side, qty, price float64) models.TradeRecord {
	return models.TradeRecord{
		Timestamp: models.NewTimestamp(time.Now()),
		Symbol:    "DOGEUSDT",
		Side:      side,
		Quantity:  qty,
		Price:     price,
	}
}

func TestNewManagerDefaultsWhenEmpty(t *testing.T) {
	m := NewManager(&mockStateRepository{}, 30)

	snapshot := m.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, 30.0, snapshot.Balance)
	assert.Empty(t, snapshot.CurrentCoin)
	assert.Nil(t, snapshot.Position)
	assert.Empty(t, snapshot.TradingHistory)
}

func TestNewManagerDefaultsOnLoadError(t *testing.T) {
	repo := &mockStateRepository{loadError: errors.New("corrupt snapshot")}
	m := NewManager(repo, 30)

	assert.Equal(t, 30.0, m.Balance(), "corruption falls back to defaults, never fatal")
}

func TestNewManagerRestoresState(t *testing.T) {
	repo := &mockStateRepository{loadState: &models.BotState{
		Balance:     12,
		CurrentCoin: "XLMUSDT",
		TradingHistory: []models.TradeRecord{
			record(models.Buy, 10, 1),
		},
	}}
	m := NewManager(repo, 30)

	assert.Equal(t, 12.0, m.Balance())
	assert.Equal(t, "XLMUSDT", m.ActiveCoin())
	assert.Len(t, m.Snapshot().TradingHistory, 1)
}

func TestApplyFillBuyOpensPositionAndPersists(t *testing.T) {
	repo := &mockStateRepository{}
	m := NewManager(repo, 30)

	require.NoError(t, m.ApplyFill(record(models.Buy, 100, 0.25)))

	assert.InDelta(t, 5.0, m.Balance(), 1e-9)
	pos := m.Holding()
	require.NotNil(t, pos)
	assert.Equal(t, "DOGEUSDT", pos.Symbol)
	assert.Equal(t, 100.0, pos.Quantity)
	assert.Equal(t, 0.25, pos.EntryPrice)

	saved, count := repo.saved()
	assert.Equal(t, 1, count, "every fill persists exactly once")
	require.NotNil(t, saved)
	assert.Len(t, saved.TradingHistory, 1)
	assert.InDelta(t, 5.0, saved.Balance, 1e-9, "persisted snapshot pairs the trade with its balance update")
}

func TestApplyFillSellClosesPosition(t *testing.T) {
	repo := &mockStateRepository{}
	m := NewManager(repo, 30)

	require.NoError(t, m.ApplyFill(record(models.Buy, 100, 0.25)))
	require.NoError(t, m.ApplyFill(record(models.Sell, 100, 0.30)))

	assert.InDelta(t, 35.0, m.Balance(), 1e-9)
	assert.Nil(t, m.Holding())
	assert.Len(t, m.Snapshot().TradingHistory, 2)
}

func TestApplyFillOverspendClampsToZero(t *testing.T) {
	m := NewManager(&mockStateRepository{}, 10)

	// Minimum-quantity sizing can cost more than the tracked balance.
	require.NoError(t, m.ApplyFill(record(models.Buy, 100, 0.25)))
	assert.Equal(t, 0.0, m.Balance())
}

func TestApplyFillSaveErrorSurfacesButStateHolds(t *testing.T) {
	repo := &mockStateRepository{saveError: errors.New("disk full")}
	m := NewManager(repo, 30)

	err := m.ApplyFill(record(models.Buy, 100, 0.25))
	assert.Error(t, err)
	// The exchange fill already happened; memory stays authoritative.
	assert.Len(t, m.Snapshot().TradingHistory, 1)
}

func TestSnapshotIsIsolated(t *testing.T) {
	m := NewManager(&mockStateRepository{}, 30)
	require.NoError(t, m.ApplyFill(record(models.Buy, 100, 0.25)))

	snapshot := m.Snapshot()
	snapshot.Balance = 999
	snapshot.Position.Quantity = 1
	snapshot.TradingHistory[0].Price = 42

	assert.InDelta(t, 5.0, m.Balance(), 1e-9)
	assert.Equal(t, 100.0, m.Holding().Quantity)
	assert.Equal(t, 0.25, m.Snapshot().TradingHistory[0].Price)
}

func TestSetActiveCoinPersists(t *testing.T) {
	repo := &mockStateRepository{}
	m := NewManager(repo, 30)

	require.NoError(t, m.SetActiveCoin("TRXUSDT"))
	assert.Equal(t, "TRXUSDT", m.ActiveCoin())

	saved, count := repo.saved()
	assert.Equal(t, 1, count)
	require.NotNil(t, saved)
	assert.Equal(t, "TRXUSDT", saved.CurrentCoin)
}
