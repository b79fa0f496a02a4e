package screener

import (
	"context"
	"errors"
	"testing"

	"crypto-trading-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway implements just enough of the Exchange interface for the
// screener.
type mockGateway struct {
	tickers []models.Ticker
	err     error
}

func (m *mockGateway) GetAllTickers(ctx context.Context) ([]models.Ticker, error) {
	return m.tickers, m.err
}

func (m *mockGateway) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockGateway) GetSymbolRule(ctx context.Context, symbol string) (*models.SymbolRule, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) GetAssetBalance(ctx context.Context, asset string) (float64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockGateway) PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, quantity float64, clientOrderID string) (*models.Fill, error) {
	return nil, errors.New("not implemented")
}

func TestListViableCoinsFiltersAndRanks(t *testing.T) {
	gw := &mockGateway{tickers: []models.Ticker{
		{Symbol: "BTCUSDT", LastPrice: 60000, Volume: 100},   // too expensive
		{Symbol: "DOGEUSDT", LastPrice: 0.1, Volume: 500000}, // quote vol 50000
		{Symbol: "TRXUSDT", LastPrice: 0.08, Volume: 250000}, // quote vol 20000
		{Symbol: "DOGEBTC", LastPrice: 0.5, Volume: 900000},  // not a USDT pair
		{Symbol: "XLMUSDT", LastPrice: 0.09, Volume: 900000}, // quote vol 81000
	}}
	s := NewScreener(gw, nil)

	coins := s.ListViableCoins(context.Background(), 1.0, 10)
	require.Len(t, coins, 3)
	assert.Equal(t, "XLMUSDT", coins[0].Symbol)
	assert.Equal(t, "DOGEUSDT", coins[1].Symbol)
	assert.Equal(t, "TRXUSDT", coins[2].Symbol)
	assert.InDelta(t, 81000, coins[0].QuoteVolume, 1e-9)
}

func TestListViableCoinsTopN(t *testing.T) {
	gw := &mockGateway{tickers: []models.Ticker{
		{Symbol: "AUSDT", LastPrice: 0.5, Volume: 10},
		{Symbol: "BUSDT", LastPrice: 0.5, Volume: 20},
		{Symbol: "CUSDT", LastPrice: 0.5, Volume: 30},
	}}
	s := NewScreener(gw, nil)

	coins := s.ListViableCoins(context.Background(), 1.0, 2)
	require.Len(t, coins, 2)
	assert.Equal(t, "CUSDT", coins[0].Symbol)
	assert.Equal(t, "BUSDT", coins[1].Symbol)
}

func TestListViableCoinsStableOrderOnTies(t *testing.T) {
	gw := &mockGateway{tickers: []models.Ticker{
		{Symbol: "AUSDT", LastPrice: 0.5, Volume: 100},
		{Symbol: "BUSDT", LastPrice: 0.5, Volume: 100},
		{Symbol: "CUSDT", LastPrice: 0.5, Volume: 100},
	}}
	s := NewScreener(gw, nil)

	coins := s.ListViableCoins(context.Background(), 1.0, 10)
	require.Len(t, coins, 3)
	// Equal quote volume keeps the gateway's ordering.
	assert.Equal(t, "AUSDT", coins[0].Symbol)
	assert.Equal(t, "BUSDT", coins[1].Symbol)
	assert.Equal(t, "CUSDT", coins[2].Symbol)
}

func TestListViableCoinsFailsSoftly(t *testing.T) {
	gw := &mockGateway{err: errors.New("gateway timeout")}

	var reported string
	s := NewScreener(gw, func(msg string) { reported = msg })

	coins := s.ListViableCoins(context.Background(), 1.0, 10)
	assert.Empty(t, coins)
	assert.Contains(t, reported, "gateway timeout")
}
