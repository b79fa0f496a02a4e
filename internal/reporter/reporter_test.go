package reporter

import (
	"testing"
	"time"

	"crypto-trading-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReportEmptySession(t *testing.T) {
	out := GenerateReport(&models.BotState{Balance: 30}, models.Metrics{CurrentBalance: 30})

	assert.Contains(t, out, "No trades were executed")
	assert.Contains(t, out, "30.00 USDT")
}

func TestGenerateReportListsTradesAndMetrics(t *testing.T) {
	state := &models.BotState{
		Balance: 35,
		TradingHistory: []models.TradeRecord{
			{Timestamp: models.NewTimestamp(time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)), Symbol: "DOGEUSDT", Side: models.Buy, Quantity: 100, Price: 0.25},
			{Timestamp: models.NewTimestamp(time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)), Symbol: "DOGEUSDT", Side: models.Sell, Quantity: 100, Price: 0.30},
		},
	}
	metrics := models.Metrics{TotalProfit: 5, WinRate: 100, TotalTrades: 2, CurrentBalance: 35}

	out := GenerateReport(state, metrics)

	assert.Contains(t, out, "DOGEUSDT")
	assert.Contains(t, out, "2024-01-01 12:00:00")
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "5.00 USDT")
	assert.Contains(t, out, "100.00%")
}

func TestGenerateReportShowsOpenPosition(t *testing.T) {
	state := &models.BotState{
		Position: &models.Position{Symbol: "DOGEUSDT", Quantity: 100, EntryPrice: 0.25},
	}

	out := GenerateReport(state, models.Metrics{})

	assert.Contains(t, out, "Open Position")
	assert.Contains(t, out, "DOGEUSDT")
}
