package bot

import "crypto-trading-bot-go/internal/models"

// computeMetrics derives performance numbers from the trade history. It
// relies on the BUY/SELL alternation the engine guarantees: each SELL is
// scored against the trade right before it.
func computeMetrics(state *models.BotState) models.Metrics {
	trades := state.TradingHistory
	m := models.Metrics{
		TotalTrades:    len(trades),
		CurrentBalance: state.Balance,
	}

	for i := 1; i < len(trades); i++ {
		if trades[i].Side == models.Sell {
			m.TotalProfit += (trades[i].Price - trades[i-1].Price) * trades[i].Quantity
		}
	}

	pairs := len(trades) / 2
	if pairs == 0 {
		return m
	}
	wins := 0
	for i := 1; i < len(trades); i += 2 {
		if trades[i].Side == models.Sell && trades[i].Price > trades[i-1].Price {
			wins++
		}
	}
	m.WinRate = float64(wins) / float64(pairs) * 100
	return m
}
