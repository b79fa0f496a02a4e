// Package reporter renders the session summary printed on shutdown: the
// recorded trade history and the performance metrics derived from it.
package reporter

import (
	"fmt"
	"strings"

	"crypto-trading-bot-go/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// GenerateReport renders the trade history and metrics as a printable block.
func GenerateReport(state *models.BotState, metrics models.Metrics) string {
	var b strings.Builder

	b.WriteString("\n=========== Trading Session Report ===========\n")
	b.WriteString(renderTrades(state))
	b.WriteString("\n")
	b.WriteString(renderMetrics(state, metrics))
	b.WriteString("\n==============================================\n")
	return b.String()
}

func renderTrades(state *models.BotState) string {
	if len(state.TradingHistory) == 0 {
		return "No trades were executed.\n"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Time", "Symbol", "Side", "Quantity", "Price", "Notional"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Quantity", Align: text.AlignRight},
		{Name: "Price", Align: text.AlignRight},
		{Name: "Notional", Align: text.AlignRight},
	})

	for i, rec := range state.TradingHistory {
		t.AppendRow(table.Row{
			i + 1,
			rec.Timestamp.Format(models.TimestampLayout),
			rec.Symbol,
			rec.Side,
			fmt.Sprintf("%.8f", rec.Quantity),
			fmt.Sprintf("%.8f", rec.Price),
			fmt.Sprintf("%.2f", rec.Quantity*rec.Price),
		})
	}
	return t.Render() + "\n"
}

func renderMetrics(state *models.BotState, metrics models.Metrics) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendRow(table.Row{"Total Trades", metrics.TotalTrades})
	t.AppendRow(table.Row{"Total Profit", fmt.Sprintf("%.2f USDT", metrics.TotalProfit)})
	t.AppendRow(table.Row{"Win Rate", fmt.Sprintf("%.2f%%", metrics.WinRate)})
	t.AppendRow(table.Row{"Final Balance", fmt.Sprintf("%.2f USDT", metrics.CurrentBalance)})
	if state.Position != nil {
		t.AppendRow(table.Row{"Open Position", fmt.Sprintf("%.8f %s @ %.8f",
			state.Position.Quantity, state.Position.Symbol, state.Position.EntryPrice)})
	}
	return t.Render() + "\n"
}
