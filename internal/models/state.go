package models

import (
	"fmt"
	"strings"
	"time"
)

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// TimestampLayout is the wire format of every persisted timestamp.
// Second precision, round-trips losslessly.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a time.Time that marshals as "YYYY-MM-DD HH:MM:SS".
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to second precision so a save/load cycle
// reproduces an equal value.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.Truncate(time.Second)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// TradeRecord is one executed fill. Records are immutable once appended and
// the history is strictly chronological; profit and win-rate calculations
// rely on BUY/SELL alternation.
type TradeRecord struct {
	Timestamp Timestamp `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
}

// Position is an open holding. The bot holds at most one position at a time;
// a nil Position means flat. Tracking this explicitly avoids inferring the
// position from a balance comparison.
type Position struct {
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
}

// BotState is the persisted state of the bot. It survives restarts and is
// written after every mutation of balance, position or trade history.
type BotState struct {
	Balance        float64       `json:"current_balance"`
	CurrentCoin    string        `json:"current_coin,omitempty"`
	Position       *Position     `json:"position,omitempty"`
	TradingHistory []TradeRecord `json:"trading_history"`
	LastUpdate     Timestamp     `json:"last_update"`
}

// DefaultState returns the state used when no snapshot exists yet.
func DefaultState(initialBalance float64) *BotState {
	return &BotState{
		Balance:        initialBalance,
		TradingHistory: []TradeRecord{},
	}
}
