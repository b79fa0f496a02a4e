package models

import "time"

// Config holds every tunable of the bot. It is loaded from a JSON file;
// secrets (API keys, Telegram credentials) come from the environment instead.
type Config struct {
	Symbol            string  `json:"symbol"`               // trading pair, e.g. "DOGEUSDT"; empty = auto-select
	Interval          string  `json:"interval"`             // candle interval, e.g. "1h"
	CandleLimit       int     `json:"candle_limit"`         // number of candles fetched per cycle
	UpdateIntervalSec int     `json:"update_interval_sec"`  // sleep between trading cycles
	StatusIntervalSec int     `json:"status_interval_sec"`  // status log cadence
	InitialBalance    float64 `json:"initial_balance"`      // starting USDT when no snapshot exists
	MaxCoinPrice      float64 `json:"max_coin_price"`       // screener price ceiling
	TopCoinCount      int     `json:"top_coin_count"`       // screener result size
	ForecastWindow    int     `json:"forecast_window"`      // predictor lookback (candles)
	RejectBelowMinQty bool    `json:"reject_below_min_qty"` // refuse trades the balance cannot cover
	DBPath            string  `json:"db_path"`              // state database directory

	// Paper trading engine specific settings.
	TakerFeeRate float64 `json:"taker_fee_rate"`
	SlippageRate float64 `json:"slippage_rate"`

	BaseURL   string `json:"base_url,omitempty"`    // REST API base (empty = production)
	WSBaseURL string `json:"ws_base_url,omitempty"` // WebSocket stream base

	LogConfig LogConfig `json:"log"`
}

// UpdateInterval returns the cycle sleep as a duration.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalSec) * time.Second
}

// StatusInterval returns the status log cadence as a duration.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalSec) * time.Second
}

// LogConfig defines the logging related settings.
type LogConfig struct {
	Level      string `json:"level"`       // "debug", "info", "warn", "error"
	Output     string `json:"output"`      // "console", "file", "both"
	File       string `json:"file"`        // log file path
	MaxSize    int    `json:"max_size"`    // max size of a single log file (MB)
	MaxBackups int    `json:"max_backups"` // max number of rotated files kept
	MaxAge     int    `json:"max_age"`     // max age of rotated files (days)
	Compress   bool   `json:"compress"`    // compress rotated files
}

// Candle is a single OHLCV interval, plus the indicator columns appended by
// the indicator engine. The indicator fields are NaN until the series carries
// enough history to compute them.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`

	RSI    float64 `json:"rsi,omitempty"`
	MACD   float64 `json:"macd,omitempty"`
	Signal float64 `json:"signal,omitempty"`
}

// Ticker is a 24h ticker snapshot for a single symbol.
type Ticker struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"lastPrice"`
	Volume    float64 `json:"volume"` // base-asset volume
}

// ViableCoin is a screener candidate: a cheap, high-turnover USDT pair.
type ViableCoin struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	QuoteVolume float64 `json:"volume"` // volume expressed in the quote asset
}

// SymbolRule carries the exchange LOT_SIZE constraints used to round order
// quantities. Values are kept as the exchange's decimal strings so no
// precision is lost before the sizing arithmetic.
type SymbolRule struct {
	MinQuantity string `json:"minQty"`
	StepSize    string `json:"stepSize"`
}

// Fill is the acknowledged result of a market order.
type Fill struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Metrics summarizes the performance of the recorded trade history.
type Metrics struct {
	TotalProfit    float64 `json:"total_profit"`
	WinRate        float64 `json:"win_rate"`
	TotalTrades    int     `json:"total_trades"`
	CurrentBalance float64 `json:"current_balance"`
}
