package config

import (
	"encoding/json"
	"fmt"
	"os"

	"crypto-trading-bot-go/internal/models"
)

// LoadConfig reads the JSON config file at path and fills in defaults for
// anything the file leaves out.
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	cfg := &models.Config{}
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *models.Config) {
	if cfg.Interval == "" {
		cfg.Interval = "1h"
	}
	if cfg.CandleLimit == 0 {
		cfg.CandleLimit = 500
	}
	if cfg.UpdateIntervalSec == 0 {
		cfg.UpdateIntervalSec = 60
	}
	if cfg.StatusIntervalSec == 0 {
		cfg.StatusIntervalSec = 30
	}
	if cfg.InitialBalance == 0 {
		cfg.InitialBalance = 30
	}
	if cfg.MaxCoinPrice == 0 {
		cfg.MaxCoinPrice = 1.0
	}
	if cfg.TopCoinCount == 0 {
		cfg.TopCoinCount = 10
	}
	if cfg.ForecastWindow == 0 {
		cfg.ForecastWindow = 60
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "bot_state"
	}
	if cfg.WSBaseURL == "" {
		cfg.WSBaseURL = "wss://stream.binance.com:9443"
	}
}

func validate(cfg *models.Config) error {
	if cfg.UpdateIntervalSec < 0 {
		return fmt.Errorf("update_interval_sec must be positive, got %d", cfg.UpdateIntervalSec)
	}
	if cfg.CandleLimit < 0 {
		return fmt.Errorf("candle_limit must be positive, got %d", cfg.CandleLimit)
	}
	if cfg.InitialBalance < 0 {
		return fmt.Errorf("initial_balance must not be negative, got %f", cfg.InitialBalance)
	}
	return nil
}
