package persistence

import "crypto-trading-bot-go/internal/models"

// StateRepository abstracts the durable storage of the bot state from the
// rest of the application.
type StateRepository interface {
	// SaveState atomically saves the entire bot state.
	SaveState(state *models.BotState) error

	// LoadState loads the bot state from storage.
	// If no state is found, it returns (nil, nil).
	LoadState() (*models.BotState, error)

	// Close gracefully closes the underlying database.
	Close() error
}
