// Package notifier is the outbound message channel for trade and error
// events. Delivery is best effort: a failed notification is logged and
// swallowed, it must never disturb the trading loop.
package notifier

import (
	"crypto-trading-bot-go/internal/logger"
)

// Notifier delivers a human-readable message, fire-and-forget.
type Notifier interface {
	Notify(message string)
}

// LogNotifier writes notifications to the application log only. It is the
// fallback when no Telegram credentials are configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the message.
func (n *LogNotifier) Notify(message string) {
	logger.S().Infof("notification: %s", message)
}
