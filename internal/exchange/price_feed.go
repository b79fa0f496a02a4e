package exchange

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"crypto-trading-bot-go/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PriceFeed keeps a live last-traded price for one symbol via the miniTicker
// websocket stream. It is purely informational: trading decisions still use
// the REST spot price, the feed only saves the status monitor from polling.
type PriceFeed struct {
	wsBaseURL string
	symbol    string

	mu       sync.RWMutex
	last     float64
	conn     *websocket.Conn
	running  bool
	stopChan chan struct{}

	logger *zap.SugaredLogger
}

// NewPriceFeed creates a feed for symbol against the given stream endpoint,
// e.g. "wss://stream.binance.com:9443".
func NewPriceFeed(wsBaseURL, symbol string) *PriceFeed {
	return &PriceFeed{
		wsBaseURL: wsBaseURL,
		symbol:    symbol,
		logger:    logger.S(),
	}
}

// Start connects and begins consuming ticks in the background. The feed
// reconnects on read errors until Stop is called.
func (f *PriceFeed) Start() error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true
	f.stopChan = make(chan struct{})
	f.mu.Unlock()

	conn, err := f.dial()
	if err != nil {
		f.mu.Lock()
		f.running = false
		f.mu.Unlock()
		return err
	}
	f.setConn(conn)

	go f.readLoop()
	return nil
}

// Last returns the most recent streamed price, or false if no tick has
// arrived yet.
func (f *PriceFeed) Last() (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last, f.last > 0
}

// Stop closes the connection and ends the read loop.
func (f *PriceFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.running = false
	close(f.stopChan)
	if f.conn != nil {
		f.conn.Close()
	}
}

func (f *PriceFeed) dial() (*websocket.Conn, error) {
	url := fmt.Sprintf("%s/ws/%s@miniTicker", f.wsBaseURL, strings.ToLower(f.symbol))
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s failed: %w", url, err)
	}
	f.logger.Infof("price feed connected: %s", url)
	return conn, nil
}

func (f *PriceFeed) setConn(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conn = conn
}

func (f *PriceFeed) readLoop() {
	for {
		f.mu.RLock()
		conn := f.conn
		running := f.running
		f.mu.RUnlock()
		if !running {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-f.stopChan:
				return
			default:
			}
			f.logger.Warnf("price feed read failed, reconnecting: %v", err)
			f.reconnect()
			continue
		}

		var tick struct {
			Close string `json:"c"`
		}
		if err := json.Unmarshal(message, &tick); err != nil {
			continue
		}
		price, err := strconv.ParseFloat(tick.Close, 64)
		if err != nil || price <= 0 {
			continue
		}

		f.mu.Lock()
		f.last = price
		f.mu.Unlock()
	}
}

func (f *PriceFeed) reconnect() {
	for {
		select {
		case <-f.stopChan:
			return
		case <-time.After(5 * time.Second):
		}
		conn, err := f.dial()
		if err != nil {
			f.logger.Warnf("price feed reconnect failed: %v", err)
			continue
		}
		f.setConn(conn)
		return
	}
}
