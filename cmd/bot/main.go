package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"crypto-trading-bot-go/internal/bot"
	"crypto-trading-bot-go/internal/config"
	"crypto-trading-bot-go/internal/exchange"
	"crypto-trading-bot-go/internal/logger"
	"crypto-trading-bot-go/internal/models"
	"crypto-trading-bot-go/internal/notifier"
	"crypto-trading-bot-go/internal/persistence"
	"crypto-trading-bot-go/internal/predictor"
	"crypto-trading-bot-go/internal/reporter"
	"crypto-trading-bot-go/internal/screener"
	"crypto-trading-bot-go/internal/state"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	mode := flag.String("mode", "live", "trading mode: live or paper")
	flag.Parse()

	// Secrets come from .env / the environment, never from the config file.
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, relying on the environment")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.LogConfig)
	log := logger.S()
	log.Infof("starting in %s mode with config %s", *mode, *configPath)

	binanceGateway := exchange.NewBinanceExchange(
		os.Getenv("BINANCE_API_KEY"),
		os.Getenv("BINANCE_SECRET_KEY"),
		cfg.BaseURL,
	)

	var gateway exchange.Exchange
	switch *mode {
	case "live":
		gateway = binanceGateway
	case "paper":
		// Real market data, simulated fills and balances.
		gateway = exchange.NewPaperExchange(binanceGateway, cfg)
	default:
		log.Fatalf("unknown mode %q, want live or paper", *mode)
	}

	repo, err := persistence.NewBadgerRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open state database at %s: %v", cfg.DBPath, err)
	}
	defer repo.Close()

	stateManager := state.NewManager(repo, cfg.InitialBalance)
	notif := buildNotifier()
	engine := bot.NewTradingBot(cfg, gateway, predictor.NewLeastSquares(cfg.ForecastWindow), notif, stateManager)

	symbol, err := resolveSymbol(cfg, stateManager, gateway, notif)
	if err != nil {
		log.Fatalf("failed to pick a trading symbol: %v", err)
	}
	if err := engine.SetActiveSymbol(symbol); err != nil {
		log.Fatalf("failed to set active symbol: %v", err)
	}

	engine.AttachPriceFeed(exchange.NewPriceFeed(cfg.WSBaseURL, symbol))

	if err := engine.Start(); err != nil {
		log.Fatalf("failed to start trading bot: %v", err)
	}
	notif.Notify(fmt.Sprintf("🤖 Bot started: trading %s in %s mode", symbol, *mode))

	// Block until SIGINT/SIGTERM, then shut down in order: stop the loop,
	// print the session report, close the database.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutdown signal received")
	engine.Stop()

	fmt.Print(reporter.GenerateReport(engine.StateSnapshot(), engine.Metrics()))
	notif.Notify("🛑 Bot stopped")
}

// resolveSymbol decides which coin to trade: the configured symbol wins, then
// a persisted choice from a previous run, then the screener's top candidate.
func resolveSymbol(cfg *models.Config, stateManager *state.Manager, gateway exchange.Exchange, notif notifier.Notifier) (string, error) {
	if cfg.Symbol != "" {
		return cfg.Symbol, nil
	}
	if persisted := stateManager.ActiveCoin(); persisted != "" {
		logger.S().Infof("resuming persisted symbol %s", persisted)
		return persisted, nil
	}

	scr := screener.NewScreener(gateway, notif.Notify)
	candidates := scr.ListViableCoins(context.Background(), cfg.MaxCoinPrice, cfg.TopCoinCount)
	if len(candidates) == 0 {
		return "", fmt.Errorf("screener returned no viable coins below %.2f USDT", cfg.MaxCoinPrice)
	}

	logger.S().Infof("screener picked %s (price %.6f, quote volume %.0f) from %d candidates",
		candidates[0].Symbol, candidates[0].Price, candidates[0].QuoteVolume, len(candidates))
	return candidates[0].Symbol, nil
}

// buildNotifier returns a Telegram notifier when credentials are present,
// otherwise a log-only fallback.
func buildNotifier() notifier.Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatIDRaw := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatIDRaw == "" {
		logger.S().Info("telegram credentials not set, notifications go to the log")
		return notifier.NewLogNotifier()
	}

	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		logger.S().Warnf("invalid TELEGRAM_CHAT_ID %q, notifications go to the log", chatIDRaw)
		return notifier.NewLogNotifier()
	}

	tn, err := notifier.NewTelegramNotifier(token, chatID)
	if err != nil {
		logger.S().Warnf("telegram setup failed, notifications go to the log: %v", err)
		return notifier.NewLogNotifier()
	}
	return tn
}
