package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solrisk/internal/api"
	"solrisk/internal/config"
	"solrisk/internal/ledger"
	"solrisk/internal/market"
	"solrisk/internal/notify"
	"solrisk/internal/repository"
	"solrisk/internal/service"
	"solrisk/internal/wallet"
	"solrisk/internal/websocket"
	"solrisk/pkg/utils"

	_ "github.com/lib/pq"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера (до первого компонента)
	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer func() { _ = logger.Sync() }()

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", utils.Err(err))
	}
	defer db.Close()

	logger.Info("Connected to database",
		utils.String("dsn", cfg.Database.DSNWithoutPassword()),
	)

	// Инициализация репозиториев
	tradeRepo := repository.NewTradeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Инициализация сервисов
	historyService := service.NewHistoryService(tradeRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)

	// Кошелёк: identity опциональна, балансовые запросы работают без неё
	identity := wallet.LoadIdentityOrDegrade(
		cfg.Wallet.SigningKey,
		[]byte(cfg.Security.EncryptionKey),
		logger,
	)

	httpCfg := wallet.DefaultHTTPClientConfig()
	httpCfg.TotalTimeout = cfg.Wallet.RPCTimeout

	walletClient := wallet.NewClient(wallet.Config{
		RPCURL:         cfg.Wallet.RPCURL,
		Account:        cfg.Wallet.Account,
		RequestsPerSec: cfg.Wallet.RequestsPerSec,
		HTTP:           httpCfg,
	}, identity, logger)

	// Провайдер рыночных данных: выключен = волатильность не участвует
	// в risk score
	var marketProvider ledger.MarketProvider
	if cfg.Market.Enabled {
		marketProvider = market.NewProvider(market.Config{
			KlineInterval:  cfg.Market.KlineInterval,
			KlineLimit:     cfg.Market.KlineLimit,
			RequestsPerSec: cfg.Market.RequestsPerSec,
			CacheTTL:       cfg.Market.CacheTTL,
		}, logger)
	}

	// Ядро учёта и риск-контроля
	core := ledger.New(ledger.Config{
		MaxDailyLoss:   cfg.Risk.MaxDailyLoss,
		MaxTradeAmount: cfg.Risk.MaxTradeAmount,
		TradeCooldown:  cfg.Risk.TradeCooldown,
		MaxPositions:   cfg.Trading.MaxPositions,
		ProfitTarget:   cfg.Trading.ProfitTarget,
		StopLoss:       cfg.Trading.StopLoss,
		MaxHoldTime:    cfg.Trading.MaxHoldTime,
	}, walletClient, marketProvider, nil, logger)

	// Первичная сверка баланса; ошибка не фатальна, equity догонит
	// фоновый цикл
	syncCtx, cancelSync := context.WithTimeout(context.Background(), cfg.Wallet.RPCTimeout)
	if err := core.SyncBalance(syncCtx); err != nil {
		logger.Warn("Initial balance sync failed", utils.Err(err))
	}
	cancelSync()

	// Контекст фоновых процессов
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Полуночный сброс дневной статистики
	scheduler := ledger.NewResetScheduler(core, logger)
	scheduler.Start(ctx)

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	notificationService.SetWebSocketHub(hub)

	// Диспетчер уведомлений: журнал+websocket всегда, Telegram опционально
	sinks := []notify.Sink{notificationService}
	if cfg.Telegram.Enabled {
		tgSink, err := notify.NewTelegramSink(notify.TelegramConfig{
			Token:  cfg.Telegram.Token,
			ChatID: cfg.Telegram.ChatID,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram sink", utils.Err(err))
		}
		sinks = append(sinks, tgSink)
	}

	dispatcher := notify.NewDispatcher(core.Notifications(), logger, sinks...)
	dispatcher.Start(ctx)

	// Фоновая сверка баланса с рассылкой equity
	go runBalanceSync(ctx, core, hub, cfg.Wallet, logger)

	// Настройка зависимостей для API
	deps := &api.Dependencies{
		Ledger:              core,
		HistoryService:      historyService,
		NotificationService: notificationService,
		Hub:                 hub,
		Log:                 logger,
		APITokenHash:        cfg.Security.APITokenHash,
	}

	// Настройка HTTP роутера
	router := api.SetupRoutes(deps)

	// HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		logger.Info("Starting server", utils.String("addr", server.Addr))
		if cfg.Server.UseHTTPS {
			if err := server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Server failed", utils.Err(err))
			}
		} else {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Server failed", utils.Err(err))
			}
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// Останавливаем фоновые процессы до HTTP: новые события больше
	// не рассылаются
	cancel()
	scheduler.Stop()
	dispatcher.Stop()
	hub.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", utils.Err(err))
	}

	logger.Info("Server exited")
}

// runBalanceSync периодически сверяет баланс с кошельком и рассылает
// equity websocket клиентам
func runBalanceSync(ctx context.Context, core *ledger.Ledger, hub *websocket.Hub, cfg config.WalletConfig, logger *utils.Logger) {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			syncCtx, cancel := context.WithTimeout(ctx, cfg.RPCTimeout)
			err := core.SyncBalance(syncCtx)
			cancel()
			if err != nil {
				// SyncBalance уже залогировал предупреждение
				continue
			}

			hub.BroadcastEquityUpdate(
				core.RealBalance(),
				core.SimulatedCashDelta(),
				core.VirtualBalance(),
			)
		case <-ctx.Done():
			return
		}
	}
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
