package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Wallet   WalletConfig
	Market   MarketConfig
	Risk     RiskConfig
	Trading  TradingConfig
	Telegram TelegramConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// WalletConfig - настройки Solana-кошелька
type WalletConfig struct {
	RPCURL         string        // JSON-RPC эндпоинт
	Account        string        // публичный адрес кошелька (base58)
	SigningKey     string        // ключ подписи, AES-256-GCM + base64; пусто = режим без подписи
	SyncInterval   time.Duration // период фоновой сверки баланса
	RPCTimeout     time.Duration // таймаут одного RPC запроса
	RequestsPerSec float64       // rate limit для RPC
}

// MarketConfig - настройки источника рыночных данных (Binance)
type MarketConfig struct {
	Enabled        bool          // выключено = волатильность не участвует в risk score
	KlineInterval  string        // интервал свечей для волатильности
	KlineLimit     int           // количество закрытий для stdev
	RequestsPerSec float64       // rate limit для market data
	CacheTTL       time.Duration // кэш снимков рынка
}

// RiskConfig - лимиты риск-контроля
type RiskConfig struct {
	MaxDailyLoss   float64       // максимальный дневной убыток, SOL
	MaxTradeAmount float64       // максимальный объём одной сделки, SOL
	TradeCooldown  time.Duration // минимальный интервал между допущенными сделками
}

// TradingConfig - торговые параметры
type TradingConfig struct {
	MaxPositions int           // максимум одновременных позиций
	ProfitTarget float64       // множитель цены для фиксации прибыли (напр. 1.5)
	StopLoss     float64       // множитель цены для стоп-лосса (напр. 0.7)
	MaxHoldTime  time.Duration // максимальное время удержания позиции
}

// TelegramConfig - настройки Telegram-уведомлений
type TelegramConfig struct {
	Enabled bool
	Token   string
	ChatID  int64
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	APITokenHash  string // bcrypt-хеш токена для мутирующих эндпоинтов; пусто = auth выключен
	EncryptionKey string // 32 байта для AES-256 (ключ подписи кошелька)
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Load загружает конфигурацию из .env файла и переменных окружения
func Load() (*Config, error) {
	// .env опционален: в проде конфигурация приходит из окружения
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "solrisk"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Wallet: WalletConfig{
			RPCURL:         getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
			Account:        getEnv("WALLET_ACCOUNT", ""),
			SigningKey:     getEnv("WALLET_SIGNING_KEY", ""),
			SyncInterval:   getEnvAsDuration("BALANCE_SYNC_INTERVAL", 1*time.Minute),
			RPCTimeout:     getEnvAsDuration("SOLANA_RPC_TIMEOUT", 10*time.Second),
			RequestsPerSec: getEnvAsFloat("SOLANA_RPC_RATE", 10),
		},
		Market: MarketConfig{
			Enabled:        getEnvAsBool("MARKET_DATA_ENABLED", true),
			KlineInterval:  getEnv("MARKET_KLINE_INTERVAL", "15m"),
			KlineLimit:     getEnvAsInt("MARKET_KLINE_LIMIT", 20),
			RequestsPerSec: getEnvAsFloat("MARKET_DATA_RATE", 20),
			CacheTTL:       getEnvAsDuration("MARKET_CACHE_TTL", 1*time.Minute),
		},
		Risk: RiskConfig{
			MaxDailyLoss:   getEnvAsFloat("MAX_DAILY_LOSS", 1.0),
			MaxTradeAmount: getEnvAsFloat("MAX_TRADE_AMOUNT", 0.9),
			TradeCooldown:  getEnvAsDuration("TRADE_COOLDOWN", 30*time.Second),
		},
		Trading: TradingConfig{
			MaxPositions: getEnvAsInt("MAX_POSITIONS", 3),
			ProfitTarget: getEnvAsFloat("PROFIT_TARGET", 1.5),
			StopLoss:     getEnvAsFloat("STOP_LOSS", 0.7),
			MaxHoldTime:  getEnvAsDuration("MAX_HOLD_TIME", 1*time.Hour),
		},
		Telegram: TelegramConfig{
			Enabled: getEnvAsBool("TELEGRAM_ENABLED", false),
			Token:   getEnv("TELEGRAM_TOKEN", ""),
			ChatID:  getEnvAsInt64("TELEGRAM_CHAT_ID", 0),
		},
		Security: SecurityConfig{
			APITokenHash:  getEnv("API_TOKEN_HASH", ""),
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", ""),
		},
	}

	// Валидация критичных параметров безопасности
	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}

	// Валидация числовых диапазонов
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSecurity проверяет параметры безопасности
func (c *Config) validateSecurity() error {
	// ENCRYPTION_KEY обязателен только когда задан зашифрованный ключ подписи
	if c.Wallet.SigningKey != "" {
		if c.Security.EncryptionKey == "" {
			return fmt.Errorf("ENCRYPTION_KEY is required when WALLET_SIGNING_KEY is set")
		}
		if len(c.Security.EncryptionKey) != 32 {
			return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
		}
	}

	// Telegram: токен и chat id обязательны при включённых уведомлениях
	if c.Telegram.Enabled {
		if c.Telegram.Token == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is required when TELEGRAM_ENABLED=true")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_ENABLED=true")
		}
	}

	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	// Валидация портов
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	// Валидация риск-лимитов
	if c.Risk.MaxDailyLoss <= 0 {
		return fmt.Errorf("MAX_DAILY_LOSS must be positive, got %v", c.Risk.MaxDailyLoss)
	}

	if c.Risk.MaxTradeAmount <= 0 {
		return fmt.Errorf("MAX_TRADE_AMOUNT must be positive, got %v", c.Risk.MaxTradeAmount)
	}

	if c.Risk.TradeCooldown < 0 {
		return fmt.Errorf("TRADE_COOLDOWN cannot be negative, got %v", c.Risk.TradeCooldown)
	}

	// Валидация торговых параметров
	if c.Trading.MaxPositions < 1 {
		return fmt.Errorf("MAX_POSITIONS must be at least 1, got %d", c.Trading.MaxPositions)
	}

	if c.Trading.ProfitTarget <= 1 {
		return fmt.Errorf("PROFIT_TARGET must be greater than 1, got %v", c.Trading.ProfitTarget)
	}

	if c.Trading.StopLoss <= 0 || c.Trading.StopLoss >= 1 {
		return fmt.Errorf("STOP_LOSS must be between 0 and 1, got %v", c.Trading.StopLoss)
	}

	if c.Trading.MaxHoldTime <= 0 {
		return fmt.Errorf("MAX_HOLD_TIME must be positive, got %v", c.Trading.MaxHoldTime)
	}

	// Валидация внешних клиентов
	if c.Wallet.RPCTimeout <= 0 {
		return fmt.Errorf("SOLANA_RPC_TIMEOUT must be positive, got %v", c.Wallet.RPCTimeout)
	}

	if c.Market.KlineLimit < 2 {
		return fmt.Errorf("MARKET_KLINE_LIMIT must be at least 2, got %d", c.Market.KlineLimit)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
