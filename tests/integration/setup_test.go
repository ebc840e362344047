// Package integration contains integration tests for the risk control service.
//
// These tests verify the correct interaction between components:
// - API integration tests: full HTTP request cycle
// - WebSocket tests: connection, broadcast messaging
// - Database tests: schema, repositories, transactions
//
// Tests that need Postgres read TEST_DB_* from the environment and skip
// themselves when the database is unreachable.
package integration

import (
	"database/sql"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"solrisk/internal/api"
	"solrisk/internal/ledger"
	"solrisk/internal/repository"
	"solrisk/internal/service"
	"solrisk/internal/websocket"
	"solrisk/pkg/utils"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// TestConfig contains configuration for integration tests
type TestConfig struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// TestServer encapsulates all components needed for integration testing
type TestServer struct {
	DB       *sql.DB
	Router   *mux.Router
	Server   *httptest.Server
	Hub      *websocket.Hub
	Ledger   *ledger.Ledger
	Repos    *TestRepositories
	Services *TestServices
	Cleanup  func()
}

// TestRepositories contains all repository instances for testing
type TestRepositories struct {
	Trade        *repository.TradeRepository
	Notification *repository.NotificationRepository
}

// TestServices contains all service instances for testing
type TestServices struct {
	History      *service.HistoryService
	Notification *service.NotificationService
}

// getTestConfig returns configuration from environment variables or defaults
func getTestConfig() TestConfig {
	return TestConfig{
		DBDriver:   getEnv("TEST_DB_DRIVER", "postgres"),
		DBHost:     getEnv("TEST_DB_HOST", "localhost"),
		DBPort:     getEnv("TEST_DB_PORT", "5432"),
		DBName:     getEnv("TEST_DB_NAME", "solrisk_test"),
		DBUser:     getEnv("TEST_DB_USER", "postgres"),
		DBPassword: getEnv("TEST_DB_PASSWORD", "postgres"),
		DBSSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// testLedgerConfig returns ledger limits suitable for integration runs:
// generous enough that admission does not interfere with CRUD tests.
func testLedgerConfig() ledger.Config {
	return ledger.Config{
		MaxDailyLoss:   100,
		MaxTradeAmount: 10,
		TradeCooldown:  0,
		MaxPositions:   100,
		ProfitTarget:   1.5,
		StopLoss:       0.7,
		MaxHoldTime:    time.Hour,
		HistoryLimit:   1000,
	}
}

// SetupTestDB creates a test database connection
func SetupTestDB(t *testing.T) (*sql.DB, func()) {
	config := getTestConfig()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName, config.DBSSLMode,
	)

	db, err := sql.Open(config.DBDriver, connStr)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil, func() {}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Skipf("Skipping integration test: cannot ping database: %v", err)
		return nil, func() {}
	}

	// Set connection pool settings
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	return db, cleanup
}

// SetupTestServer creates a complete test server with all components
func SetupTestServer(t *testing.T) *TestServer {
	db, dbCleanup := SetupTestDB(t)
	if db == nil {
		return nil
	}

	// Initialize tables
	if err := initTestTables(db); err != nil {
		t.Skipf("Skipping integration test: cannot initialize tables: %v", err)
		return nil
	}

	logger := utils.InitLogger(utils.LogConfig{Level: "error"})

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Create repositories
	repos := &TestRepositories{
		Trade:        repository.NewTradeRepository(db),
		Notification: repository.NewNotificationRepository(db),
	}

	// Create services
	services := &TestServices{
		History:      service.NewHistoryService(repos.Trade, logger),
		Notification: service.NewNotificationService(repos.Notification, logger),
	}
	// Set WebSocket hub for notification service
	services.Notification.SetWebSocketHub(hub)

	// In-memory ledger: no balance or market provider, real clock
	core := ledger.New(testLedgerConfig(), nil, nil, nil, logger)

	// Setup router; auth disabled for tests
	deps := &api.Dependencies{
		Ledger:              core,
		HistoryService:      services.History,
		NotificationService: services.Notification,
		Hub:                 hub,
		Log:                 logger,
	}
	router := api.SetupRoutes(deps)

	// Create test server
	server := httptest.NewServer(router)

	cleanup := func() {
		server.Close()
		hub.Stop()
		cleanupTestTables(db)
		dbCleanup()
	}

	return &TestServer{
		DB:       db,
		Router:   router,
		Server:   server,
		Hub:      hub,
		Ledger:   core,
		Repos:    repos,
		Services: services,
		Cleanup:  cleanup,
	}
}

// initTestTables creates or truncates tables for testing
func initTestTables(db *sql.DB) error {
	// Create tables if not exist
	tables := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id VARCHAR(100) PRIMARY KEY,
			type VARCHAR(10) NOT NULL,
			mint VARCHAR(64) NOT NULL,
			amount DECIMAL(20, 9) NOT NULL,
			price DECIMAL(24, 12) NOT NULL,
			tx_ref TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMP NOT NULL DEFAULT NOW(),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			pnl DECIMAL(20, 9) NOT NULL DEFAULT 0,
			pnl_ratio DECIMAL(20, 9) NOT NULL DEFAULT 0,
			entry_price DECIMAL(24, 12) NOT NULL DEFAULT 0,
			entry_value DECIMAL(20, 9) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id SERIAL PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL DEFAULT NOW(),
			type VARCHAR(50) NOT NULL,
			severity VARCHAR(10) NOT NULL DEFAULT 'info',
			mint VARCHAR(64) NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			meta JSONB DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_mint ON trades (mint)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades (timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_type ON notifications (type)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// cleanupTestTables truncates all test tables
func cleanupTestTables(db *sql.DB) {
	tables := []string{
		"trades",
		"notifications",
	}

	for _, table := range tables {
		db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
	}
}

// TruncateTable truncates a specific table for testing
func TruncateTable(db *sql.DB, tableName string) error {
	_, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", tableName))
	return err
}
