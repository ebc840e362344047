// Package service - бизнес-логика между ledger/репозиториями и
// внешними поверхностями (API, websocket, Telegram).
package service

import (
	"context"
	"time"

	"solrisk/internal/models"
)

// TradeRepositoryInterface определяет интерфейс журнала сделок
type TradeRepositoryInterface interface {
	Create(trade *models.Trade) error
	GetByID(id string) (*models.Trade, error)
	GetRecent(limit int) ([]*models.Trade, error)
	GetByMint(mint string, limit int) ([]*models.Trade, error)
	GetInTimeRange(from, to time.Time) ([]*models.Trade, error)
	UpdateStatus(id, status string) error
	Count() (int, error)
	DeleteOlderThan(threshold time.Time) (int64, error)
}

// NotificationRepositoryInterface определяет интерфейс журнала уведомлений
type NotificationRepositoryInterface interface {
	Create(n *models.Notification) error
	GetRecent(limit int) ([]*models.Notification, error)
	GetByTypes(types []string, limit int) ([]*models.Notification, error)
	DeleteAll() (int64, error)
	DeleteOlderThan(threshold time.Time) (int64, error)
}

// WebSocketBroadcaster - интерфейс для real-time рассылки.
// Разрывает циклическую зависимость service -> websocket -> service.
type WebSocketBroadcaster interface {
	BroadcastNotification(n *models.Notification)
}

// NotificationServiceInterface - операции с журналом уведомлений,
// используемые API handlers
type NotificationServiceInterface interface {
	GetNotifications(types []string, limit int) ([]*models.Notification, error)
	ClearNotifications() (int64, error)
}

// HistoryServiceInterface - операции с персистентной историей сделок,
// используемые API handlers
type HistoryServiceInterface interface {
	RecordTrade(trade *models.Trade) error
	GetTrades(limit int) ([]*models.Trade, error)
	GetTradesByMint(mint string, limit int) ([]*models.Trade, error)
}

// RiskLedgerInterface - операции риск-контроля и учёта позиций,
// используемые API handlers. Реализуется ledger.Ledger.
type RiskLedgerInterface interface {
	CanExecuteTrade(amount float64, mint string) models.AdmissionResult
	ExecuteTrade(tradeType, key string, amount, price float64, txRef string) (*models.Trade, error)
	GetActivePositions() []models.PositionSnapshot
	GetPositionSummary() models.PositionSummary
	GetDailyStats() models.DailyStatsSnapshot
	ResetDailyStats()
	GetRiskMetrics(ctx context.Context) models.RiskMetrics
	GetTradeHistory(limit int) []models.Trade
	EmergencyCloseAll(reason string) []models.CloseOutcome
}
