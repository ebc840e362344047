package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solrisk/internal/ledger"
	"solrisk/internal/models"
)

// ErrMockDatabase - типовая ошибка БД для тестов
var ErrMockDatabase = errors.New("mock database error")

// testMint - валидный base58 mint для запросов
const testMint = "So11111111111111111111111111111111111111112"

// ============ Mock RiskLedger ============

type MockRiskLedger struct {
	positions []models.PositionSnapshot
	summary   models.PositionSummary
	stats     models.DailyStatsSnapshot
	risk      models.RiskMetrics
	admission models.AdmissionResult
	history   []models.Trade
	outcomes  []models.CloseOutcome

	executed   []*models.Trade
	executeErr error

	resetCalls int
	lastReason string
}

func NewMockRiskLedger() *MockRiskLedger {
	return &MockRiskLedger{
		admission: models.AdmissionResult{Allowed: true, Reasons: []string{}},
	}
}

func (m *MockRiskLedger) CanExecuteTrade(amount float64, mint string) models.AdmissionResult {
	return m.admission
}

func (m *MockRiskLedger) ExecuteTrade(tradeType, key string, amount, price float64, txRef string) (*models.Trade, error) {
	if m.executeErr != nil {
		return nil, m.executeErr
	}
	trade := &models.Trade{
		ID:        fmt.Sprintf("%s-%d", key, time.Now().UnixMilli()),
		Type:      tradeType,
		Mint:      key,
		Amount:    amount,
		Price:     price,
		TxRef:     txRef,
		Timestamp: time.Now(),
		Status:    models.TradeStatusPending,
	}
	m.executed = append(m.executed, trade)
	return trade, nil
}

func (m *MockRiskLedger) GetActivePositions() []models.PositionSnapshot {
	return m.positions
}

func (m *MockRiskLedger) GetPositionSummary() models.PositionSummary {
	return m.summary
}

func (m *MockRiskLedger) GetDailyStats() models.DailyStatsSnapshot {
	return m.stats
}

func (m *MockRiskLedger) ResetDailyStats() {
	m.resetCalls++
}

func (m *MockRiskLedger) GetRiskMetrics(ctx context.Context) models.RiskMetrics {
	return m.risk
}

func (m *MockRiskLedger) GetTradeHistory(limit int) []models.Trade {
	if limit > 0 && limit < len(m.history) {
		return m.history[len(m.history)-limit:]
	}
	return m.history
}

func (m *MockRiskLedger) EmergencyCloseAll(reason string) []models.CloseOutcome {
	m.lastReason = reason
	return m.outcomes
}

// rejectWith настраивает отказ риск-контроля со списком причин
func (m *MockRiskLedger) rejectWith(reasons ...string) {
	m.admission = models.AdmissionResult{Allowed: false, Reasons: reasons}
	m.executeErr = &ledger.AdmissionError{Reasons: reasons}
}

// ============ Mock HistoryService ============

type MockHistoryService struct {
	trades []*models.Trade

	recordErr error
	getErr    error
}

func NewMockHistoryService() *MockHistoryService {
	return &MockHistoryService{}
}

func (m *MockHistoryService) RecordTrade(trade *models.Trade) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.trades = append(m.trades, trade)
	return nil
}

func (m *MockHistoryService) GetTrades(limit int) ([]*models.Trade, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if limit > 0 && limit < len(m.trades) {
		return m.trades[:limit], nil
	}
	return m.trades, nil
}

func (m *MockHistoryService) GetTradesByMint(mint string, limit int) ([]*models.Trade, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.Trade, 0)
	for _, tr := range m.trades {
		if tr.Mint == mint {
			result = append(result, tr)
		}
	}
	return result, nil
}

// ============ Mock NotificationService ============

type MockNotificationService struct {
	notifications []*models.Notification

	lastTypes []string
	lastLimit int

	getErr   error
	clearErr error
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) GetNotifications(types []string, limit int) ([]*models.Notification, error) {
	m.lastTypes = types
	m.lastLimit = limit
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.notifications, nil
}

func (m *MockNotificationService) ClearNotifications() (int64, error) {
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	deleted := int64(len(m.notifications))
	m.notifications = nil
	return deleted, nil
}
