package service

import (
	"sync"
	"time"

	"solrisk/internal/models"
	"solrisk/internal/repository"
)

// ============ Mock TradeRepository ============

type MockTradeRepository struct {
	trades []*models.Trade

	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func NewMockTradeRepository() *MockTradeRepository {
	return &MockTradeRepository{}
}

func (m *MockTradeRepository) Create(trade *models.Trade) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.trades = append(m.trades, trade)
	return nil
}

func (m *MockTradeRepository) GetByID(id string) (*models.Trade, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, tr := range m.trades {
		if tr.ID == id {
			return tr, nil
		}
	}
	return nil, repository.ErrTradeNotFound
}

func (m *MockTradeRepository) GetRecent(limit int) ([]*models.Trade, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	// Последние limit сделок в обратном хронологическом порядке
	result := make([]*models.Trade, 0, limit)
	for i := len(m.trades) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.trades[i])
	}
	return result, nil
}

func (m *MockTradeRepository) GetByMint(mint string, limit int) ([]*models.Trade, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.Trade, 0)
	for i := len(m.trades) - 1; i >= 0 && len(result) < limit; i-- {
		if m.trades[i].Mint == mint {
			result = append(result, m.trades[i])
		}
	}
	return result, nil
}

func (m *MockTradeRepository) GetInTimeRange(from, to time.Time) ([]*models.Trade, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.Trade, 0)
	for _, tr := range m.trades {
		if !tr.Timestamp.Before(from) && !tr.Timestamp.After(to) {
			result = append(result, tr)
		}
	}
	return result, nil
}

func (m *MockTradeRepository) UpdateStatus(id, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, tr := range m.trades {
		if tr.ID == id {
			tr.Status = status
			return nil
		}
	}
	return repository.ErrTradeNotFound
}

func (m *MockTradeRepository) Count() (int, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.trades), nil
}

func (m *MockTradeRepository) DeleteOlderThan(threshold time.Time) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.trades[:0]
	var deleted int64
	for _, tr := range m.trades {
		if tr.Timestamp.Before(threshold) {
			deleted++
			continue
		}
		kept = append(kept, tr)
	}
	m.trades = kept
	return deleted, nil
}

// ============ Mock NotificationRepository ============

type MockNotificationRepository struct {
	notifications []*models.Notification
	nextID        int

	createErr error
	getErr    error
	deleteErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{nextID: 1}
}

func (m *MockNotificationRepository) Create(n *models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = m.nextID
	m.nextID++
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *MockNotificationRepository) GetRecent(limit int) ([]*models.Notification, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.Notification, 0, limit)
	for i := len(m.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.notifications[i])
	}
	return result, nil
}

func (m *MockNotificationRepository) GetByTypes(types []string, limit int) ([]*models.Notification, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	result := make([]*models.Notification, 0)
	for i := len(m.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		if wanted[m.notifications[i].Type] {
			result = append(result, m.notifications[i])
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) DeleteAll() (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	deleted := int64(len(m.notifications))
	m.notifications = nil
	return deleted, nil
}

func (m *MockNotificationRepository) DeleteOlderThan(threshold time.Time) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.notifications[:0]
	var deleted int64
	for _, n := range m.notifications {
		if n.Timestamp.Before(threshold) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return deleted, nil
}

// ============ Mock WebSocketBroadcaster ============

type MockBroadcaster struct {
	mu        sync.Mutex
	broadcast []*models.Notification
}

func (m *MockBroadcaster) BroadcastNotification(n *models.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcast = append(m.broadcast, n)
}

func (m *MockBroadcaster) Broadcasted() []*models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Notification(nil), m.broadcast...)
}
