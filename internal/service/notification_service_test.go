package service

import (
	"errors"
	"testing"
	"time"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

func newTestNotificationService() (*NotificationService, *MockNotificationRepository) {
	repo := NewMockNotificationRepository()
	log := utils.InitLogger(utils.LogConfig{Level: "error"})
	return NewNotificationService(repo, log), repo
}

func makeNotification(ntype, severity, message string) *models.Notification {
	return &models.Notification{
		Timestamp: time.Now(),
		Type:      ntype,
		Severity:  severity,
		Message:   message,
	}
}

func TestNotificationServiceName(t *testing.T) {
	svc, _ := newTestNotificationService()
	if svc.Name() != "journal" {
		t.Errorf("expected sink name 'journal', got %q", svc.Name())
	}
}

func TestSendPersistsAndBroadcasts(t *testing.T) {
	svc, repo := newTestNotificationService()
	hub := &MockBroadcaster{}
	svc.SetWebSocketHub(hub)

	n := makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "Position opened")
	if err := svc.Send(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(repo.notifications))
	}
	if n.ID == 0 {
		t.Error("expected notification ID to be assigned by repository")
	}

	sent := hub.Broadcasted()
	if len(sent) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(sent))
	}
	if sent[0].Type != models.NotificationTypeOpen {
		t.Errorf("expected broadcast type OPEN, got %q", sent[0].Type)
	}
}

func TestSendBroadcastsDespiteRepositoryError(t *testing.T) {
	svc, repo := newTestNotificationService()
	repo.createErr = errors.New("db down")
	hub := &MockBroadcaster{}
	svc.SetWebSocketHub(hub)

	n := makeNotification(models.NotificationTypeStop, models.SeverityWarn, "Stop loss")
	err := svc.Send(n)
	if err == nil {
		t.Fatal("expected error when repository fails")
	}

	// Broadcast должен пройти несмотря на отказ журнала
	if len(hub.Broadcasted()) != 1 {
		t.Errorf("expected 1 broadcast despite repo error, got %d", len(hub.Broadcasted()))
	}
}

func TestSendWithoutHub(t *testing.T) {
	svc, repo := newTestNotificationService()

	n := makeNotification(models.NotificationTypeClose, models.SeverityInfo, "Closed")
	if err := svc.Send(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.notifications) != 1 {
		t.Errorf("expected 1 persisted notification, got %d", len(repo.notifications))
	}
}

func TestGetNotifications(t *testing.T) {
	tests := []struct {
		name          string
		seed          []*models.Notification
		types         []string
		limit         int
		expectedCount int
		expectedFirst string
	}{
		{
			name: "returns recent without type filter",
			seed: []*models.Notification{
				makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "first"),
				makeNotification(models.NotificationTypeClose, models.SeverityInfo, "second"),
			},
			limit:         10,
			expectedCount: 2,
			expectedFirst: models.NotificationTypeClose,
		},
		{
			name: "filters by types",
			seed: []*models.Notification{
				makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "open"),
				makeNotification(models.NotificationTypeStop, models.SeverityWarn, "stop"),
				makeNotification(models.NotificationTypeTarget, models.SeverityInfo, "target"),
			},
			types:         []string{models.NotificationTypeStop, models.NotificationTypeTarget},
			limit:         10,
			expectedCount: 2,
			expectedFirst: models.NotificationTypeTarget,
		},
		{
			name: "respects limit",
			seed: []*models.Notification{
				makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "a"),
				makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "b"),
				makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "c"),
			},
			limit:         2,
			expectedCount: 2,
			expectedFirst: models.NotificationTypeOpen,
		},
		{
			name:          "empty journal",
			limit:         10,
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestNotificationService()
			for _, n := range tt.seed {
				if err := svc.Send(n); err != nil {
					t.Fatalf("seed failed: %v", err)
				}
			}

			got, err := svc.GetNotifications(tt.types, tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.expectedCount {
				t.Fatalf("expected %d notifications, got %d", tt.expectedCount, len(got))
			}
			if tt.expectedCount > 0 && got[0].Type != tt.expectedFirst {
				t.Errorf("expected first type %q, got %q", tt.expectedFirst, got[0].Type)
			}
		})
	}
}

func TestGetNotificationsDefaultLimit(t *testing.T) {
	svc, repo := newTestNotificationService()
	for i := 0; i < defaultNotificationLimit+10; i++ {
		n := makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "n")
		if err := repo.Create(n); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	got, err := svc.GetNotifications(nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != defaultNotificationLimit {
		t.Errorf("expected default limit %d, got %d", defaultNotificationLimit, len(got))
	}
}

func TestGetNotificationsRepositoryError(t *testing.T) {
	svc, repo := newTestNotificationService()
	repo.getErr = errors.New("query failed")

	if _, err := svc.GetNotifications(nil, 10); err == nil {
		t.Error("expected error from repository")
	}
	if _, err := svc.GetNotifications([]string{models.NotificationTypeOpen}, 10); err == nil {
		t.Error("expected error from repository with type filter")
	}
}

func TestClearNotifications(t *testing.T) {
	svc, _ := newTestNotificationService()
	for i := 0; i < 3; i++ {
		n := makeNotification(models.NotificationTypeOpen, models.SeverityInfo, "n")
		if err := svc.Send(n); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	deleted, err := svc.ClearNotifications()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	got, err := svc.GetNotifications(nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty journal after clear, got %d", len(got))
	}
}

func TestClearNotificationsError(t *testing.T) {
	svc, repo := newTestNotificationService()
	repo.deleteErr = errors.New("delete failed")

	if _, err := svc.ClearNotifications(); err == nil {
		t.Error("expected error from repository")
	}
}
