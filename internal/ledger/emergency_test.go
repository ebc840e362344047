package ledger

import (
	"testing"

	"solrisk/internal/models"
)

// ============================================================
// Emergency Closure Tests
// ============================================================

func TestEmergencyCloseAllMarksPositions(t *testing.T) {
	l, clock := newTestLedger(testConfig())

	mustBuy(t, l, clock, "mintA", 0.5, 10.0)
	mustBuy(t, l, clock, "mintB", 0.3, 5.0)
	drainNotifications(l)

	outcomes := l.EmergencyCloseAll("market crash")

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, outcome := range outcomes {
		if outcome.Status != models.CloseStatusMarked {
			t.Errorf("expected status %q, got %q", models.CloseStatusMarked, outcome.Status)
		}
		if outcome.Reason != "market crash" {
			t.Errorf("expected reason %q, got %q", "market crash", outcome.Reason)
		}
	}

	// Позиции помечены, но НЕ закрыты: ликвидация - дело execution engine
	snapshots := l.GetActivePositions()
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 positions still open, got %d", len(snapshots))
	}
	for _, snapshot := range snapshots {
		if !snapshot.EmergencyClose {
			t.Errorf("position %s not marked for closure", snapshot.Mint)
		}
		if snapshot.EmergencyReason != "market crash" {
			t.Errorf("position %s has reason %q", snapshot.Mint, snapshot.EmergencyReason)
		}
	}

	n := findNotification(drainNotifications(l), models.NotificationTypeEmergency)
	if n == nil {
		t.Fatal("expected EMERGENCY notification")
	}
	if n.Severity != models.SeverityWarn {
		t.Errorf("expected warn severity, got %q", n.Severity)
	}
}

func TestEmergencyCloseAllDefaultReason(t *testing.T) {
	l, clock := newTestLedger(testConfig())
	mustBuy(t, l, clock, "mintA", 0.5, 10.0)

	outcomes := l.EmergencyCloseAll("")
	if len(outcomes) != 1 || outcomes[0].Reason != "emergency" {
		t.Errorf("expected default reason %q, got %v", "emergency", outcomes)
	}
}

func TestEmergencyCloseAllEmptyLedger(t *testing.T) {
	l, _ := newTestLedger(testConfig())

	outcomes := l.EmergencyCloseAll("test")
	if outcomes == nil || len(outcomes) != 0 {
		t.Errorf("expected empty non-nil outcomes, got %v", outcomes)
	}
}

// Помеченная позиция закрывается обычным sell с обычным учётом PNL
func TestMarkedPositionClosesNormally(t *testing.T) {
	l, clock := newTestLedger(testConfig())

	buy := mustBuy(t, l, clock, "mintA", 0.5, 10.0)
	l.EmergencyCloseAll("drawdown")

	sell, err := l.RecordTrade(models.TradeTypeSell, buy.ID, 0.5, 9.0, "")
	if err != nil {
		t.Fatalf("sell of marked position failed: %v", err)
	}
	if !almostEqual(sell.Pnl, -0.05) {
		t.Errorf("expected pnl -0.05, got %v", sell.Pnl)
	}
	if len(l.GetActivePositions()) != 0 {
		t.Error("marked position not removed after sell")
	}
}
