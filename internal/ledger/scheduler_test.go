package ledger

import (
	"context"
	"testing"
	"time"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// ============================================================
// Reset Scheduler Tests
// ============================================================

func TestResetSchedulerFiresAtMidnight(t *testing.T) {
	// Часы прямо перед полночью: реальный таймер взводится на ~50ms
	nearMidnight := time.Date(2024, 6, 15, 23, 59, 59, int(950*time.Millisecond), time.UTC)
	clock := newFakeClock(nearMidnight)
	l := New(testConfig(), nil, nil, clock, utils.InitLogger(utils.LogConfig{Level: "error"}))

	// Одна закрытая сделка до полуночи
	buy, err := l.RecordTrade(models.TradeTypeBuy, "mintA", 0.5, 10.0, "")
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := l.RecordTrade(models.TradeTypeSell, buy.ID, 0.5, 12.0, ""); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	scheduler := NewResetScheduler(l, utils.InitLogger(utils.LogConfig{Level: "error"}))
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	// Ждём сброса счётчиков
	deadline := time.After(3 * time.Second)
	for {
		if l.GetDailyStats().TotalTrades == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("scheduler did not reset stats at midnight")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Позиции сброс не трогает... их нет, но журнал цел
	if got := l.GetTradeHistory(0); len(got) != 2 {
		t.Errorf("reset touched trade history, got %d entries", len(got))
	}
}

func TestResetSchedulerStartIdempotent(t *testing.T) {
	l, _ := newTestLedger(testConfig())
	scheduler := NewResetScheduler(l, nil)

	scheduler.Start(context.Background())
	scheduler.Start(context.Background()) // повторный Start - no-op
	scheduler.Stop()
}

func TestResetSchedulerStopWithoutStart(t *testing.T) {
	l, _ := newTestLedger(testConfig())
	scheduler := NewResetScheduler(l, nil)

	// Не должен паниковать и блокироваться
	scheduler.Stop()
}

func TestResetSchedulerStopCancelsTimer(t *testing.T) {
	l, _ := newTestLedger(testConfig())
	scheduler := NewResetScheduler(l, nil)

	scheduler.Start(context.Background())

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestResetSchedulerRestartAfterStop(t *testing.T) {
	l, _ := newTestLedger(testConfig())
	scheduler := NewResetScheduler(l, nil)

	scheduler.Start(context.Background())
	scheduler.Stop()
	scheduler.Start(context.Background())
	scheduler.Stop()
}
