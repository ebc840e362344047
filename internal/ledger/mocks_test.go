package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// ============================================================
// Фейки коллабораторов для тестов ledger
// ============================================================

// fakeClock - управляемые часы
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeBalance - провайдер баланса с настраиваемым результатом
type fakeBalance struct {
	mu      sync.Mutex
	balance float64
	err     error
	calls   int
	onFetch func() // вызывается внутри GetBalance (имитация гонки с ledger)
}

func (f *fakeBalance) GetBalance(ctx context.Context) (float64, error) {
	f.mu.Lock()
	f.calls++
	hook := f.onFetch
	f.mu.Unlock()

	// Хук выполняется до чтения результата: может и имитировать гонку,
	// и переключить ответ для текущего вызова
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, f.err
}

func (f *fakeBalance) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeMarket - провайдер волатильности
type fakeMarket struct {
	volatility float64
	err        error
}

func (f *fakeMarket) Volatility(ctx context.Context) (float64, error) {
	return f.volatility, f.err
}

// ============================================================
// Хелперы
// ============================================================

var testStart = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// testConfig - конфигурация из конкретного сценария спецификации риска:
// дневной лимит 1.0 SOL, лимит сделки 0.9 SOL
func testConfig() Config {
	return Config{
		MaxDailyLoss:   1.0,
		MaxTradeAmount: 0.9,
		TradeCooldown:  30 * time.Second,
		MaxPositions:   3,
		ProfitTarget:   1.5,
		StopLoss:       0.7,
		MaxHoldTime:    1 * time.Hour,
		HistoryLimit:   1000,
	}
}

func newTestLedger(cfg Config) (*Ledger, *fakeClock) {
	clock := newFakeClock(testStart)
	l := New(cfg, nil, nil, clock, utils.InitLogger(utils.LogConfig{Level: "error"}))
	return l, clock
}

// mustBuy открывает позицию и двигает часы за cooldown
func mustBuy(t *testing.T, l *Ledger, clock *fakeClock, mint string, amount, price float64) *models.Trade {
	t.Helper()
	trade, err := l.RecordTrade(models.TradeTypeBuy, mint, amount, price, "")
	if err != nil {
		t.Fatalf("buy %s failed: %v", mint, err)
	}
	clock.Advance(31 * time.Second)
	return trade
}

// drainNotifications вычитывает все накопленные уведомления
func drainNotifications(l *Ledger) []*models.Notification {
	var out []*models.Notification
	for {
		select {
		case n := <-l.Notifications():
			out = append(out, n)
		default:
			return out
		}
	}
}

// findNotification возвращает первое уведомление указанного типа
func findNotification(notifications []*models.Notification, typ string) *models.Notification {
	for _, n := range notifications {
		if n.Type == typ {
			return n
		}
	}
	return nil
}
