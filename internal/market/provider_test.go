package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solrisk/pkg/utils"
)

// ============================================================
// Provider Tests
// ============================================================

type fakeSource struct {
	mu     sync.Mutex
	closes []float64
	err    error
	calls  int
}

func (f *fakeSource) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	klines := make([]Kline, len(f.closes))
	for i, c := range f.closes {
		klines[i] = Kline{Close: c}
	}
	return klines, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testProvider(source KlineSource, ttl time.Duration) *Provider {
	cfg := DefaultConfig()
	cfg.CacheTTL = ttl
	cfg.RequestsPerSec = 1000
	return newProvider(cfg, source, utils.InitLogger(utils.LogConfig{Level: "error"}))
}

func TestVolatility(t *testing.T) {
	// Известный ряд: mean 5, population stddev 2 -> 40%
	source := &fakeSource{closes: []float64{2, 4, 4, 4, 5, 5, 7, 9}}
	p := testProvider(source, time.Minute)

	got, err := p.Volatility(context.Background())
	if err != nil {
		t.Fatalf("Volatility returned error: %v", err)
	}
	if !almostEqual(got, 40.0) {
		t.Errorf("expected volatility 40, got %v", got)
	}
	if price := p.LastPrice(); price != 9 {
		t.Errorf("expected last price 9, got %v", price)
	}
}

func TestVolatilityFlatMarket(t *testing.T) {
	source := &fakeSource{closes: []float64{100, 100, 100, 100}}
	p := testProvider(source, time.Minute)

	got, err := p.Volatility(context.Background())
	if err != nil {
		t.Fatalf("Volatility returned error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected zero volatility on flat closes, got %v", got)
	}
}

func TestVolatilityCached(t *testing.T) {
	source := &fakeSource{closes: []float64{2, 4, 4, 4, 5, 5, 7, 9}}
	p := testProvider(source, time.Minute)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	p.nowFunc = func() time.Time { return now }

	if _, err := p.Volatility(context.Background()); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := p.Volatility(context.Background()); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if source.Calls() != 1 {
		t.Errorf("expected 1 upstream call within TTL, got %d", source.Calls())
	}

	// TTL истёк - новый запрос
	now = now.Add(2 * time.Minute)
	if _, err := p.Volatility(context.Background()); err != nil {
		t.Fatalf("call after TTL failed: %v", err)
	}
	if source.Calls() != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", source.Calls())
	}
}

func TestVolatilitySourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("binance unreachable")}
	p := testProvider(source, time.Minute)

	if _, err := p.Volatility(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
}

func TestVolatilityNotEnoughKlines(t *testing.T) {
	source := &fakeSource{closes: []float64{100}}
	p := testProvider(source, time.Minute)

	if _, err := p.Volatility(context.Background()); err == nil {
		t.Fatal("expected error on single kline")
	}
}

func TestProviderDefaults(t *testing.T) {
	p := newProvider(Config{}, &fakeSource{closes: []float64{1, 2}}, nil)

	if p.cfg.Symbol != "SOLUSDT" {
		t.Errorf("expected default symbol SOLUSDT, got %s", p.cfg.Symbol)
	}
	if p.cfg.KlineInterval != "15m" {
		t.Errorf("expected default interval 15m, got %s", p.cfg.KlineInterval)
	}
	if p.cfg.KlineLimit != 20 {
		t.Errorf("expected default limit 20, got %d", p.cfg.KlineLimit)
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
