// Package market поставляет агрегированные рыночные данные для risk score.
// Источник - Binance (пара SOLUSDT как прокси настроения рынка Solana).
package market

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"

	"solrisk/pkg/ratelimit"
	"solrisk/pkg/utils"
)

// Kline - одна свеча
type Kline struct {
	OpenTime  time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
}

// KlineSource абстрагирует источник свечей (для тестов)
type KlineSource interface {
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error)
}

// binanceSource - реальный источник на go-binance
type binanceSource struct {
	client *binance.Client
}

func (s *binanceSource) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}

	result := make([]Kline, len(klines))
	for i, k := range klines {
		result[i] = Kline{
			OpenTime:  time.Unix(k.OpenTime/1000, 0),
			Open:      parseFloat(k.Open),
			High:      parseFloat(k.High),
			Low:       parseFloat(k.Low),
			Close:     parseFloat(k.Close),
			Volume:    parseFloat(k.Volume),
			CloseTime: time.Unix(k.CloseTime/1000, 0),
		}
	}
	return result, nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// Config - настройки провайдера
type Config struct {
	Symbol         string        // торговая пара, default SOLUSDT
	KlineInterval  string        // интервал свечей, default 15m
	KlineLimit     int           // количество свечей, default 20
	RequestsPerSec float64       // лимит запросов к Binance
	CacheTTL       time.Duration // срок жизни кэша волатильности
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		Symbol:         "SOLUSDT",
		KlineInterval:  "15m",
		KlineLimit:     20,
		RequestsPerSec: 2,
		CacheTTL:       time.Minute,
	}
}

// Provider считает волатильность рынка по закрытиям свечей.
// Реализует ledger.MarketProvider.
type Provider struct {
	cfg     Config
	source  KlineSource
	limiter *ratelimit.RateLimiter
	log     *utils.Logger

	// Кэш: волатильность дорогая (сетевой вызов), а risk score может
	// запрашиваться на каждый HTTP запрос
	mu        sync.Mutex
	cached    float64
	cachedAt  time.Time
	lastPrice float64
	nowFunc   func() time.Time
}

// NewProvider создаёт провайдер поверх публичного Binance API.
// Ключи не нужны: свечи - публичный endpoint.
func NewProvider(cfg Config, log *utils.Logger) *Provider {
	return newProvider(cfg, &binanceSource{client: binance.NewClient("", "")}, log)
}

func newProvider(cfg Config, source KlineSource, log *utils.Logger) *Provider {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	defaults := DefaultConfig()
	if cfg.Symbol == "" {
		cfg.Symbol = defaults.Symbol
	}
	if cfg.KlineInterval == "" {
		cfg.KlineInterval = defaults.KlineInterval
	}
	if cfg.KlineLimit < 2 {
		cfg.KlineLimit = defaults.KlineLimit
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = defaults.RequestsPerSec
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}

	return &Provider{
		cfg:     cfg,
		source:  source,
		limiter: ratelimit.NewRateLimiter(cfg.RequestsPerSec, cfg.RequestsPerSec),
		log:     log.WithComponent("market"),
		nowFunc: time.Now,
	}
}

// Volatility возвращает волатильность в процентах:
// stddev(closes) / mean(closes) * 100 по последним KlineLimit свечам.
// Результат кэшируется на CacheTTL.
func (p *Provider) Volatility(ctx context.Context) (float64, error) {
	p.mu.Lock()
	if !p.cachedAt.IsZero() && p.nowFunc().Sub(p.cachedAt) < p.cfg.CacheTTL {
		cached := p.cached
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	klines, err := p.source.GetKlines(ctx, p.cfg.Symbol, p.cfg.KlineInterval, p.cfg.KlineLimit)
	if err != nil {
		return 0, err
	}
	if len(klines) < 2 {
		return 0, fmt.Errorf("not enough klines for %s: got %d", p.cfg.Symbol, len(klines))
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}

	volatility := utils.Volatility(closes)

	p.mu.Lock()
	p.cached = volatility
	p.cachedAt = p.nowFunc()
	p.lastPrice = closes[len(closes)-1]
	p.mu.Unlock()

	p.log.Debug("Volatility refreshed",
		utils.String("symbol", p.cfg.Symbol),
		utils.Float64("volatility", volatility),
	)

	return volatility, nil
}

// LastPrice возвращает close последней свечи из последнего успешного
// запроса; 0 до первого Volatility
func (p *Provider) LastPrice() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPrice
}
