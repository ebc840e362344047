package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// Ledger - ядро учёта позиций и риск-контроля
//
// Владеет четырьмя связанными состояниями под одним мьютексом:
// - открытые позиции (map trade id -> Position)
// - append-only журнал сделок
// - дневная статистика
// - балансовые величины (real balance, simulated cash offset, equity)
//
// Все коллабораторы (провайдер баланса, провайдер рыночных данных, часы)
// внедряются при конструировании; модуль-уровневых синглтонов нет.
type Ledger struct {
	mu sync.Mutex

	positions     map[string]*models.Position
	history       []models.Trade
	stats         models.DailyStats
	lastTradeTime time.Time

	// Балансовые величины.
	// virtualBalance (equity) = realBalance + simulatedCashDelta +
	// mark-to-market стоимость открытых позиций.
	realBalance        float64
	simulatedCashDelta float64
	virtualBalance     float64

	// Накопленный реализованный PNL с запуска (не сбрасывается по суткам)
	realizedPnl float64

	cfg     Config
	balance BalanceProvider
	market  MarketProvider
	clock   Clock
	log     *utils.Logger

	notifyCh chan *models.Notification
}

// BalanceProvider отдаёт внешний баланс кошелька в SOL
type BalanceProvider interface {
	GetBalance(ctx context.Context) (float64, error)
}

// MarketProvider отдаёт агрегированную волатильность рынка в процентах
type MarketProvider interface {
	Volatility(ctx context.Context) (float64, error)
}

// Config - лимиты и пороги ledger
type Config struct {
	MaxDailyLoss   float64       // максимальный дневной убыток, SOL
	MaxTradeAmount float64       // максимальный объём одной сделки, SOL
	TradeCooldown  time.Duration // минимальный интервал между допущенными сделками
	MaxPositions   int           // максимум одновременных позиций
	ProfitTarget   float64       // множитель фиксации прибыли
	StopLoss       float64       // множитель стоп-лосса
	MaxHoldTime    time.Duration // максимальное время удержания
	HistoryLimit   int           // размер in-memory журнала сделок
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
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

// notifyBuffer - ёмкость канала уведомлений; переполнение не блокирует учёт
const notifyBuffer = 64

// New создаёт Ledger с внедрёнными коллабораторами.
// market может быть nil - волатильность тогда не участвует в risk score.
func New(cfg Config, balance BalanceProvider, market MarketProvider, clock Clock, log *utils.Logger) *Ledger {
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 1000
	}

	return &Ledger{
		positions: make(map[string]*models.Position),
		history:   make([]models.Trade, 0, 64),
		stats: models.DailyStats{
			StartTime: clock.Now(),
		},
		cfg:      cfg,
		balance:  balance,
		market:   market,
		clock:    clock,
		log:      log.WithComponent("ledger"),
		notifyCh: make(chan *models.Notification, notifyBuffer),
	}
}

// Notifications возвращает канал событий ledger.
// Канал буферизованный; при переполнении события отбрасываются.
func (l *Ledger) Notifications() <-chan *models.Notification {
	return l.notifyCh
}

// ============================================================
// Запись сделок
// ============================================================

// RecordTrade фиксирует сделку в ledger.
//
// buy: key = mint. Создаёт позицию с trade id "<mint>-<unixms>".
// Пустой txRef считается симулированной сделкой и получает "sim_<uuid>";
// симулированный buy дебетует simulated cash offset на amount.
//
// sell: key = trade id ИЛИ mint (fallback по значению). Снимает позицию,
// фиксирует реализованный PNL = entryAmount*(price/entryPrice - 1),
// кредитует offset на entryAmount*pnlRatio для симулированных позиций и
// обновляет дневную статистику. Неизвестный ключ - ErrPositionNotFound,
// ledger не изменяется.
func (l *Ledger) RecordTrade(tradeType, key string, amount, price float64, txRef string) (*models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recordTradeLocked(tradeType, key, amount, price, txRef)
}

func (l *Ledger) recordTradeLocked(tradeType, key string, amount, price float64, txRef string) (*models.Trade, error) {
	switch tradeType {
	case models.TradeTypeBuy:
		return l.recordBuyLocked(key, amount, price, txRef), nil
	case models.TradeTypeSell:
		return l.recordSellLocked(key, amount, price, txRef)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTradeType, tradeType)
	}
}

func (l *Ledger) recordBuyLocked(mint string, amount, price float64, txRef string) *models.Trade {
	now := l.clock.Now()
	l.lastTradeTime = now

	if txRef == "" {
		txRef = "sim_" + uuid.NewString()
	}

	tradeID := fmt.Sprintf("%s-%d", mint, now.UnixMilli())

	trade := models.Trade{
		ID:        tradeID,
		Type:      models.TradeTypeBuy,
		Mint:      mint,
		Amount:    amount,
		Price:     price,
		TxRef:     txRef,
		Timestamp: now,
		Status:    models.TradeStatusPending,
	}

	l.positions[tradeID] = &models.Position{
		Mint:         mint,
		TradeID:      tradeID,
		EntryPrice:   price,
		EntryAmount:  amount,
		EntryTime:    now,
		CurrentPrice: price,
		TxRef:        txRef,
	}

	// Симулированный buy: SOL "потрачен", но внешний баланс не изменился
	if models.IsSimulatedRef(txRef) {
		l.simulatedCashDelta -= amount
	}

	l.appendHistoryLocked(trade)

	TradesRecorded.WithLabelValues(models.TradeTypeBuy).Inc()
	OpenPositions.Set(float64(len(l.positions)))

	l.log.Info("Position opened",
		utils.Mint(mint),
		utils.TradeID(tradeID),
		utils.Price(price),
		utils.Amount(amount),
	)

	l.notify(&models.Notification{
		Timestamp: now,
		Type:      models.NotificationTypeOpen,
		Severity:  models.SeverityInfo,
		Mint:      mint,
		Message:   fmt.Sprintf("Position opened: %s", mint),
		Meta: map[string]interface{}{
			"entry_price":  price,
			"entry_amount": amount,
			"trade_id":     tradeID,
		},
	})

	return &trade
}

func (l *Ledger) recordSellLocked(key string, amount, price float64, txRef string) (*models.Trade, error) {
	tradeID, position := l.resolvePositionLocked(key)
	if position == nil {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, key)
	}

	now := l.clock.Now()
	l.lastTradeTime = now

	pnlRatio := price / position.EntryPrice
	pnl := position.EntryAmount * (pnlRatio - 1)

	trade := models.Trade{
		ID:         fmt.Sprintf("%s-sell-%d", position.Mint, now.UnixMilli()),
		Type:       models.TradeTypeSell,
		Mint:       position.Mint,
		Amount:     amount,
		Price:      price,
		TxRef:      txRef,
		Timestamp:  now,
		Status:     models.TradeStatusPending,
		Pnl:        pnl,
		PnlRatio:   pnlRatio,
		EntryPrice: position.EntryPrice,
		EntryValue: position.EntryAmount,
	}

	// Симулированная позиция: возвращаем в offset стоимость + PNL
	if models.IsSimulatedRef(position.TxRef) {
		l.simulatedCashDelta += position.EntryAmount * pnlRatio
	}

	l.realizedPnl += pnl
	l.updateDailyStatsLocked(pnl, pnlRatio > 1)

	delete(l.positions, tradeID)

	l.appendHistoryLocked(trade)

	TradesRecorded.WithLabelValues(models.TradeTypeSell).Inc()
	OpenPositions.Set(float64(len(l.positions)))

	l.log.Info("Position closed",
		utils.Mint(position.Mint),
		utils.TradeID(tradeID),
		utils.PNL(pnl),
		utils.Price(price),
	)

	l.notifyCloseLocked(position.Mint, pnl, pnlRatio, amount, now)

	return &trade, nil
}

// notifyCloseLocked выбирает вариант уведомления по порогам закрытия
func (l *Ledger) notifyCloseLocked(mint string, pnl, pnlRatio, amount float64, now time.Time) {
	meta := map[string]interface{}{
		"pnl":       pnl,
		"pnl_ratio": pnlRatio,
		"amount":    amount,
	}

	switch {
	case pnlRatio >= l.cfg.ProfitTarget:
		l.notify(&models.Notification{
			Timestamp: now,
			Type:      models.NotificationTypeTarget,
			Severity:  models.SeverityInfo,
			Mint:      mint,
			Message:   fmt.Sprintf("Profit target hit: %s at %.2fx", mint, pnlRatio),
			Meta:      meta,
		})
	case pnlRatio <= l.cfg.StopLoss:
		l.notify(&models.Notification{
			Timestamp: now,
			Type:      models.NotificationTypeStop,
			Severity:  models.SeverityWarn,
			Mint:      mint,
			Message:   fmt.Sprintf("Stop loss hit: %s at %.2fx", mint, pnlRatio),
			Meta:      meta,
		})
	default:
		l.notify(&models.Notification{
			Timestamp: now,
			Type:      models.NotificationTypeClose,
			Severity:  models.SeverityInfo,
			Mint:      mint,
			Message:   fmt.Sprintf("Position closed: %s", mint),
			Meta:      meta,
		})
	}
}

// resolvePositionLocked резолвит ключ сначала как trade id,
// затем как mint открытой позиции
func (l *Ledger) resolvePositionLocked(key string) (string, *models.Position) {
	if position, ok := l.positions[key]; ok {
		return key, position
	}
	for tradeID, position := range l.positions {
		if position.Mint == key {
			return tradeID, position
		}
	}
	return "", nil
}

// appendHistoryLocked добавляет запись в журнал, отбрасывая старые
// записи сверх лимита
func (l *Ledger) appendHistoryLocked(trade models.Trade) {
	l.history = append(l.history, trade)
	if len(l.history) > l.cfg.HistoryLimit {
		l.history = l.history[len(l.history)-l.cfg.HistoryLimit:]
	}
}

// ============================================================
// Обновление и чтение позиций
// ============================================================

// UpdatePositionPrice обновляет текущую цену позиции и пересчитывает
// нереализованный PNL. Ключ резолвится как trade id или mint.
// Неизвестный ключ - no-op.
func (l *Ledger) UpdatePositionPrice(key string, newPrice float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, position := l.resolvePositionLocked(key)
	if position == nil {
		return
	}

	position.CurrentPrice = newPrice
	position.Pnl = position.EntryAmount * (position.PnlRatio() - 1)
}

// ShouldClosePosition проверяет условия выхода для позиции.
// Порядок проверок: profit target, stop loss, max hold time.
// Возвращает (false, "") для неизвестного ключа.
func (l *Ledger) ShouldClosePosition(key string) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, position := l.resolvePositionLocked(key)
	if position == nil {
		return false, ""
	}

	pnlRatio := position.PnlRatio()

	if pnlRatio >= l.cfg.ProfitTarget {
		return true, "profit_target"
	}

	if pnlRatio <= l.cfg.StopLoss {
		return true, "stop_loss"
	}

	if l.clock.Now().Sub(position.EntryTime) >= l.cfg.MaxHoldTime {
		return true, "max_hold_time"
	}

	return false, ""
}

// GetPosition возвращает копию позиции по trade id или mint
func (l *Ledger) GetPosition(key string) (models.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, position := l.resolvePositionLocked(key)
	if position == nil {
		return models.Position{}, false
	}
	return *position, true
}

// GetActivePositions возвращает снапшоты открытых позиций
// с вычисленным временем удержания
func (l *Ledger) GetActivePositions() []models.PositionSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activePositionsLocked()
}

func (l *Ledger) activePositionsLocked() []models.PositionSnapshot {
	now := l.clock.Now()
	snapshots := make([]models.PositionSnapshot, 0, len(l.positions))
	for _, position := range l.positions {
		snapshots = append(snapshots, models.PositionSnapshot{
			Position: *position,
			HoldTime: now.Sub(position.EntryTime),
		})
	}
	return snapshots
}

// GetPositionSummary возвращает агрегат по открытым позициям
func (l *Ledger) GetPositionSummary() models.PositionSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positionSummaryLocked()
}

func (l *Ledger) positionSummaryLocked() models.PositionSummary {
	summary := models.PositionSummary{
		ActivePositions: len(l.positions),
	}

	for _, position := range l.positions {
		summary.TotalPnl += position.Pnl
		summary.TotalExposure += position.EntryAmount
	}

	if summary.ActivePositions > 0 {
		summary.AveragePnl = summary.TotalPnl / float64(summary.ActivePositions)
	}

	return summary
}

// GetTradeHistory возвращает последние limit записей журнала
// (limit <= 0 - весь журнал), от старых к новым
func (l *Ledger) GetTradeHistory(limit int) []models.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if limit > 0 && len(l.history) > limit {
		start = len(l.history) - limit
	}

	out := make([]models.Trade, len(l.history)-start)
	copy(out, l.history[start:])
	return out
}

// ============================================================
// Уведомления
// ============================================================

// notify отправляет уведомление без блокировки.
// Полный канал - событие отброшено (учёт важнее доставки).
func (l *Ledger) notify(n *models.Notification) {
	select {
	case l.notifyCh <- n:
	default:
		NotificationsDropped.Inc()
		l.log.Warn("Notification channel full, event dropped",
			utils.String("type", n.Type),
			utils.Mint(n.Mint),
		)
	}
}
