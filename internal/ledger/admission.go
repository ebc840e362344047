package ledger

import (
	"fmt"
	"math"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// Правила допуска (метки для метрик)
const (
	ruleDailyLoss    = "daily_loss"
	ruleTradeCap     = "trade_cap"
	ruleMaxPositions = "max_positions"
	ruleCooldown     = "cooldown"
	ruleDuplicate    = "duplicate_position"
)

// CanExecuteTrade проверяет допуск новой сделки.
//
// Проверяются ВСЕ пять правил, без короткого замыкания:
// дневной лимит убытка, лимит объёма одной сделки, лимит числа позиций,
// cooldown, дубликат позиции по mint. Reasons содержит каждое
// нарушенное правило.
//
// Метод read-only: состояние ledger не изменяется.
func (l *Ledger) CanExecuteTrade(amount float64, mint string) models.AdmissionResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admissionLocked(amount, mint)
}

func (l *Ledger) admissionLocked(amount float64, mint string) models.AdmissionResult {
	now := l.clock.Now()
	reasons := []string{}

	// Дневной лимит убытка
	if l.stats.NetPnl <= -l.cfg.MaxDailyLoss {
		reasons = append(reasons, fmt.Sprintf("Daily loss limit reached: %.4f SOL", l.stats.NetPnl))
		TradesBlocked.WithLabelValues(ruleDailyLoss).Inc()
	}

	// Лимит объёма одной сделки
	if amount > l.cfg.MaxTradeAmount {
		reasons = append(reasons, fmt.Sprintf("Trade amount %v SOL exceeds single trade limit %v SOL",
			amount, l.cfg.MaxTradeAmount))
		TradesBlocked.WithLabelValues(ruleTradeCap).Inc()
	}

	// Лимит числа открытых позиций
	if len(l.positions) >= l.cfg.MaxPositions {
		reasons = append(reasons, fmt.Sprintf("Maximum positions limit reached: %d/%d",
			len(l.positions), l.cfg.MaxPositions))
		TradesBlocked.WithLabelValues(ruleMaxPositions).Inc()
	}

	// Cooldown между сделками
	if !l.lastTradeTime.IsZero() {
		elapsed := now.Sub(l.lastTradeTime)
		if elapsed < l.cfg.TradeCooldown {
			remaining := l.cfg.TradeCooldown - elapsed
			reasons = append(reasons, fmt.Sprintf("Trade cooldown active: %ds remaining",
				int(math.Ceil(remaining.Seconds()))))
			TradesBlocked.WithLabelValues(ruleCooldown).Inc()
		}
	}

	// Дубликат позиции по mint
	for _, position := range l.positions {
		if position.Mint == mint {
			reasons = append(reasons, fmt.Sprintf("Token %s already has an active position", mint))
			TradesBlocked.WithLabelValues(ruleDuplicate).Inc()
			break
		}
	}

	if len(reasons) > 0 {
		l.log.Warn("Trade blocked by risk control",
			utils.Mint(mint),
			utils.Amount(amount),
			utils.Any("reasons", reasons),
		)
		return models.AdmissionResult{Allowed: false, Reasons: reasons}
	}

	return models.AdmissionResult{Allowed: true, Reasons: []string{}}
}

// ExecuteTrade атомарно выполняет допуск и запись сделки под одним
// захватом мьютекса: между проверкой и записью не может вклиниться
// другая сделка.
//
// Допуск применяется только к buy: закрытие позиции риск-контроль
// блокировать не должен. Отклонённый buy возвращает *AdmissionError
// со всеми нарушенными правилами.
func (l *Ledger) ExecuteTrade(tradeType, key string, amount, price float64, txRef string) (*models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tradeType == models.TradeTypeBuy {
		if result := l.admissionLocked(amount, key); !result.Allowed {
			return nil, &AdmissionError{Reasons: result.Reasons}
		}
	}

	return l.recordTradeLocked(tradeType, key, amount, price, txRef)
}
