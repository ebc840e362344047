package ledger

import (
	"context"
	"fmt"

	"solrisk/pkg/retry"
	"solrisk/pkg/utils"
)

// SyncBalance сверяет realBalance с внешним кошельком и пересчитывает
// equity.
//
// Сетевой вызов выполняется БЕЗ удержания мьютекса: блокировка
// захватывается заново после ответа, и equity пересчитывается из
// актуального на тот момент состояния позиций. Позиция, открытая или
// закрытая во время ожидания сети, не теряется.
//
// При ошибке провайдера предыдущие балансовые величины сохраняются.
func (l *Ledger) SyncBalance(ctx context.Context) error {
	if l.balance == nil {
		return nil
	}

	cfg := retry.ConservativeConfig()
	cfg.RetryIf = retry.IsRetryable

	fetched, err := retry.DoWithResult(ctx, func() (float64, error) {
		return l.balance.GetBalance(ctx)
	}, cfg)
	if err != nil {
		BalanceSyncErrors.Inc()
		l.log.Warn("Balance sync failed, keeping last equity", utils.Err(err))
		return fmt.Errorf("sync balance: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.realBalance = fetched
	l.recomputeEquityLocked()

	l.log.Debug("Balance synced",
		utils.Float64("real_balance", l.realBalance),
		utils.Float64("equity", l.virtualBalance),
	)

	return nil
}

// recomputeEquityLocked пересчитывает equity из текущего состояния:
// real balance + simulated cash offset + mark-to-market позиций
func (l *Ledger) recomputeEquityLocked() {
	totalPositionValue := 0.0
	for _, position := range l.positions {
		totalPositionValue += position.EntryAmount * position.PnlRatio()
	}

	l.virtualBalance = l.realBalance + l.simulatedCashDelta + totalPositionValue
	VirtualBalance.Set(l.virtualBalance)
}

// VirtualBalance возвращает последний рассчитанный equity
func (l *Ledger) VirtualBalance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.virtualBalance
}

// RealBalance возвращает последний синхронизированный внешний баланс
func (l *Ledger) RealBalance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realBalance
}

// SimulatedCashDelta возвращает накопленный simulated cash offset
func (l *Ledger) SimulatedCashDelta() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.simulatedCashDelta
}
