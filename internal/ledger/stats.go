package ledger

import (
	"fmt"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// lossWarnThreshold - доля дневного лимита убытка, после которой
// отправляется предупреждение
const lossWarnThreshold = 0.8

// updateDailyStatsLocked инкрементирует дневные счётчики закрытой сделкой.
// TotalLoss копится как абсолютное значение; NetPnl - со знаком.
func (l *Ledger) updateDailyStatsLocked(pnl float64, profitable bool) {
	l.stats.TotalTrades++

	if profitable {
		l.stats.ProfitableTrades++
		l.stats.TotalProfit += pnl
	} else {
		l.stats.LosingTrades++
		l.stats.TotalLoss += utils.Abs(pnl)
	}

	l.stats.NetPnl += pnl
	NetDailyPnl.Set(l.stats.NetPnl)

	l.log.Debug("Daily stats updated",
		utils.Int("total_trades", l.stats.TotalTrades),
		utils.Float64("net_pnl", l.stats.NetPnl),
	)

	// Предупреждение о приближении к дневному лимиту убытка
	if l.stats.NetPnl <= -l.cfg.MaxDailyLoss*lossWarnThreshold {
		l.notify(&models.Notification{
			Timestamp: l.clock.Now(),
			Type:      models.NotificationTypeLossLimit,
			Severity:  models.SeverityWarn,
			Message:   fmt.Sprintf("Daily loss limit approaching: %.4f SOL", l.stats.NetPnl),
			Meta: map[string]interface{}{
				"net_pnl":        l.stats.NetPnl,
				"max_daily_loss": l.cfg.MaxDailyLoss,
			},
		})
	}
}

// GetDailyStats возвращает снапшот дневной статистики с производными
// полями (win rate, средние, uptime, equity)
func (l *Ledger) GetDailyStats() models.DailyStatsSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dailyStatsLocked()
}

func (l *Ledger) dailyStatsLocked() models.DailyStatsSnapshot {
	snapshot := models.DailyStatsSnapshot{
		DailyStats:     l.stats,
		WinRate:        utils.WinRate(l.stats.ProfitableTrades, l.stats.TotalTrades),
		Uptime:         l.clock.Now().Sub(l.stats.StartTime),
		VirtualBalance: l.virtualBalance,
	}

	if l.stats.ProfitableTrades > 0 {
		snapshot.AverageProfit = l.stats.TotalProfit / float64(l.stats.ProfitableTrades)
	}
	if l.stats.LosingTrades > 0 {
		snapshot.AverageLoss = l.stats.TotalLoss / float64(l.stats.LosingTrades)
	}

	return snapshot
}

// ResetDailyStats обнуляет дневные счётчики и отправляет итоги дня.
// Открытые позиции и журнал сделок при сбросе не трогаются.
func (l *Ledger) ResetDailyStats() {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous := l.stats
	now := l.clock.Now()

	l.stats = models.DailyStats{
		StartTime: now,
	}
	NetDailyPnl.Set(0)
	StatsResets.Inc()

	l.log.Info("Daily stats reset",
		utils.Float64("previous_net_pnl", previous.NetPnl),
		utils.Int("previous_trades", previous.TotalTrades),
	)

	l.notify(&models.Notification{
		Timestamp: now,
		Type:      models.NotificationTypeDailySummary,
		Severity:  models.SeverityInfo,
		Message:   fmt.Sprintf("Daily trading session ended. Net PnL: %.4f SOL", previous.NetPnl),
		Meta: map[string]interface{}{
			"total_trades":      previous.TotalTrades,
			"profitable_trades": previous.ProfitableTrades,
			"losing_trades":     previous.LosingTrades,
			"net_pnl":           previous.NetPnl,
		},
	})
}
