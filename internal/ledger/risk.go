package ledger

import (
	"context"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// Пороги risk score
const (
	riskScoreHigh   = 60
	riskScoreMedium = 30
)

// CalculateRiskLevel вычисляет совокупный уровень риска по аддитивной
// шкале:
//
//	волатильность рынка:     +20 (>5%), +10 (>3%)
//	близость к лимиту убытка: +30 (<= -0.9x), +20 (<= -0.7x), +10 (<= -0.5x)
//	концентрация позиций:     +20 (>= 0.8 x maxPositions)
//	win rate:                 +25 (<30%), +15 (<50%)
//
// HIGH >= 60, MEDIUM >= 30, иначе LOW.
//
// Ошибка провайдера рыночных данных НЕ фатальна: слагаемое
// волатильности пропускается, остальные члены считаются (fail-open).
func (l *Ledger) CalculateRiskLevel(ctx context.Context) string {
	l.mu.Lock()
	stats := l.dailyStatsLocked()
	summary := l.positionSummaryLocked()
	l.mu.Unlock()

	score := 0

	// Волатильность рынка (внешний вызов вне мьютекса)
	if l.market != nil {
		volatility, err := l.market.Volatility(ctx)
		if err != nil {
			l.log.Warn("Failed to fetch volatility for risk score", utils.Err(err))
		} else if volatility > 5 {
			score += 20
		} else if volatility > 3 {
			score += 10
		}
	}

	// Близость к дневному лимиту убытка
	switch {
	case stats.NetPnl <= -l.cfg.MaxDailyLoss*0.9:
		score += 30
	case stats.NetPnl <= -l.cfg.MaxDailyLoss*0.7:
		score += 20
	case stats.NetPnl <= -l.cfg.MaxDailyLoss*0.5:
		score += 10
	}

	// Концентрация позиций
	if float64(summary.ActivePositions) >= float64(l.cfg.MaxPositions)*0.8 {
		score += 20
	}

	// Win rate (0 при отсутствии сделок тоже попадает в нижнюю полосу)
	if stats.WinRate < 30 {
		score += 25
	} else if stats.WinRate < 50 {
		score += 15
	}

	RiskScore.Set(float64(score))

	switch {
	case score >= riskScoreHigh:
		return models.RiskLevelHigh
	case score >= riskScoreMedium:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// RiskRecommendations возвращает советы по текущему состоянию.
// Синхронная функция без побочных эффектов и сетевых вызовов:
// тестируется без доступа к рынку.
func (l *Ledger) RiskRecommendations() []string {
	l.mu.Lock()
	stats := l.dailyStatsLocked()
	summary := l.positionSummaryLocked()
	l.mu.Unlock()

	recommendations := []string{}

	if stats.NetPnl <= -l.cfg.MaxDailyLoss*0.8 {
		recommendations = append(recommendations,
			"Consider reducing position sizes or stopping trading for the day")
	}

	if float64(summary.ActivePositions) >= float64(l.cfg.MaxPositions)*0.8 {
		recommendations = append(recommendations,
			"Approaching maximum position limit - consider closing some positions")
	}

	if stats.WinRate < 40 && stats.TotalTrades > 0 {
		recommendations = append(recommendations,
			"Low win rate - review trading strategy and risk parameters")
	}

	if summary.TotalPnl < 0 {
		recommendations = append(recommendations,
			"Overall portfolio in loss - consider implementing stricter stop losses")
	}

	return recommendations
}

// GetRiskMetrics возвращает полный снапшот риска для мониторинга.
// Перед сбором выполняется сверка баланса; её ошибка не прерывает
// формирование метрик (equity остаётся последним известным).
func (l *Ledger) GetRiskMetrics(ctx context.Context) models.RiskMetrics {
	if err := l.SyncBalance(ctx); err != nil {
		l.log.Warn("Risk metrics with stale balance", utils.Err(err))
	}

	riskLevel := l.CalculateRiskLevel(ctx)

	l.mu.Lock()
	stats := l.dailyStatsLocked()
	summary := l.positionSummaryLocked()
	l.mu.Unlock()

	return models.RiskMetrics{
		DailyStats:      stats,
		PositionSummary: summary,
		RiskLevel:       riskLevel,
		Recommendations: l.RiskRecommendations(),
	}
}
