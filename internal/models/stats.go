package models

import "time"

// DailyStats - счетчики торгового дня
//
// Инварианты:
// - NetPnl == TotalProfit - TotalLoss
// - TotalTrades == ProfitableTrades + LosingTrades
// - Обновляется только закрытыми (sell) сделками
// - Сбрасывается ровно один раз на границе суток; ledger при сбросе не трогается
type DailyStats struct {
	TotalTrades      int       `json:"total_trades"`
	ProfitableTrades int       `json:"profitable_trades"`
	LosingTrades     int       `json:"losing_trades"`
	TotalProfit      float64   `json:"total_profit"`
	TotalLoss        float64   `json:"total_loss"` // абсолютное значение
	NetPnl           float64   `json:"net_pnl"`
	StartTime        time.Time `json:"start_time"`
}

// DailyStatsSnapshot - DailyStats с производными полями для API
type DailyStatsSnapshot struct {
	DailyStats

	// Процент прибыльных сделок [0..100]; 0 при TotalTrades == 0
	WinRate float64 `json:"win_rate"`

	// Средние по прибыльным/убыточным сделкам; 0 при отсутствии таковых
	AverageProfit float64 `json:"average_profit"`
	AverageLoss   float64 `json:"average_loss"`

	// Время с начала торгового дня
	Uptime time.Duration `json:"uptime"`

	// Equity = внешний баланс + simulated cash offset + mark-to-market позиций
	VirtualBalance float64 `json:"virtual_balance"`
}

// RiskMetrics - полный снапшот риска для мониторинга
type RiskMetrics struct {
	DailyStats      DailyStatsSnapshot `json:"daily_stats"`
	PositionSummary PositionSummary    `json:"position_summary"`
	RiskLevel       string             `json:"risk_level"`
	Recommendations []string           `json:"recommendations"`
}

// Уровни риска
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// AdmissionResult - результат проверки допуска сделки
//
// Reasons содержит ВСЕ нарушенные правила, не только первое.
type AdmissionResult struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons"`
}
