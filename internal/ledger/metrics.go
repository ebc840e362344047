package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики учёта позиций и риск-контроля
// ============================================================
//
// Использование:
// - Grafana дашборды (equity, дневной PnL, открытые позиции)
// - Alertmanager (блокировки сделок, падения сверки баланса)

// ============ Счётчики сделок ============

// TradesRecorded - зафиксированные сделки по типам (buy/sell)
var TradesRecorded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "trades_recorded_total",
		Help:      "Total number of trades recorded in the ledger",
	},
	[]string{"type"},
)

// TradesBlocked - срабатывания правил допуска
var TradesBlocked = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "trades_blocked_total",
		Help:      "Admission rule violations by rule",
	},
	[]string{"rule"},
)

// ============ Состояние ledger ============

// OpenPositions - текущее число открытых позиций
var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "open_positions",
		Help:      "Current number of open positions",
	},
)

// NetDailyPnl - дневной net PnL в SOL
var NetDailyPnl = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "net_daily_pnl_sol",
		Help:      "Net realized PnL for the current trading day in SOL",
	},
)

// VirtualBalance - последний рассчитанный equity в SOL
var VirtualBalance = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "virtual_balance_sol",
		Help:      "Equity: real balance + simulated cash offset + position value",
	},
)

// RiskScore - последний рассчитанный risk score (0-95)
var RiskScore = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "risk_score",
		Help:      "Last computed additive risk score",
	},
)

// ============ События ============

// StatsResets - сбросы дневной статистики
var StatsResets = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "stats_resets_total",
		Help:      "Total number of daily stats resets",
	},
)

// EmergencyClosures - вызовы экстренного закрытия
var EmergencyClosures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "emergency_closures_total",
		Help:      "Total number of emergency close-all invocations",
	},
)

// BalanceSyncErrors - неудачные сверки баланса
var BalanceSyncErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "balance_sync_errors_total",
		Help:      "Total number of failed wallet balance syncs",
	},
)

// NotificationsDropped - события, отброшенные из-за полного канала
var NotificationsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "solrisk",
		Subsystem: "ledger",
		Name:      "notifications_dropped_total",
		Help:      "Notifications dropped due to a full channel",
	},
)
