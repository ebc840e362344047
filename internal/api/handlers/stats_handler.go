package handlers

import (
	"net/http"

	"solrisk/internal/service"
)

// StatsHandler обрабатывает HTTP запросы для дневной статистики.
//
// Endpoints:
// - GET /api/v1/stats - получить счетчики торгового дня
// - POST /api/v1/stats/reset - ручной сброс счетчиков
//
// Статистика включает:
// - Количество сделок и разбивку на прибыльные/убыточные
// - Win rate и средние прибыль/убыток
// - Net PNL и virtual balance (equity)
// - Uptime торгового дня
type StatsHandler struct {
	ledger service.RiskLedgerInterface
}

// NewStatsHandler создает новый StatsHandler с внедрением зависимости
func NewStatsHandler(ledger service.RiskLedgerInterface) *StatsHandler {
	return &StatsHandler{ledger: ledger}
}

// GetStats возвращает снапшот дневной статистики.
//
// GET /api/v1/stats
//
// Response 200 OK:
//
//	{
//	  "total_trades": 3,
//	  "profitable_trades": 2,
//	  "losing_trades": 1,
//	  "total_profit": 0.3,
//	  "total_loss": 0.05,
//	  "net_pnl": 0.25,
//	  "win_rate": 66.67,
//	  "average_profit": 0.15,
//	  "average_loss": 0.05,
//	  "uptime": 7200000000000,
//	  "virtual_balance": 2.25
//	}
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	respondWithJSON(w, http.StatusOK, h.ledger.GetDailyStats())
}

// ResetStats сбрасывает счетчики торгового дня.
//
// POST /api/v1/stats/reset
//
// Административный путь: обычно сброс происходит автоматически в
// полночь. Открытые позиции и история сделок не затрагиваются.
//
// Response 200 OK:
//
//	{"message": "daily stats reset"}
func (h *StatsHandler) ResetStats(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	h.ledger.ResetDailyStats()

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "daily stats reset",
	})
}
