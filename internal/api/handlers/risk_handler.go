package handlers

import (
	"net/http"

	"solrisk/internal/service"
)

// RiskHandler обрабатывает HTTP запросы для оценки риска.
//
// Endpoints:
// - GET /api/v1/risk - полный снапшот риска: статистика, позиции,
//   уровень риска и рекомендации
type RiskHandler struct {
	ledger service.RiskLedgerInterface
}

// NewRiskHandler создает новый RiskHandler с внедрением зависимости
func NewRiskHandler(ledger service.RiskLedgerInterface) *RiskHandler {
	return &RiskHandler{ledger: ledger}
}

// GetRisk возвращает полные метрики риска.
//
// GET /api/v1/risk
//
// Уровень риска вычисляется аддитивно по дневному убытку,
// загрузке позиций и волатильности рынка. Недоступность
// источника волатильности не роняет запрос: её вклад
// заменяется консервативной надбавкой.
//
// Response 200 OK:
//
//	{
//	  "daily_stats": {...},
//	  "position_summary": {...},
//	  "risk_level": "MEDIUM",
//	  "recommendations": ["High market volatility - reduce position sizes"]
//	}
func (h *RiskHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	metrics := h.ledger.GetRiskMetrics(r.Context())
	if metrics.Recommendations == nil {
		metrics.Recommendations = []string{}
	}

	respondWithJSON(w, http.StatusOK, metrics)
}
