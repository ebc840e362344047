package handlers

import (
	"net/http"

	"solrisk/internal/models"
	"solrisk/internal/service"
)

// PositionHandler обрабатывает HTTP запросы для открытых позиций.
//
// Endpoints:
// - GET /api/v1/positions - список открытых позиций с hold time и PNL
// - GET /api/v1/positions/summary - агрегат по всем позициям
type PositionHandler struct {
	ledger service.RiskLedgerInterface
}

// NewPositionHandler создает новый PositionHandler с внедрением зависимости
func NewPositionHandler(ledger service.RiskLedgerInterface) *PositionHandler {
	return &PositionHandler{ledger: ledger}
}

// GetPositionsResponse представляет ответ списка позиций
type GetPositionsResponse struct {
	Positions []models.PositionSnapshot `json:"positions"`
	Total     int                       `json:"total"`
}

// GetPositions возвращает все открытые позиции.
//
// GET /api/v1/positions
//
// Response 200 OK:
//
//	{
//	  "positions": [
//	    {
//	      "mint": "So111...112",
//	      "trade_id": "So111...112-1718452800000",
//	      "entry_price": 0.000012,
//	      "entry_amount": 0.5,
//	      "current_price": 0.000015,
//	      "pnl": 0.125,
//	      "hold_time": 300000000000
//	    }
//	  ],
//	  "total": 1
//	}
func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	positions := h.ledger.GetActivePositions()
	if positions == nil {
		positions = []models.PositionSnapshot{}
	}

	respondWithJSON(w, http.StatusOK, GetPositionsResponse{
		Positions: positions,
		Total:     len(positions),
	})
}

// GetPositionSummary возвращает агрегат по открытым позициям.
//
// GET /api/v1/positions/summary
//
// Response 200 OK:
//
//	{
//	  "active_positions": 2,
//	  "total_pnl": -0.05,
//	  "total_exposure": 0.8,
//	  "average_pnl": -0.025
//	}
func (h *PositionHandler) GetPositionSummary(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	respondWithJSON(w, http.StatusOK, h.ledger.GetPositionSummary())
}
