package handlers

import (
	"encoding/json"
	"net/http"

	"solrisk/internal/models"
	"solrisk/internal/service"
)

// EmergencyHandler обрабатывает запросы экстренного закрытия.
//
// Endpoints:
// - POST /api/v1/emergency/close-all - пометить все позиции на закрытие
//
// ВАЖНО: ledger только помечает позиции; фактическую ликвидацию
// выполняет внешний execution engine, который затем записывает sell.
type EmergencyHandler struct {
	ledger service.RiskLedgerInterface
}

// NewEmergencyHandler создает новый EmergencyHandler с внедрением зависимости
func NewEmergencyHandler(ledger service.RiskLedgerInterface) *EmergencyHandler {
	return &EmergencyHandler{ledger: ledger}
}

// EmergencyCloseRequest представляет запрос экстренного закрытия
type EmergencyCloseRequest struct {
	// Причина пометки; пустая заменяется на "emergency"
	Reason string `json:"reason"`
}

// EmergencyCloseResponse представляет результат пометки
type EmergencyCloseResponse struct {
	Outcomes []models.CloseOutcome `json:"outcomes"`
	Total    int                   `json:"total"`
}

// CloseAll помечает все открытые позиции на экстренное закрытие.
//
// POST /api/v1/emergency/close-all
//
// Request body (опционально):
//
//	{"reason": "drawdown limit"}
//
// Response 200 OK:
//
//	{
//	  "outcomes": [
//	    {"mint": "So111...112", "status": "marked_for_closure", "reason": "drawdown limit"}
//	  ],
//	  "total": 1
//	}
func (h *EmergencyHandler) CloseAll(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	// Тело опционально, пустое или невалидное трактуется как дефолтная причина
	var req EmergencyCloseRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	outcomes := h.ledger.EmergencyCloseAll(req.Reason)
	if outcomes == nil {
		outcomes = []models.CloseOutcome{}
	}

	respondWithJSON(w, http.StatusOK, EmergencyCloseResponse{
		Outcomes: outcomes,
		Total:    len(outcomes),
	})
}
