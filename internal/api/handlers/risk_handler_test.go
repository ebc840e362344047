package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solrisk/internal/models"
)

// ============ RiskHandler Tests ============

func TestRiskHandler_GetRisk(t *testing.T) {
	t.Run("successful retrieval", func(t *testing.T) {
		mockLedger := NewMockRiskLedger()
		handler := NewRiskHandler(mockLedger)

		mockLedger.risk = models.RiskMetrics{
			RiskLevel:       models.RiskLevelMedium,
			Recommendations: []string{"High market volatility - reduce position sizes"},
		}
		mockLedger.risk.PositionSummary.ActivePositions = 2

		req := httptest.NewRequest(http.MethodGet, "/api/v1/risk", nil)
		w := httptest.NewRecorder()

		handler.GetRisk(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response models.RiskMetrics
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.RiskLevel != models.RiskLevelMedium {
			t.Errorf("expected risk level %q, got %q", models.RiskLevelMedium, response.RiskLevel)
		}
		if len(response.Recommendations) != 1 {
			t.Errorf("expected 1 recommendation, got %d", len(response.Recommendations))
		}
		if response.PositionSummary.ActivePositions != 2 {
			t.Errorf("expected 2 active positions, got %d", response.PositionSummary.ActivePositions)
		}
	})

	t.Run("returns empty array for nil recommendations", func(t *testing.T) {
		mockLedger := NewMockRiskLedger()
		handler := NewRiskHandler(mockLedger)

		mockLedger.risk = models.RiskMetrics{RiskLevel: models.RiskLevelLow}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/risk", nil)
		w := httptest.NewRecorder()

		handler.GetRisk(w, req)

		if strings.Contains(w.Body.String(), `"recommendations":null`) {
			t.Error("expected empty array, got null")
		}
	})

	t.Run("returns 500 when ledger is nil", func(t *testing.T) {
		handler := &RiskHandler{ledger: nil}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/risk", nil)
		w := httptest.NewRecorder()

		handler.GetRisk(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}
