package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"solrisk/internal/ledger"
	"solrisk/internal/models"
	"solrisk/internal/service"
	"solrisk/pkg/utils"
)

// TradeHandler обрабатывает HTTP запросы для сделок.
//
// Endpoints:
// - GET /api/v1/trades - персистентная история сделок
// - POST /api/v1/trades - записать сделку (buy проходит риск-контроль)
// - POST /api/v1/trades/check - проверка допуска без записи
//
// Запись сделки проходит два слоя:
// 1. ledger.ExecuteTrade - допуск и in-memory учёт (источник истины)
// 2. HistoryService.RecordTrade - персистентный журнал (best-effort)
type TradeHandler struct {
	ledger  service.RiskLedgerInterface
	history service.HistoryServiceInterface
	log     *utils.Logger
}

// NewTradeHandler создает новый TradeHandler с внедрением зависимостей
func NewTradeHandler(ledgerSvc service.RiskLedgerInterface, history service.HistoryServiceInterface, log *utils.Logger) *TradeHandler {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	return &TradeHandler{
		ledger:  ledgerSvc,
		history: history,
		log:     log.WithComponent("trade_handler"),
	}
}

// RecordTradeRequest представляет запрос на запись сделки
type RecordTradeRequest struct {
	// Тип сделки: buy | sell
	Type string `json:"type"`

	// Для buy: mint токена. Для sell: trade id или mint открытой позиции.
	Mint string `json:"mint"`

	// Объём в SOL
	Amount float64 `json:"amount"`

	// Цена исполнения
	Price float64 `json:"price"`

	// Хэш транзакции; пустой или "sim_..." означает симулированную сделку
	TxRef string `json:"tx_ref"`
}

// CheckTradeRequest представляет запрос проверки допуска
type CheckTradeRequest struct {
	Mint   string  `json:"mint"`
	Amount float64 `json:"amount"`
}

// GetTradesResponse представляет ответ истории сделок
type GetTradesResponse struct {
	Trades []*models.Trade `json:"trades"`
	Total  int             `json:"total"`
}

// GetTrades возвращает персистентную историю сделок.
//
// GET /api/v1/trades
//
// Query параметры:
// - limit (int): количество записей (по умолчанию 100)
// - mint (string): фильтр по токену
//
// Response 200 OK:
//
//	{"trades": [...], "total": 42}
func (h *TradeHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondWithError(w, http.StatusInternalServerError, "history service not initialized", "")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var trades []*models.Trade
	var err error
	if mint := r.URL.Query().Get("mint"); mint != "" {
		trades, err = h.history.GetTradesByMint(mint, limit)
	} else {
		trades, err = h.history.GetTrades(limit)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to get trades", err.Error())
		return
	}

	if trades == nil {
		trades = []*models.Trade{}
	}

	respondWithJSON(w, http.StatusOK, GetTradesResponse{
		Trades: trades,
		Total:  len(trades),
	})
}

// RecordTrade записывает сделку через риск-контроль.
//
// POST /api/v1/trades
//
// Request body:
//
//	{"type": "buy", "mint": "So111...112", "amount": 0.5, "price": 0.000012, "tx_ref": ""}
//
// Buy проходит полную проверку допуска; отклонение возвращает 409
// со списком ВСЕХ нарушенных правил. Sell допуск не проверяет.
//
// HTTP коды:
// - 201 Created: сделка записана
// - 400 Bad Request: невалидное тело или параметры
// - 404 Not Found: sell по неизвестному ключу
// - 409 Conflict: buy отклонён риск-контролем
func (h *TradeHandler) RecordTrade(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	var req RecordTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := utils.ValidateTradeType(req.Type); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trade type", err.Error())
		return
	}
	// Для sell ключом может быть и trade id ("<mint>-<unixms>"),
	// строгая base58-валидация применима только к buy
	if req.Type == models.TradeTypeBuy {
		if err := utils.ValidateMint(req.Mint); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid mint", err.Error())
			return
		}
	} else if req.Mint == "" {
		respondWithError(w, http.StatusBadRequest, "invalid mint", "mint is required")
		return
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}
	if err := utils.ValidatePrice(req.Price); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid price", err.Error())
		return
	}

	trade, err := h.ledger.ExecuteTrade(req.Type, req.Mint, req.Amount, req.Price, req.TxRef)
	if err != nil {
		if ae, ok := ledger.IsAdmissionError(err); ok {
			respondWithJSON(w, http.StatusConflict, map[string]interface{}{
				"error":   "trade not allowed",
				"reasons": ae.Reasons,
			})
			return
		}
		if errors.Is(err, ledger.ErrPositionNotFound) {
			respondWithError(w, http.StatusNotFound, "position not found", req.Mint)
			return
		}
		respondWithError(w, http.StatusBadRequest, "failed to record trade", err.Error())
		return
	}

	// Персистим в журнал best-effort: in-memory учёт уже состоялся,
	// отказ БД не должен скрывать принятую сделку
	if h.history != nil {
		if err := h.history.RecordTrade(trade); err != nil {
			h.log.Warn("Trade accepted but journal write failed",
				utils.TradeID(trade.ID),
				utils.Err(err),
			)
		}
	}

	respondWithJSON(w, http.StatusCreated, trade)
}

// CheckTrade проверяет допуск сделки без записи.
//
// POST /api/v1/trades/check
//
// Request body:
//
//	{"mint": "So111...112", "amount": 0.95}
//
// Response 200 OK (всегда, и при отказе):
//
//	{"allowed": false, "reasons": ["Trade amount 0.95 SOL exceeds single trade limit 0.9 SOL"]}
func (h *TradeHandler) CheckTrade(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondWithError(w, http.StatusInternalServerError, "ledger not initialized", "")
		return
	}

	var req CheckTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := utils.ValidateMint(req.Mint); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid mint", err.Error())
		return
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result := h.ledger.CanExecuteTrade(req.Amount, req.Mint)
	if result.Reasons == nil {
		result.Reasons = []string{}
	}

	respondWithJSON(w, http.StatusOK, result)
}
