// Package api собирает HTTP поверхность: маршруты, handlers и middleware.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solrisk/internal/api/handlers"
	"solrisk/internal/api/middleware"
	"solrisk/internal/service"
	"solrisk/internal/websocket"
	"solrisk/pkg/utils"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	Ledger              service.RiskLedgerInterface
	HistoryService      service.HistoryServiceInterface
	NotificationService service.NotificationServiceInterface
	Hub                 *websocket.Hub
	Log                 *utils.Logger

	// bcrypt-хеш API токена; пусто = аутентификация выключена
	APITokenHash string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /positions
//	│   ├── GET / - открытые позиции
//	│   └── GET /summary - агрегат по позициям
//	├── /stats
//	│   ├── GET / - дневная статистика
//	│   └── POST /reset - ручной сброс счетчиков
//	├── GET /risk - уровень риска и рекомендации
//	├── /trades
//	│   ├── GET / - персистентная история сделок
//	│   ├── POST / - записать сделку (через риск-контроль)
//	│   └── POST /check - проверка допуска без записи
//	├── POST /emergency/close-all - пометить все позиции
//	└── /notifications
//	    ├── GET / - журнал уведомлений
//	    └── DELETE / - очистка журнала
//
// /ws/stream - WebSocket для real-time обновлений
// /health    - liveness probe
// /metrics   - Prometheus метрики
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. TokenAuth (только для /api/v1)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	if deps == nil {
		deps = &Dependencies{}
	}

	// API v1 routes
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.TokenAuth(deps.APITokenHash))

	if deps.Ledger != nil {
		positionHandler := handlers.NewPositionHandler(deps.Ledger)
		apiRouter.HandleFunc("/positions", positionHandler.GetPositions).Methods("GET")
		apiRouter.HandleFunc("/positions/summary", positionHandler.GetPositionSummary).Methods("GET")

		statsHandler := handlers.NewStatsHandler(deps.Ledger)
		apiRouter.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
		apiRouter.HandleFunc("/stats/reset", statsHandler.ResetStats).Methods("POST")

		riskHandler := handlers.NewRiskHandler(deps.Ledger)
		apiRouter.HandleFunc("/risk", riskHandler.GetRisk).Methods("GET")

		tradeHandler := handlers.NewTradeHandler(deps.Ledger, deps.HistoryService, deps.Log)
		apiRouter.HandleFunc("/trades", tradeHandler.GetTrades).Methods("GET")
		apiRouter.HandleFunc("/trades", tradeHandler.RecordTrade).Methods("POST")
		apiRouter.HandleFunc("/trades/check", tradeHandler.CheckTrade).Methods("POST")

		emergencyHandler := handlers.NewEmergencyHandler(deps.Ledger)
		apiRouter.HandleFunc("/emergency/close-all", emergencyHandler.CloseAll).Methods("POST")
	}

	if deps.NotificationService != nil {
		notificationHandler := handlers.NewNotificationHandler(deps.NotificationService)
		apiRouter.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
		apiRouter.HandleFunc("/notifications", notificationHandler.ClearNotifications).Methods("DELETE")
	}

	// WebSocket route
	if deps.Hub != nil {
		hub := deps.Hub
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(hub, w, r)
		})
	}

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
