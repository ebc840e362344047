package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"solrisk/internal/models"
	"solrisk/internal/service"
)

// NotificationHandler отвечает за журнал уведомлений.
//
// Endpoints:
// - GET /api/v1/notifications - получение списка уведомлений
// - GET /api/v1/notifications?types=stop,emergency - с фильтрацией по типам
// - GET /api/v1/notifications?limit=50 - с ограничением количества
// - DELETE /api/v1/notifications - очистка журнала
type NotificationHandler struct {
	notificationService service.NotificationServiceInterface
}

// NewNotificationHandler создает новый NotificationHandler с внедрением зависимости
func NewNotificationHandler(notificationService service.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotificationsResponse представляет ответ списка уведомлений
type GetNotificationsResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int                    `json:"total"`
}

// GetNotifications возвращает список уведомлений с фильтрацией.
//
// GET /api/v1/notifications
//
// Query параметры:
// - types (string): фильтр по типам через запятую
// - limit (int): количество записей (по умолчанию 50)
//
// Типы уведомлений:
// - OPEN: открытие позиции
// - CLOSE: обычное закрытие
// - TARGET: закрытие по profit target
// - STOP: закрытие по stop loss
// - EMERGENCY: экстренная пометка позиций
// - DAILY_SUMMARY: итоги торгового дня
// - LOSS_LIMIT: приближение к дневному лимиту убытка
// - ERROR: ошибка внешней зависимости
//
// Примеры запросов:
// - GET /api/v1/notifications - последние 50
// - GET /api/v1/notifications?types=stop,emergency,loss_limit - только критические
// - GET /api/v1/notifications?types=open,close&limit=20
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	if h.notificationService == nil {
		respondWithError(w, http.StatusInternalServerError, "notification service not initialized", "")
		return
	}

	typesParam := r.URL.Query().Get("types")
	limitParam := r.URL.Query().Get("limit")

	var types []string
	if typesParam != "" {
		for _, part := range strings.Split(typesParam, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				types = append(types, strings.ToUpper(trimmed))
			}
		}
	}

	limit := 0 // сервис подставит дефолт
	if limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.notificationService.GetNotifications(types, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to get notifications", err.Error())
		return
	}

	if notifications == nil {
		notifications = []*models.Notification{}
	}

	respondWithJSON(w, http.StatusOK, GetNotificationsResponse{
		Notifications: notifications,
		Total:         len(notifications),
	})
}

// ClearNotificationsResponse представляет ответ очистки журнала
type ClearNotificationsResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// ClearNotifications очищает журнал уведомлений.
//
// DELETE /api/v1/notifications
//
// Удаляет все уведомления из базы данных. Это действие необратимо.
func (h *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	if h.notificationService == nil {
		respondWithError(w, http.StatusInternalServerError, "notification service not initialized", "")
		return
	}

	deleted, err := h.notificationService.ClearNotifications()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to clear notifications", err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, ClearNotificationsResponse{
		Message: "Notifications cleared successfully",
		Deleted: deleted,
	})
}
