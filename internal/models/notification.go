package models

import "time"

// Notification представляет уведомление о событии
type Notification struct {
	ID        int                    `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	Type      string                 `json:"type" db:"type"`         // OPEN, CLOSE, TARGET, STOP, EMERGENCY, DAILY_SUMMARY, LOSS_LIMIT, ERROR
	Severity  string                 `json:"severity" db:"severity"` // info, warn, error
	Mint      string                 `json:"mint,omitempty" db:"mint"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"meta"` // дополнительные данные (JSON в БД)
}

// Типы уведомлений
const (
	NotificationTypeOpen         = "OPEN"          // открытие позиции
	NotificationTypeClose        = "CLOSE"         // закрытие позиции (без TP/SL)
	NotificationTypeTarget       = "TARGET"        // закрытие по достижению profit target
	NotificationTypeStop         = "STOP"          // закрытие по stop loss
	NotificationTypeEmergency    = "EMERGENCY"     // экстренная пометка всех позиций
	NotificationTypeDailySummary = "DAILY_SUMMARY" // итоги торгового дня при сбросе
	NotificationTypeLossLimit    = "LOSS_LIMIT"    // приближение к дневному лимиту убытка
	NotificationTypeError        = "ERROR"         // ошибка внешней зависимости
)

// Уровни важности
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)
