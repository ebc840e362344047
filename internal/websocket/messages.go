package websocket

import (
	"time"

	"solrisk/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypePositionUpdate - обновление открытой позиции
	// Отправляется при каждом изменении цены позиции
	MessageTypePositionUpdate MessageType = "positionUpdate"

	// MessageTypeNotification - новое уведомление
	// Отправляется при событиях ledger: OPEN, CLOSE, TARGET, STOP,
	// EMERGENCY, DAILY_SUMMARY, LOSS_LIMIT, ERROR
	MessageTypeNotification MessageType = "notification"

	// MessageTypeStatsUpdate - обновление дневной статистики
	// Отправляется после закрытия каждой сделки и при сбросе дня
	MessageTypeStatsUpdate MessageType = "statsUpdate"

	// MessageTypeEquityUpdate - обновление баланса и virtual equity
	// Отправляется после каждой синхронизации с кошельком
	MessageTypeEquityUpdate MessageType = "equityUpdate"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// PositionUpdateMessage - сообщение об изменении открытой позиции
//
// Содержит актуальное состояние одной позиции:
// - Текущую цену и нереализованный PNL
// - Отношение цены к цене входа
// - Время удержания
//
// Отправляется при каждом updatePositionPrice
type PositionUpdateMessage struct {
	BaseMessage
	Mint string              `json:"mint"`
	Data *PositionUpdateData `json:"data"`
}

// PositionUpdateData - данные обновления позиции
type PositionUpdateData struct {
	// Ключ позиции в ledger: "<mint>-<unixms>"
	TradeID string `json:"trade_id"`

	// Параметры входа
	EntryPrice  float64 `json:"entry_price"`
	EntryAmount float64 `json:"entry_amount"`

	// Текущая цена и mark-to-market PNL
	CurrentPrice float64 `json:"current_price"`
	Pnl          float64 `json:"pnl"`
	PnlRatio     float64 `json:"pnl_ratio"`

	// Время удержания в секундах
	HoldTimeSec float64 `json:"hold_time_sec"`

	// Позиция помечена на экстренное закрытие
	EmergencyClose bool `json:"emergency_close,omitempty"`
}

// NotificationMessage - сообщение о новом уведомлении
type NotificationMessage struct {
	BaseMessage
	Data *NotificationData `json:"data"`
}

// NotificationData - данные уведомления
type NotificationData struct {
	// ID уведомления в БД (0 если запись не персистилась)
	ID int `json:"id"`

	// Тип уведомления (OPEN, CLOSE, TARGET, STOP, EMERGENCY, ...)
	Type string `json:"type"`

	// Уровень важности (info, warn, error)
	Severity string `json:"severity"`

	// Mint связанного токена (если применимо)
	Mint string `json:"mint,omitempty"`

	// Текст сообщения
	Message string `json:"message"`

	// Дополнительные метаданные (цены, PNL и т.д.)
	Meta map[string]interface{} `json:"meta,omitempty"`

	// Время создания уведомления
	Timestamp time.Time `json:"timestamp"`
}

// StatsUpdateMessage - сообщение с дневной статистикой
type StatsUpdateMessage struct {
	BaseMessage
	Data *StatsUpdateData `json:"data"`
}

// StatsUpdateData - данные дневной статистики
type StatsUpdateData struct {
	TotalTrades      int     `json:"total_trades"`
	ProfitableTrades int     `json:"profitable_trades"`
	LosingTrades     int     `json:"losing_trades"`
	WinRate          float64 `json:"win_rate"`

	TotalProfit   float64 `json:"total_profit"`
	TotalLoss     float64 `json:"total_loss"`
	NetPnl        float64 `json:"net_pnl"`
	AverageProfit float64 `json:"average_profit"`
	AverageLoss   float64 `json:"average_loss"`

	VirtualBalance float64 `json:"virtual_balance"`
	UptimeSec      float64 `json:"uptime_sec"`
}

// EquityUpdateMessage - сообщение об обновлении баланса и equity
//
// Отправляется после каждой успешной синхронизации с кошельком.
// Equity = balance + sim_offset + mark-to-market открытых позиций.
type EquityUpdateMessage struct {
	BaseMessage
	Balance   float64 `json:"balance"`
	SimOffset float64 `json:"sim_offset"`
	Equity    float64 `json:"equity"`
}

// ============ Фабричные функции для создания сообщений ============

// NewPositionUpdateMessage создает сообщение обновления позиции
func NewPositionUpdateMessage(snap *models.PositionSnapshot) *PositionUpdateMessage {
	return &PositionUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePositionUpdate,
			Timestamp: time.Now(),
		},
		Mint: snap.Mint,
		Data: &PositionUpdateData{
			TradeID:        snap.TradeID,
			EntryPrice:     snap.EntryPrice,
			EntryAmount:    snap.EntryAmount,
			CurrentPrice:   snap.CurrentPrice,
			Pnl:            snap.Pnl,
			PnlRatio:       snap.PnlRatio(),
			HoldTimeSec:    snap.HoldTime.Seconds(),
			EmergencyClose: snap.EmergencyClose,
		},
	}
}

// NewNotificationMessage создает сообщение уведомления
func NewNotificationMessage(n *models.Notification) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeNotification,
			Timestamp: time.Now(),
		},
		Data: &NotificationData{
			ID:        n.ID,
			Type:      n.Type,
			Severity:  n.Severity,
			Mint:      n.Mint,
			Message:   n.Message,
			Meta:      n.Meta,
			Timestamp: n.Timestamp,
		},
	}
}

// NewStatsUpdateMessage создает сообщение дневной статистики
func NewStatsUpdateMessage(stats *models.DailyStatsSnapshot) *StatsUpdateMessage {
	return &StatsUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStatsUpdate,
			Timestamp: time.Now(),
		},
		Data: &StatsUpdateData{
			TotalTrades:      stats.TotalTrades,
			ProfitableTrades: stats.ProfitableTrades,
			LosingTrades:     stats.LosingTrades,
			WinRate:          stats.WinRate,

			TotalProfit:   stats.TotalProfit,
			TotalLoss:     stats.TotalLoss,
			NetPnl:        stats.NetPnl,
			AverageProfit: stats.AverageProfit,
			AverageLoss:   stats.AverageLoss,

			VirtualBalance: stats.VirtualBalance,
			UptimeSec:      stats.Uptime.Seconds(),
		},
	}
}

// NewEquityUpdateMessage создает сообщение обновления equity
func NewEquityUpdateMessage(balance, simOffset, equity float64) *EquityUpdateMessage {
	return &EquityUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeEquityUpdate,
			Timestamp: time.Now(),
		},
		Balance:   balance,
		SimOffset: simOffset,
		Equity:    equity,
	}
}
