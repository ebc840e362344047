package models

import "time"

// Типы сделок
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// Статусы сделок
const (
	TradeStatusPending   = "pending"
	TradeStatusConfirmed = "confirmed"
)

// Trade - неизменяемая запись журнала сделок (append-only)
//
// Создается при каждом recordTrade и никогда не мутируется.
// Для sell дополнительно фиксируются реализованный PNL, pnl ratio
// и цена входа исходной позиции (для аудита).
type Trade struct {
	// ID записи: "<mint>-<unixms>" для buy, "<mint>-sell-<unixms>" для sell
	ID string `json:"id" db:"id"`

	Type      string    `json:"type" db:"type"` // buy | sell
	Mint      string    `json:"mint" db:"mint"`
	Amount    float64   `json:"amount" db:"amount"`
	Price     float64   `json:"price" db:"price"`
	TxRef     string    `json:"tx_ref" db:"tx_ref"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Status    string    `json:"status" db:"status"`

	// Только для sell
	Pnl        float64 `json:"pnl,omitempty" db:"pnl"`
	PnlRatio   float64 `json:"pnl_ratio,omitempty" db:"pnl_ratio"`
	EntryPrice float64 `json:"entry_price,omitempty" db:"entry_price"`
	EntryValue float64 `json:"entry_value,omitempty" db:"entry_value"`
}

// IsSimulated возвращает true если сделка не рассчитана на внешний settlement
// (пустой или "sim_"-префиксованный tx ref)
func (t *Trade) IsSimulated() bool {
	return IsSimulatedRef(t.TxRef)
}

// IsSimulatedRef проверяет, является ли tx ref симулированным
func IsSimulatedRef(txRef string) bool {
	if txRef == "" {
		return true
	}
	return len(txRef) >= 4 && txRef[:4] == "sim_"
}
