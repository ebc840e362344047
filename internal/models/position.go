package models

import "time"

// Position представляет одну открытую экспозицию по одному инструменту (mint)
//
// Инварианты:
// - В любой момент времени не более одной открытой позиции на mint
// - Создается только через recordTrade(buy)
// - Мутируется только обновлением цены или пометкой emergency
// - Удаляется только через recordTrade(sell)
type Position struct {
	// Канонический идентификатор инструмента (mint токена)
	Mint string `json:"mint"`

	// Ключ позиции в ledger: "<mint>-<unixms>"
	TradeID string `json:"trade_id"`

	// Параметры входа
	EntryPrice  float64   `json:"entry_price"`
	EntryAmount float64   `json:"entry_amount"` // вложенный капитал в SOL
	EntryTime   time.Time `json:"entry_time"`

	// Текущая цена (равна EntryPrice до первого обновления)
	CurrentPrice float64 `json:"current_price"`

	// Нереализованный PNL = EntryAmount * (CurrentPrice/EntryPrice - 1)
	Pnl float64 `json:"pnl"`

	// Хэш транзакции входа ("sim_..." для симулированных сделок)
	TxRef string `json:"tx_ref"`

	// Флаг экстренного закрытия (позицию закрывает execution engine)
	EmergencyClose  bool   `json:"emergency_close,omitempty"`
	EmergencyReason string `json:"emergency_reason,omitempty"`
}

// PnlRatio возвращает отношение текущей цены к цене входа
func (p *Position) PnlRatio() float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	return p.CurrentPrice / p.EntryPrice
}

// PositionSnapshot - позиция с вычисленными полями для API/мониторинга
type PositionSnapshot struct {
	Position
	HoldTime time.Duration `json:"hold_time"` // время удержания на момент снапшота
}

// PositionSummary - агрегат по всем открытым позициям
type PositionSummary struct {
	ActivePositions int     `json:"active_positions"`
	TotalPnl        float64 `json:"total_pnl"`
	TotalExposure   float64 `json:"total_exposure"`
	AveragePnl      float64 `json:"average_pnl"`
}

// CloseOutcome - результат пометки одной позиции при emergencyCloseAll
type CloseOutcome struct {
	Mint   string `json:"mint"`
	Status string `json:"status"` // marked_for_closure
	Reason string `json:"reason"`
}

// Статусы отметки экстренного закрытия
const (
	CloseStatusMarked = "marked_for_closure"
)
