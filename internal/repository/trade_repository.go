// Package repository - Data Access Layer поверх Postgres.
// Журнал сделок и журнал уведомлений append-only: ledger живёт в памяти,
// БД служит для истории и аудита.
package repository

import (
	"database/sql"
	"errors"
	"time"

	"solrisk/internal/models"
)

// Ошибки репозитория сделок
var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository - работа с таблицей trades
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository создает новый экземпляр репозитория
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create добавляет запись о сделке в журнал
func (r *TradeRepository) Create(trade *models.Trade) error {
	query := `
		INSERT INTO trades (id, type, mint, amount, price, tx_ref, timestamp, status, pnl, pnl_ratio, entry_price, entry_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(
		query,
		trade.ID,
		trade.Type,
		trade.Mint,
		trade.Amount,
		trade.Price,
		trade.TxRef,
		trade.Timestamp,
		trade.Status,
		trade.Pnl,
		trade.PnlRatio,
		trade.EntryPrice,
		trade.EntryValue,
	)

	return err
}

// GetByID возвращает сделку по строковому ID журнала
func (r *TradeRepository) GetByID(id string) (*models.Trade, error) {
	query := `
		SELECT id, type, mint, amount, price, tx_ref, timestamp, status, pnl, pnl_ratio, entry_price, entry_value
		FROM trades
		WHERE id = $1`

	trade := &models.Trade{}
	err := r.db.QueryRow(query, id).Scan(
		&trade.ID,
		&trade.Type,
		&trade.Mint,
		&trade.Amount,
		&trade.Price,
		&trade.TxRef,
		&trade.Timestamp,
		&trade.Status,
		&trade.Pnl,
		&trade.PnlRatio,
		&trade.EntryPrice,
		&trade.EntryValue,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}

	return trade, nil
}

// GetRecent возвращает последние limit сделок, от новых к старым
func (r *TradeRepository) GetRecent(limit int) ([]*models.Trade, error) {
	query := `
		SELECT id, type, mint, amount, price, tx_ref, timestamp, status, pnl, pnl_ratio, entry_price, entry_value
		FROM trades
		ORDER BY timestamp DESC
		LIMIT $1`

	return r.queryTrades(query, limit)
}

// GetByMint возвращает сделки по токену
func (r *TradeRepository) GetByMint(mint string, limit int) ([]*models.Trade, error) {
	query := `
		SELECT id, type, mint, amount, price, tx_ref, timestamp, status, pnl, pnl_ratio, entry_price, entry_value
		FROM trades
		WHERE mint = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	return r.queryTrades(query, mint, limit)
}

// GetInTimeRange возвращает сделки за период (для дневных отчетов)
func (r *TradeRepository) GetInTimeRange(from, to time.Time) ([]*models.Trade, error) {
	query := `
		SELECT id, type, mint, amount, price, tx_ref, timestamp, status, pnl, pnl_ratio, entry_price, entry_value
		FROM trades
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp ASC`

	return r.queryTrades(query, from, to)
}

// UpdateStatus обновляет статус сделки после подтверждения транзакции
func (r *TradeRepository) UpdateStatus(id, status string) error {
	query := `UPDATE trades SET status = $1 WHERE id = $2`

	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}

	return nil
}

// Count возвращает общее количество сделок в журнале
func (r *TradeRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&count)
	return count, err
}

// DeleteOlderThan удаляет сделки старше threshold, возвращает количество
// удаленных записей
func (r *TradeRepository) DeleteOlderThan(threshold time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM trades WHERE timestamp < $1`, threshold)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *TradeRepository) queryTrades(query string, args ...interface{}) ([]*models.Trade, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		trade := &models.Trade{}
		err := rows.Scan(
			&trade.ID,
			&trade.Type,
			&trade.Mint,
			&trade.Amount,
			&trade.Price,
			&trade.TxRef,
			&trade.Timestamp,
			&trade.Status,
			&trade.Pnl,
			&trade.PnlRatio,
			&trade.EntryPrice,
			&trade.EntryValue,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}
