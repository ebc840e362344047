package repository

import (
	"database/sql"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"solrisk/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NotificationRepository - работа с таблицей notifications
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository создает новый экземпляр репозитория
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление; Meta сериализуется в JSONB
func (r *NotificationRepository) Create(n *models.Notification) error {
	query := `
		INSERT INTO notifications (timestamp, type, severity, mint, message, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var meta []byte
	if n.Meta != nil {
		var err error
		meta, err = json.Marshal(n.Meta)
		if err != nil {
			return err
		}
	}

	return r.db.QueryRow(
		query,
		n.Timestamp,
		n.Type,
		n.Severity,
		n.Mint,
		n.Message,
		meta,
	).Scan(&n.ID)
}

// GetRecent возвращает последние limit уведомлений, от новых к старым
func (r *NotificationRepository) GetRecent(limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, timestamp, type, severity, mint, message, meta
		FROM notifications
		ORDER BY timestamp DESC
		LIMIT $1`

	return r.queryNotifications(query, limit)
}

// GetByTypes возвращает последние уведомления указанных типов
func (r *NotificationRepository) GetByTypes(types []string, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, timestamp, type, severity, mint, message, meta
		FROM notifications
		WHERE type = ANY($1)
		ORDER BY timestamp DESC
		LIMIT $2`

	return r.queryNotifications(query, pq.Array(types), limit)
}

// DeleteAll очищает журнал уведомлений, возвращает количество удаленных
func (r *NotificationRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM notifications`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteOlderThan удаляет уведомления старше threshold (автоочистка)
func (r *NotificationRepository) DeleteOlderThan(threshold time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM notifications WHERE timestamp < $1`, threshold)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *NotificationRepository) queryNotifications(query string, args ...interface{}) ([]*models.Notification, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var meta []byte
		err := rows.Scan(
			&n.ID,
			&n.Timestamp,
			&n.Type,
			&n.Severity,
			&n.Mint,
			&n.Message,
			&meta,
		)
		if err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &n.Meta); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
