package service

import (
	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// defaultNotificationLimit - лимит выборки по умолчанию
const defaultNotificationLimit = 50

// NotificationService предоставляет бизнес-логику для уведомлений.
//
// Служит sink'ом диспетчера (notify.Sink): каждое событие ledger
// персистится в журнал и рассылается websocket клиентам. Telegram -
// отдельный sink со своим фильтром важности.
type NotificationService struct {
	repo NotificationRepositoryInterface
	hub  WebSocketBroadcaster
	log  *utils.Logger
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(repo NotificationRepositoryInterface, log *utils.Logger) *NotificationService {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	return &NotificationService{
		repo: repo,
		log:  log.WithComponent("notification_service"),
	}
}

// SetWebSocketHub устанавливает hub для broadcast.
// Вызывается после инициализации Hub в main.go.
func (s *NotificationService) SetWebSocketHub(hub WebSocketBroadcaster) {
	s.hub = hub
}

// Name идентифицирует сервис как sink диспетчера
func (s *NotificationService) Name() string {
	return "journal"
}

// Send персистит уведомление и рассылает его websocket клиентам.
// Ошибка БД не мешает broadcast: real-time поверхность важнее журнала.
func (s *NotificationService) Send(n *models.Notification) error {
	err := s.repo.Create(n)

	if s.hub != nil {
		s.hub.BroadcastNotification(n)
	}

	return err
}

// GetNotifications возвращает уведомления с опциональной фильтрацией
// по типам. limit <= 0 заменяется дефолтом.
func (s *NotificationService) GetNotifications(types []string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	if len(types) > 0 {
		return s.repo.GetByTypes(types, limit)
	}
	return s.repo.GetRecent(limit)
}

// ClearNotifications очищает журнал, возвращает количество удаленных
func (s *NotificationService) ClearNotifications() (int64, error) {
	deleted, err := s.repo.DeleteAll()
	if err != nil {
		return 0, err
	}

	s.log.Info("Notification journal cleared", utils.Int64("deleted", deleted))
	return deleted, nil
}
