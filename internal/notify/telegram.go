package notify

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// severityRank для фильтрации по минимальной важности
var severityRank = map[string]int{
	models.SeverityInfo:  0,
	models.SeverityWarn:  1,
	models.SeverityError: 2,
}

// TelegramConfig - настройки Telegram sink
type TelegramConfig struct {
	Token  string
	ChatID int64
	// MinSeverity отсекает шум: по умолчанию в чат идут только warn и выше
	MinSeverity string
}

// telegramAPI - отправляющая часть telebot (для тестов)
type telegramAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramSink шлет уведомления в Telegram чат
type TelegramSink struct {
	api         telegramAPI
	chatID      int64
	minSeverity int
	log         *utils.Logger
}

// NewTelegramSink создает sink поверх telebot.
// Бот используется только на отправку, long polling не запускается.
func NewTelegramSink(cfg TelegramConfig, log *utils.Logger) (*TelegramSink, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return newTelegramSink(bot, cfg, log), nil
}

func newTelegramSink(api telegramAPI, cfg TelegramConfig, log *utils.Logger) *TelegramSink {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	if cfg.MinSeverity == "" {
		cfg.MinSeverity = models.SeverityWarn
	}

	return &TelegramSink{
		api:         api,
		chatID:      cfg.ChatID,
		minSeverity: severityRank[cfg.MinSeverity],
		log:         log.WithComponent("telegram"),
	}
}

// Name идентифицирует sink в логах
func (s *TelegramSink) Name() string {
	return "telegram"
}

// Send доставляет уведомление в чат, если важность проходит фильтр
func (s *TelegramSink) Send(n *models.Notification) error {
	if severityRank[n.Severity] < s.minSeverity {
		return nil
	}

	_, err := s.api.Send(tele.ChatID(s.chatID), formatMessage(n), tele.ModeMarkdown)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// formatMessage собирает текст сообщения для чата
func formatMessage(n *models.Notification) string {
	header := fmt.Sprintf("*%s*", n.Type)
	if n.Mint != "" {
		header += fmt.Sprintf(" `%s`", n.Mint)
	}
	return header + "\n" + n.Message
}
