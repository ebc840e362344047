package service

import (
	"errors"
	"time"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// defaultHistoryLimit - лимит выборки истории по умолчанию
const defaultHistoryLimit = 100

// HistoryService предоставляет доступ к персистентной истории сделок.
//
// In-memory журнал ledger ограничен и теряется при рестарте;
// каждая записанная сделка дублируется сюда для долговременного хранения.
type HistoryService struct {
	repo TradeRepositoryInterface
	log  *utils.Logger
}

// NewHistoryService создает новый экземпляр HistoryService
func NewHistoryService(repo TradeRepositoryInterface, log *utils.Logger) *HistoryService {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	return &HistoryService{
		repo: repo,
		log:  log.WithComponent("history_service"),
	}
}

// RecordTrade персистит сделку в журнал БД.
// Ошибка логируется и возвращается, но не должна откатывать ledger:
// in-memory учёт - источник истины для риск-контроля.
func (s *HistoryService) RecordTrade(trade *models.Trade) error {
	if err := s.repo.Create(trade); err != nil {
		s.log.Error("Failed to persist trade",
			utils.TradeID(trade.ID),
			utils.Err(err),
		)
		return err
	}
	return nil
}

// ConfirmTrade помечает сделку подтвержденной после settlement
func (s *HistoryService) ConfirmTrade(id string) error {
	return s.repo.UpdateStatus(id, models.TradeStatusConfirmed)
}

// GetTrades возвращает последние сделки; limit <= 0 заменяется дефолтом
func (s *HistoryService) GetTrades(limit int) ([]*models.Trade, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.GetRecent(limit)
}

// GetTradesByMint возвращает сделки по токену
func (s *HistoryService) GetTradesByMint(mint string, limit int) ([]*models.Trade, error) {
	if mint == "" {
		return nil, errors.New("mint cannot be empty")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.GetByMint(mint, limit)
}

// GetDayTrades возвращает сделки за календарные сутки, содержащие day
func (s *HistoryService) GetDayTrades(day time.Time) ([]*models.Trade, error) {
	return s.repo.GetInTimeRange(utils.GetDayStartFrom(day), utils.GetDayEndFrom(day))
}

// PruneOlderThan удаляет сделки старше threshold (ретенция журнала)
func (s *HistoryService) PruneOlderThan(threshold time.Time) (int64, error) {
	deleted, err := s.repo.DeleteOlderThan(threshold)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("Trade journal pruned", utils.Int64("deleted", deleted))
	}
	return deleted, nil
}
