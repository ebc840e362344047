package ledger

import (
	"fmt"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// EmergencyCloseAll помечает все открытые позиции на экстренное закрытие.
//
// Ledger сам ничего не ликвидирует: пометка - сигнал для execution
// engine, который закрывает позиции обычным recordTrade(sell). Позиции
// остаются открытыми до фактического закрытия.
func (l *Ledger) EmergencyCloseAll(reason string) []models.CloseOutcome {
	if reason == "" {
		reason = "emergency"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.log.Warn("Emergency closing all positions",
		utils.String("reason", reason),
		utils.Int("positions", len(l.positions)),
	)

	outcomes := make([]models.CloseOutcome, 0, len(l.positions))
	for _, position := range l.positions {
		position.EmergencyClose = true
		position.EmergencyReason = reason

		outcomes = append(outcomes, models.CloseOutcome{
			Mint:   position.Mint,
			Status: models.CloseStatusMarked,
			Reason: reason,
		})
	}

	EmergencyClosures.Inc()

	l.notify(&models.Notification{
		Timestamp: l.clock.Now(),
		Type:      models.NotificationTypeEmergency,
		Severity:  models.SeverityWarn,
		Message:   fmt.Sprintf("Emergency closure initiated for %d positions", len(outcomes)),
		Meta: map[string]interface{}{
			"reason":    reason,
			"positions": len(outcomes),
		},
	})

	return outcomes
}
