package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки ledger
var (
	// ErrPositionNotFound возвращается при sell по ключу, который не
	// резолвится ни как trade id, ни как mint открытой позиции.
	// Ledger при этом не изменяется.
	ErrPositionNotFound = errors.New("position not found")

	// ErrUnknownTradeType возвращается при типе сделки кроме buy/sell
	ErrUnknownTradeType = errors.New("unknown trade type")
)

// AdmissionError возвращается из ExecuteTrade когда сделка отклонена
// риск-контролем. Содержит ВСЕ нарушенные правила.
type AdmissionError struct {
	Reasons []string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("trade not allowed: %s", strings.Join(e.Reasons, "; "))
}

// IsAdmissionError проверяет, является ли ошибка отказом риск-контроля
func IsAdmissionError(err error) (*AdmissionError, bool) {
	var ae *AdmissionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
