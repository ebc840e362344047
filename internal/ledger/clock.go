package ledger

import "time"

// Clock абстрагирует источник времени, чтобы тесты могли управлять
// cooldown'ами, hold time и границами суток детерминированно.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock возвращает Clock на основе системного времени
func RealClock() Clock { return realClock{} }
