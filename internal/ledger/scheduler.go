package ledger

import (
	"context"
	"sync"
	"time"

	"solrisk/pkg/utils"
)

// ResetScheduler сбрасывает дневную статистику ledger на границе суток.
//
// Таймер взводится на ближайшую локальную полночь и перевзводится после
// каждого срабатывания, а не тикает фиксированным интервалом: сброс
// происходит ровно один раз на календарные сутки независимо от времени
// старта процесса.
type ResetScheduler struct {
	ledger *Ledger
	clock  Clock
	log    *utils.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewResetScheduler создаёт планировщик сброса для ledger
func NewResetScheduler(ledger *Ledger, log *utils.Logger) *ResetScheduler {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	return &ResetScheduler{
		ledger: ledger,
		clock:  ledger.clock,
		log:    log.WithComponent("reset_scheduler"),
	}
}

// Start запускает фоновый цикл сброса. Повторный Start - no-op.
func (s *ResetScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)
}

// Stop останавливает цикл и дожидается завершения горутины
func (s *ResetScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *ResetScheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		wait := utils.UntilNextMidnight(s.clock.Now())
		s.log.Debug("Next daily reset scheduled",
			utils.String("in", wait.String()),
		)

		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			s.ledger.ResetDailyStats()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
