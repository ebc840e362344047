// Package notify доставляет уведомления ledger во внешние каналы:
// журнал БД, websocket hub, Telegram.
package notify

import (
	"context"
	"sync"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

// Sink - получатель уведомлений
type Sink interface {
	// Name идентифицирует sink в логах
	Name() string
	// Send доставляет одно уведомление. Ошибка логируется и не
	// останавливает доставку остальным sink'ам.
	Send(n *models.Notification) error
}

// Dispatcher вычитывает канал уведомлений ledger и раздает их sink'ам.
//
// Одна горутина на все sink'и: уведомлений мало (единицы в минуту),
// а порядок доставки должен совпадать с порядком событий.
type Dispatcher struct {
	source <-chan *models.Notification
	sinks  []Sink
	log    *utils.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewDispatcher создает диспетчер для канала source
func NewDispatcher(source <-chan *models.Notification, log *utils.Logger, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	return &Dispatcher{
		source: source,
		sinks:  sinks,
		log:    log.WithComponent("notify"),
	}
}

// Start запускает цикл доставки. Повторный Start - no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})

	go d.run(ctx)
}

// Stop останавливает цикл и дожидается завершения горутины
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	done := d.done
	d.started = false
	d.mu.Unlock()

	cancel()
	<-done
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case n, ok := <-d.source:
			if !ok {
				return
			}
			d.dispatch(n)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) dispatch(n *models.Notification) {
	for _, sink := range d.sinks {
		if err := sink.Send(n); err != nil {
			d.log.Warn("Notification delivery failed",
				utils.String("sink", sink.Name()),
				utils.String("type", n.Type),
				utils.Err(err),
			)
		}
	}
}
