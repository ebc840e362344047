package websocket

import (
	"bytes"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"solrisk/internal/models"
	"solrisk/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ============ sync.Pool для JSON буферов ============
// Убирает аллокации при каждом Broadcast

var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

var byteSlicePool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 512)
		return &b
	},
}

// Hub управляет всеми активными WebSocket соединениями
//
// Центральный менеджер для broadcast сообщений всем подключенным
// клиентам мониторинга. Обеспечивает real-time поток событий ledger
// без необходимости polling.
//
// Типы сообщений:
// - positionUpdate: изменение открытой позиции (цена, PNL)
// - notification: событие ledger (OPEN, TARGET, STOP, EMERGENCY, ...)
// - statsUpdate: дневная статистика после закрытия сделки
// - equityUpdate: баланс кошелька и virtual equity
//
// Использование:
// 1. Создать hub: hub := NewHub()
// 2. Запустить в горутине: go hub.Run()
// 3. Отправлять сообщения: hub.BroadcastNotification(n)
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Broadcast канал для отправки сообщений всем клиентам
	broadcast chan []byte

	// Регистрация нового клиента
	register chan *Client

	// Отмена регистрации клиента
	unregister chan *Client

	// Сигнал остановки главного цикла
	stop chan struct{}

	// Lock-free счетчики для мониторинга
	clientCount atomic.Int64
	dropped     atomic.Int64

	// Mutex для потокобезопасного доступа к clients
	mu sync.RWMutex

	log *utils.Logger
}

// NewHub создает новый Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		log:        utils.GetGlobalLogger().WithComponent("websocket_hub"),
	}
}

// Run запускает главный цикл Hub
//
// Должен запускаться в отдельной горутине: go hub.Run()
// Обрабатывает регистрацию, отмену регистрации и broadcast.
// Завершается после вызова Stop().
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientCount.Store(0)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.clientCount.Store(int64(len(h.clients)))
			h.mu.Unlock()
			h.log.Info("Client connected", utils.Int64("total_clients", h.clientCount.Load()))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientCount.Store(int64(len(h.clients)))
			h.mu.Unlock()
			h.log.Info("Client disconnected", utils.Int64("total_clients", h.clientCount.Load()))

		case message := <-h.broadcast:
			// Копируем список клиентов под коротким RLock:
			// отправка в клиентские каналы не должна блокировать register/unregister
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// Клиент не успевает обрабатывать сообщения
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.clientCount.Store(int64(len(h.clients)))
				h.mu.Unlock()
				h.log.Warn("Removed slow clients",
					utils.Int("removed", len(toRemove)),
					utils.Int64("total_clients", h.clientCount.Load()),
				)
			}
		}
	}
}

// Stop останавливает главный цикл и закрывает все клиентские каналы
func (h *Hub) Stop() {
	close(h.stop)
}

// Broadcast сериализует сообщение и отправляет его всем клиентам.
// Не блокирует: при заполненном канале сообщение отбрасывается
// (real-time поток, устаревшие обновления бесполезны).
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		h.log.Error("Failed to marshal broadcast message", utils.Err(err))
		jsonBufferPool.Put(buf)
		return
	}

	// Encode добавляет trailing newline
	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}

	// Копируем данные, буфер возвращается в пул
	msgCopy := make([]byte, len(data))
	copy(msgCopy, data)
	jsonBufferPool.Put(buf)

	h.BroadcastRaw(msgCopy)
}

// BroadcastRaw отправляет уже сериализованное сообщение
func (h *Hub) BroadcastRaw(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
	}
}

// BroadcastPositionUpdate отправляет обновление открытой позиции
func (h *Hub) BroadcastPositionUpdate(snap *models.PositionSnapshot) {
	h.Broadcast(NewPositionUpdateMessage(snap))
}

// BroadcastNotification отправляет новое уведомление.
// Реализует service.WebSocketBroadcaster.
func (h *Hub) BroadcastNotification(n *models.Notification) {
	h.Broadcast(NewNotificationMessage(n))
}

// BroadcastStatsUpdate отправляет снапшот дневной статистики
func (h *Hub) BroadcastStatsUpdate(stats *models.DailyStatsSnapshot) {
	h.Broadcast(NewStatsUpdateMessage(stats))
}

// BroadcastEquityUpdate отправляет обновление баланса и equity
func (h *Hub) BroadcastEquityUpdate(balance, simOffset, equity float64) {
	h.Broadcast(NewEquityUpdateMessage(balance, simOffset, equity))
}

// ClientCount возвращает количество подключенных клиентов (lock-free)
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// DroppedMessages возвращает количество отброшенных сообщений
func (h *Hub) DroppedMessages() int64 {
	return h.dropped.Load()
}
