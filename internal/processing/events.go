package processing

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType тип события конвейера обработки
type EventType string

const (
	// EventTemperatureAnomaly аномально низкая температура, подставлено базовое значение
	EventTemperatureAnomaly EventType = "temperature_anomaly"
	// EventCompressionFired выполнено LTTB сжатие буфера
	EventCompressionFired EventType = "compression_fired"
	// EventRangeUpdated пересчитан динамический диапазон нормализации
	EventRangeUpdated EventType = "range_updated"
)

// Event структурированное событие наблюдаемости конвейера.
// Заменяет println-диагностику: хост-приложение подписывается
// и само решает, что логировать.
type Event struct {
	Type      EventType          `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Fields    map[string]float64 `json:"fields,omitempty"`
}

// EventBus рассылает события всем подписчикам без блокировки
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// NewEventBus создаёт новую шину событий
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]chan Event),
	}
}

// Subscribe регистрирует подписчика и возвращает его идентификатор и канал
func (b *EventBus) Subscribe(buffer int) (string, <-chan Event) {
	if buffer <= 0 {
		buffer = 64
	}
	id := uuid.NewString()
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Unsubscribe снимает подписку и закрывает канал подписчика
func (b *EventBus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, exists := b.subscribers[id]; exists {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish рассылает событие всем подписчикам.
// Переполненный канал подписчика пропускается, событие не теряет отправителя.
func (b *EventBus) Publish(eventType EventType, fields map[string]float64) {
	if b == nil {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Канал заполнен, пропускаем
		}
	}
}
