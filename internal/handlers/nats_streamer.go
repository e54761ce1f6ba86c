// internal/handlers/nats_streamer.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vital_monitor/internal/models"

	"github.com/nats-io/nats.go"
)

// NATSStreamer публикует обработанные показатели в NATS для живых
// подписчиков (панели наблюдения, шлюзы). Потеря отдельных сообщений
// допустима — это поток отображения, источником истины остаётся БД.
type NATSStreamer struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewNATSStreamer подключается к NATS и создает стример
func NewNATSStreamer(url, subjectPrefix string) (*NATSStreamer, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("vital-monitor-streamer"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к NATS: %w", err)
	}

	log.Printf("🌊 NATS стример подключен к %s", url)
	return &NATSStreamer{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}, nil
}

// PublishProcessed публикует обработанную выборку в сабжект устройства
func (s *NATSStreamer) PublishProcessed(deviceID string, p models.ProcessedVitalSigns) {
	if deviceID == "" {
		deviceID = "unknown"
	}

	payload, err := json.Marshal(p)
	if err != nil {
		log.Printf("❌ Ошибка сериализации обработанных данных: %v", err)
		return
	}

	subject := fmt.Sprintf("%s.%s", s.subjectPrefix, deviceID)
	if err := s.conn.Publish(subject, payload); err != nil {
		log.Printf("⚠️ Не удалось опубликовать в %s: %v", subject, err)
	}
}

// PublishEvent публикует событие конвейера в сабжект событий
func (s *NATSStreamer) PublishEvent(event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	subject := s.subjectPrefix + ".events"
	if err := s.conn.Publish(subject, payload); err != nil {
		log.Printf("⚠️ Не удалось опубликовать событие: %v", err)
	}
}

// Stop закрывает подключение к NATS
func (s *NATSStreamer) Stop() {
	if s.conn != nil {
		s.conn.Drain()
		s.conn.Close()
	}
}
