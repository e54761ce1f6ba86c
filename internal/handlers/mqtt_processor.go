// internal/handlers/mqtt_processor.go
package handlers

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"vital_monitor/internal/device"
	"vital_monitor/internal/models"
	"vital_monitor/internal/processing"
)

// MQTTIngest принимает сырые показания от устройств по MQTT и передаёт
// их в конвейер обработки. Поддерживаются два формата payload:
// строка протокола датчиков ("A=..,B=..,C=..") на топике .../raw
// и JSON VitalSigns на топике .../json.
type MQTTIngest struct {
	processor *processing.DataProcessor

	mu            sync.RWMutex
	currentDevice string
}

// NewMQTTIngest создает новый обработчик входящих MQTT сообщений
func NewMQTTIngest(processor *processing.DataProcessor) *MQTTIngest {
	return &MQTTIngest{
		processor: processor,
	}
}

// HandleIncomingMQTT главный обработчик MQTT сообщений.
// Формат топика: monitor/vitals/{deviceID}/{format}
func (m *MQTTIngest) HandleIncomingMQTT(topic string, payload []byte) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 {
		log.Printf("⚠️ Неверный формат топика: %s", topic)
		return
	}

	deviceID := parts[2]
	format := parts[3]

	var (
		vitals models.VitalSigns
		ok     bool
	)

	switch format {
	case "raw":
		vitals, ok = device.ParseDataLine(string(payload))
		if !ok {
			log.Printf("⚠️ Не удалось разобрать строку данных от %s: %q", deviceID, payload)
			return
		}
	case "json":
		if err := json.Unmarshal(payload, &vitals); err != nil {
			log.Printf("❌ Ошибка парсинга MQTT payload от %s: %v", deviceID, err)
			return
		}
	default:
		log.Printf("⚠️ Неизвестный формат данных: %s", format)
		return
	}

	m.setCurrentDevice(deviceID)
	m.processor.Submit(vitals)
}

// CurrentDevice возвращает идентификатор последнего приславшего данные устройства
func (m *MQTTIngest) CurrentDevice() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentDevice
}

// SetCurrentDevice явно задаёт текущее устройство (тестовый источник)
func (m *MQTTIngest) SetCurrentDevice(deviceID string) {
	m.setCurrentDevice(deviceID)
}

func (m *MQTTIngest) setCurrentDevice(deviceID string) {
	m.mu.Lock()
	m.currentDevice = deviceID
	m.mu.Unlock()
}
