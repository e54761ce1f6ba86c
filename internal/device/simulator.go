package device

import (
	"log"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"vital_monitor/internal/models"
)

// simulatorInterval период генерации тестовых выборок
const simulatorInterval = 100 * time.Millisecond

// Simulator генератор синтетических жизненных показателей для работы
// без физического устройства: синусоподобная ЭКГ с шумом, сатурация
// 95-100, температура 36.0-37.5 °C.
type Simulator struct {
	submit   func(models.VitalSigns)
	started  atomic.Bool
	stopFlag atomic.Bool
	done     chan struct{}
}

// NewSimulator создаёт генератор, отправляющий выборки через submit
func NewSimulator(submit func(models.VitalSigns)) *Simulator {
	log.Println("[Simulator] Инициализация генератора тестовых данных")
	return &Simulator{
		submit: submit,
		done:   make(chan struct{}),
	}
}

// generateSample генерирует одну синтетическую выборку
func generateSample() models.VitalSigns {
	now := float64(time.Now().UnixMilli()) / 1000.0

	// Базовая синусоида + случайный шум
	ecgBase := math.Sin(now*5.0) * 500.0
	ecgNoise := rand.Float64()*100.0 - 50.0
	ecg := int(ecgBase + ecgNoise)

	// Сатурация в нормальном диапазоне 95-100
	spo2 := 95 + rand.Intn(6)

	// Температура 36.0-37.5 °C в десятых долях градуса
	tempFloat := 36.0 + rand.Float64()*1.5
	temp := int(tempFloat * 10.0)

	return models.VitalSigns{ECG: ecg, SpO2: spo2, Temp: temp}
}

// Start запускает генерацию в фоновой горутине
func (s *Simulator) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	log.Println("[Simulator] Запуск генерации тестовых данных")

	go func() {
		defer close(s.done)

		for !s.stopFlag.Load() {
			s.submit(generateSample())
			time.Sleep(simulatorInterval)
		}

		log.Println("[Simulator] Генерация тестовых данных остановлена")
	}()
}

// Stop сигнализирует генератору остановиться и дожидается выхода горутины
func (s *Simulator) Stop() {
	if s.stopFlag.CompareAndSwap(false, true) && s.started.Load() {
		<-s.done
	}
}
