package processing

import (
	"sort"

	"vital_monitor/internal/models"
)

// temperatureWindowSize размер окна статистической фильтрации
const temperatureWindowSize = 70

// temperatureTrimCount сколько крайних значений отбрасывается с каждого конца
const temperatureTrimCount = 10

// TemperatureFilter калибрует сырые коды температуры и сглаживает их
// усечённым средним по окну из 70 выборок. Пока окно не заполнено,
// каждый вызов возвращает откалиброванное значение как есть.
type TemperatureFilter struct {
	temperatures []float64
	cfg          models.TemperatureConfig
	events       *EventBus
}

// NewTemperatureFilter создаёт фильтр с заданной калибровкой.
// events может быть nil — тогда аномалии не публикуются.
func NewTemperatureFilter(cfg models.TemperatureConfig, events *EventBus) *TemperatureFilter {
	return &TemperatureFilter{
		temperatures: make([]float64, 0, temperatureWindowSize),
		cfg:          cfg,
		events:       events,
	}
}

// Process обрабатывает один сырой код температуры и возвращает
// откалиброванное значение в °C
func (f *TemperatureFilter) Process(rawCode int) float64 {
	// Сырой код — температура в десятых долях градуса
	rawValue := float64(rawCode) / 10.0
	value := rawValue*f.cfg.ScaleFactor + f.cfg.Offset

	// Аномально низкое значение — сбой датчика, подставляем комнатную температуру.
	// Это событие наблюдаемости, не ошибка.
	if value < f.cfg.RoomTemperature-10.0 {
		f.events.Publish(EventTemperatureAnomaly, map[string]float64{
			"measured": value,
			"fallback": f.cfg.RoomTemperature,
		})
		value = f.cfg.RoomTemperature
	}

	f.temperatures = append(f.temperatures, value)

	// Скользящее окно: после заполнения вытесняем самое старое значение
	if len(f.temperatures) > temperatureWindowSize {
		f.temperatures = f.temperatures[1:]
	}

	// Ровно при 70 выборках считаем усечённое среднее и очищаем окно
	if len(f.temperatures) == temperatureWindowSize {
		sorted := make([]float64, len(f.temperatures))
		copy(sorted, f.temperatures)
		sort.Float64s(sorted)

		trimmed := sorted[temperatureTrimCount : len(sorted)-temperatureTrimCount]
		sum := 0.0
		for _, t := range trimmed {
			sum += t
		}
		average := sum / float64(len(trimmed))

		f.temperatures = f.temperatures[:0]

		if average > f.cfg.MaxTemp {
			return f.cfg.MaxTemp
		}
		return average
	}

	return value
}

// WindowLen возвращает текущее заполнение окна (для тестов и диагностики)
func (f *TemperatureFilter) WindowLen() int {
	return len(f.temperatures)
}
