package processing

import (
	"math"

	"vital_monitor/internal/models"
)

// rangeSmoothingAlpha коэффициент сглаживания при пересчёте диапазона
const rangeSmoothingAlpha = 0.1

// rangeRecentWindow сколько последних точек участвует в пересчёте диапазона
const rangeRecentWindow = 500

// retentionDivisor после сжатия в сыром буфере остаётся 1/4 последних точек
// как контекст для следующего окна
const retentionDivisor = 4

// LttbState состояние нормализации и LTTB сжатия кривой ЭКГ.
// Один писатель за раз; конвейер защищает состояние своим мьютексом.
type LttbState struct {
	rawBuffer        []models.LttbPoint
	compressedBuffer []models.LttbPoint
	cfg              models.LttbConfig

	globalMin     float64
	globalMax     float64
	sampleCounter uint64

	events *EventBus
}

// NewLttbState создаёт состояние компрессора с заданной конфигурацией.
// events может быть nil.
func NewLttbState(cfg models.LttbConfig, events *EventBus) *LttbState {
	return &LttbState{
		rawBuffer:        make([]models.LttbPoint, 0, cfg.BufferSize),
		compressedBuffer: make([]models.LttbPoint, 0, cfg.BufferSize/cfg.CompressionRatio),
		cfg:              cfg,
		globalMin:        math.Inf(1),
		globalMax:        math.Inf(-1),
		events:           events,
	}
}

// Process нормализует одну выборку ЭКГ к диапазону [-1, 1], добавляет её
// в сырой буфер и при достижении порога запускает LTTB сжатие.
// Возвращает нормализованное значение и актуальный сжатый снимок
// (прежний, если сжатие в этом вызове не сработало).
func (s *LttbState) Process(ecgValue int, timestamp uint64) (float64, []models.LttbPoint) {
	value := float64(ecgValue)

	// Обновляем глобальный диапазон для нормализации
	if value > s.globalMax {
		s.globalMax = value
	}
	if value < s.globalMin {
		s.globalMin = value
	}

	// Нормализация к -1..1
	normalized := 0.0
	if s.globalMax != s.globalMin {
		normalized = 2.0*(value-s.globalMin)/(s.globalMax-s.globalMin) - 1.0
	}

	s.rawBuffer = append(s.rawBuffer, models.LttbPoint{
		X: float64(timestamp),
		Y: normalized,
	})
	s.sampleCounter++

	// Периодический пересчёт диапазона под меняющуюся амплитуду сигнала
	if s.cfg.EnableDynamicRange && s.sampleCounter%s.cfg.RangeUpdateInterval == 0 {
		s.recalculateGlobalRange()
	}

	if len(s.rawBuffer) >= s.cfg.BufferSize {
		targetPoints := s.cfg.BufferSize / s.cfg.CompressionRatio
		compressed := LttbDownsample(s.rawBuffer, targetPoints)

		s.compressedBuffer = compressed

		// Оставляем последнюю четверть буфера как контекст следующего окна
		keepSize := s.cfg.BufferSize / retentionDivisor
		dropCount := len(s.rawBuffer) - keepSize
		s.rawBuffer = append(s.rawBuffer[:0], s.rawBuffer[dropCount:]...)

		s.events.Publish(EventCompressionFired, map[string]float64{
			"input_points":  float64(s.cfg.BufferSize),
			"output_points": float64(targetPoints),
			"ratio":         float64(s.cfg.BufferSize) / float64(targetPoints),
		})

		return normalized, s.snapshotCompressed()
	}

	return normalized, s.snapshotCompressed()
}

// CompressedSnapshot возвращает копию текущего сжатого буфера
func (s *LttbState) CompressedSnapshot() []models.LttbPoint {
	return s.snapshotCompressed()
}

// RawBufferLen возвращает текущую длину сырого буфера
func (s *LttbState) RawBufferLen() int {
	return len(s.rawBuffer)
}

// CompressedLen возвращает длину сжатого буфера
func (s *LttbState) CompressedLen() int {
	return len(s.compressedBuffer)
}

func (s *LttbState) snapshotCompressed() []models.LttbPoint {
	snapshot := make([]models.LttbPoint, len(s.compressedBuffer))
	copy(snapshot, s.compressedBuffer)
	return snapshot
}

// recalculateGlobalRange пересчитывает глобальный min/max по последним
// точкам буфера. Точки хранятся нормализованными, поэтому сначала
// восстанавливаются в исходный масштаб через текущий диапазон,
// затем новый диапазон подмешивается со сглаживанием.
func (s *LttbState) recalculateGlobalRange() {
	if len(s.rawBuffer) == 0 {
		return
	}

	newMin := math.Inf(1)
	newMax := math.Inf(-1)

	recentSize := len(s.rawBuffer)
	if recentSize > rangeRecentWindow {
		recentSize = rangeRecentWindow
	}
	start := len(s.rawBuffer) - recentSize

	for _, point := range s.rawBuffer[start:] {
		original := (point.Y+1.0)/2.0*(s.globalMax-s.globalMin) + s.globalMin
		if original > newMax {
			newMax = original
		}
		if original < newMin {
			newMin = original
		}
	}

	// Плавное обновление, чтобы диапазон не скакал
	s.globalMax = s.globalMax*(1.0-rangeSmoothingAlpha) + newMax*rangeSmoothingAlpha
	s.globalMin = s.globalMin*(1.0-rangeSmoothingAlpha) + newMin*rangeSmoothingAlpha

	s.events.Publish(EventRangeUpdated, map[string]float64{
		"min": s.globalMin,
		"max": s.globalMax,
	})
}

// LttbDownsample реализует алгоритм Largest Triangle Three Buckets.
// Первая и последняя точки сохраняются всегда; внутренние точки
// разбиваются на threshold-2 корзины, и из каждой выбирается точка,
// образующая наибольший треугольник с предыдущей выбранной точкой
// и центроидом следующей корзины.
func LttbDownsample(data []models.LttbPoint, threshold int) []models.LttbPoint {
	if len(data) <= threshold {
		result := make([]models.LttbPoint, len(data))
		copy(result, data)
		return result
	}

	if threshold <= 2 {
		return []models.LttbPoint{data[0], data[len(data)-1]}
	}

	sampled := make([]models.LttbPoint, 0, threshold)
	sampled = append(sampled, data[0])

	bucketSize := float64(len(data)-2) / float64(threshold-2)

	a := 0 // индекс последней выбранной точки

	for i := 0; i < threshold-2; i++ {
		// Центроид следующей корзины
		avgRangeStart := int(math.Floor(float64(i+1)*bucketSize)) + 1
		avgRangeEnd := int(math.Floor(float64(i+2)*bucketSize)) + 1
		if avgRangeEnd > len(data) {
			avgRangeEnd = len(data)
		}

		avgX := 0.0
		avgY := 0.0
		if avgRangeLength := avgRangeEnd - avgRangeStart; avgRangeLength > 0 {
			for j := avgRangeStart; j < avgRangeEnd; j++ {
				avgX += data[j].X
				avgY += data[j].Y
			}
			avgX /= float64(avgRangeLength)
			avgY /= float64(avgRangeLength)
		}

		// Точка текущей корзины с максимальной площадью треугольника
		rangeOffs := int(math.Floor(float64(i)*bucketSize)) + 1
		rangeTo := int(math.Floor(float64(i+1)*bucketSize)) + 1
		if rangeTo > len(data) {
			rangeTo = len(data)
		}

		pointAX := data[a].X
		pointAY := data[a].Y

		maxArea := -1.0
		nextA := rangeOffs

		for idx := rangeOffs; idx < rangeTo; idx++ {
			// Площадь треугольника по формуле шнурования
			area := math.Abs((pointAX*(data[idx].Y-avgY) +
				data[idx].X*(avgY-pointAY) +
				avgX*(pointAY-data[idx].Y)) / 2.0)

			if area > maxArea {
				maxArea = area
				nextA = idx
			}
		}

		sampled = append(sampled, data[nextA])
		a = nextA
	}

	sampled = append(sampled, data[len(data)-1])
	return sampled
}
