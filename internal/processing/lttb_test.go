package processing

import (
	"math"
	"testing"

	"vital_monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWave(n int) []models.LttbPoint {
	points := make([]models.LttbPoint, n)
	for i := range points {
		points[i] = models.LttbPoint{
			X: float64(i),
			Y: math.Sin(float64(i) * 0.05),
		}
	}
	return points
}

func TestLttbDownsample_IdentityWhenBelowThreshold(t *testing.T) {
	data := makeWave(50)

	result := LttbDownsample(data, 100)
	assert.Equal(t, data, result)

	// Результат — копия, не алиас исходного среза
	result[0].Y = 999.0
	assert.NotEqual(t, data[0].Y, result[0].Y)
}

func TestLttbDownsample_ThresholdTwoKeepsEndpoints(t *testing.T) {
	data := makeWave(100)

	result := LttbDownsample(data, 2)
	require.Len(t, result, 2)
	assert.Equal(t, data[0], result[0])
	assert.Equal(t, data[99], result[1])
}

func TestLttbDownsample_PreservesEndpointsAndLength(t *testing.T) {
	data := makeWave(1000)

	result := LttbDownsample(data, 100)
	require.Len(t, result, 100)
	assert.Equal(t, data[0], result[0])
	assert.Equal(t, data[999], result[99])

	// Выбранные точки идут в порядке возрастания X
	for i := 1; i < len(result); i++ {
		assert.Greater(t, result[i].X, result[i-1].X)
	}
}

func TestLttbDownsample_KeepsExtremes(t *testing.T) {
	// Плоская линия с одним выбросом: LTTB обязан сохранить выброс,
	// он образует наибольший треугольник в своей корзине
	data := makeWave(300)
	for i := range data {
		data[i].Y = 0.0
	}
	data[150].Y = 10.0

	result := LttbDownsample(data, 30)

	found := false
	for _, p := range result {
		if p.Y == 10.0 {
			found = true
			break
		}
	}
	assert.True(t, found, "выброс должен сохраниться после сжатия")
}

func TestLttbState_NormalizesToUnitRange(t *testing.T) {
	cfg := models.DefaultLttbConfig()
	cfg.EnableDynamicRange = false
	s := NewLttbState(cfg, nil)

	// Первая выборка: диапазон вырожден, нормализация даёт 0
	normalized, _ := s.Process(500, 0)
	assert.Zero(t, normalized)

	values := []int{100, 900, 500, -200, 1500}
	for i, v := range values {
		normalized, _ = s.Process(v, uint64(i+1))
		assert.GreaterOrEqual(t, normalized, -1.0)
		assert.LessOrEqual(t, normalized, 1.0)
	}

	// Текущий максимум нормализуется в 1, минимум в -1
	normalized, _ = s.Process(1500, 100)
	assert.InDelta(t, 1.0, normalized, 1e-9)
	normalized, _ = s.Process(-200, 101)
	assert.InDelta(t, -1.0, normalized, 1e-9)
}

func TestLttbState_CompressionFiresAtBufferSize(t *testing.T) {
	events := NewEventBus()
	_, ch := events.Subscribe(8)

	cfg := models.DefaultLttbConfig()
	cfg.EnableDynamicRange = false
	s := NewLttbState(cfg, events)

	// 999 выборок: сжатие ещё не сработало
	for i := 0; i < 999; i++ {
		_, compressed := s.Process(i%700, uint64(i))
		assert.Empty(t, compressed)
	}
	require.Equal(t, 999, s.RawBufferLen())

	// 1000-я выборка запускает сжатие 1000 → 100
	_, compressed := s.Process(0, 999)
	require.Len(t, compressed, 100)
	assert.Equal(t, 100, s.CompressedLen())

	// В сыром буфере остаётся последняя четверть как контекст
	assert.Equal(t, 250, s.RawBufferLen())

	event := <-ch
	require.Equal(t, EventCompressionFired, event.Type)
	assert.InDelta(t, 1000.0, event.Fields["input_points"], 1e-9)
	assert.InDelta(t, 100.0, event.Fields["output_points"], 1e-9)
}

func TestLttbState_SnapshotIsACopy(t *testing.T) {
	cfg := models.DefaultLttbConfig()
	cfg.EnableDynamicRange = false
	s := NewLttbState(cfg, nil)

	for i := 0; i < 1000; i++ {
		s.Process(i%700, uint64(i))
	}

	first := s.CompressedSnapshot()
	require.NotEmpty(t, first)

	first[0].Y = 999.0
	second := s.CompressedSnapshot()
	assert.NotEqual(t, first[0].Y, second[0].Y)
}

func TestLttbState_DynamicRangeRecalculation(t *testing.T) {
	events := NewEventBus()
	_, ch := events.Subscribe(8)

	cfg := models.DefaultLttbConfig()
	cfg.RangeUpdateInterval = 500
	s := NewLttbState(cfg, events)

	// 500 выборок: срабатывает пересчёт диапазона
	for i := 0; i < 500; i++ {
		s.Process(i%700, uint64(i))
	}

	event := <-ch
	require.Equal(t, EventRangeUpdated, event.Type)
	assert.Less(t, event.Fields["min"], event.Fields["max"])
}
