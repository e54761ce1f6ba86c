package processing

import (
	"testing"

	"vital_monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperatureFilter_CalibratesRawCode(t *testing.T) {
	f := NewTemperatureFilter(models.DefaultTemperatureConfig(), nil)

	// Код 370 = 37.0 в десятых долях, калибровка 37.0 * 0.8 = 29.6
	value := f.Process(370)
	assert.InDelta(t, 29.6, value, 1e-9)
	assert.Equal(t, 1, f.WindowLen())
}

func TestTemperatureFilter_SensorFaultSubstitutesRoomTemperature(t *testing.T) {
	events := NewEventBus()
	_, ch := events.Subscribe(8)

	f := NewTemperatureFilter(models.DefaultTemperatureConfig(), events)

	// Код 100 даёт 8.0 °C — ниже комнатной минус 10, подставляется 23.2
	value := f.Process(100)
	assert.InDelta(t, 23.2, value, 1e-9)

	event := <-ch
	require.Equal(t, EventTemperatureAnomaly, event.Type)
	assert.InDelta(t, 8.0, event.Fields["measured"], 1e-9)
	assert.InDelta(t, 23.2, event.Fields["fallback"], 1e-9)
}

func TestTemperatureFilter_NilEventBusDoesNotPanic(t *testing.T) {
	f := NewTemperatureFilter(models.DefaultTemperatureConfig(), nil)

	assert.NotPanics(t, func() {
		f.Process(100)
	})
}

func TestTemperatureFilter_TrimmedMeanAtFullWindow(t *testing.T) {
	f := NewTemperatureFilter(models.DefaultTemperatureConfig(), nil)

	// 69 одинаковых выборок проходят как есть
	for i := 0; i < 69; i++ {
		value := f.Process(370)
		assert.InDelta(t, 29.6, value, 1e-9)
	}
	require.Equal(t, 69, f.WindowLen())

	// На 70-й считается усечённое среднее и окно очищается
	value := f.Process(370)
	assert.InDelta(t, 29.6, value, 1e-9)
	assert.Equal(t, 0, f.WindowLen())
}

func TestTemperatureFilter_TrimmedMeanDiscardsOutliers(t *testing.T) {
	f := NewTemperatureFilter(models.DefaultTemperatureConfig(), nil)

	// 60 нормальных выборок и 10 выбросов сверху: выбросы попадают
	// в отбрасываемый хвост и не влияют на среднее
	for i := 0; i < 60; i++ {
		f.Process(370)
	}
	var value float64
	for i := 0; i < 10; i++ {
		value = f.Process(450) // 45.0 * 0.8 = 36.0
	}

	assert.InDelta(t, 29.6, value, 1e-9)
	assert.Equal(t, 0, f.WindowLen())
}

func TestTemperatureFilter_AverageClampedToMax(t *testing.T) {
	f := NewTemperatureFilter(models.DefaultTemperatureConfig(), nil)

	// Код 500 даёт 40.0 °C: среднее выше физиологического предела
	var value float64
	for i := 0; i < 70; i++ {
		value = f.Process(500)
	}

	assert.InDelta(t, 37.2, value, 1e-9)
}
