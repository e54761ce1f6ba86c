package processing

import (
	"testing"
	"time"

	"vital_monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor() *DataProcessor {
	return NewDataProcessor(models.DefaultLttbConfig(), models.DefaultTemperatureConfig())
}

func TestDataProcessor_LifecycleTransitions(t *testing.T) {
	p := newTestProcessor()
	require.Equal(t, StatusStopped, p.Status())

	p.Start()
	require.Equal(t, StatusRunning, p.Status())

	// Повторный Start на работающем конвейере ничего не делает
	p.Start()
	require.Equal(t, StatusRunning, p.Status())

	p.StopWait()
	assert.Equal(t, StatusStopped, p.Status())

	// Конвейер можно перезапустить
	p.Start()
	require.Equal(t, StatusRunning, p.Status())
	p.StopWait()
}

func TestDataProcessor_StopWithoutStart(t *testing.T) {
	p := newTestProcessor()

	assert.NotPanics(t, func() {
		p.Stop()
		p.StopWait()
	})
	assert.Equal(t, StatusStopped, p.Status())
}

func TestDataProcessor_ProcessesSubmittedSamples(t *testing.T) {
	p := newTestProcessor()

	for i := 0; i < 50; i++ {
		p.Submit(models.VitalSigns{ECG: i * 10, SpO2: 97, Temp: 370})
	}

	p.Start()
	defer p.StopWait()

	require.Eventually(t, func() bool {
		return len(p.LatestProcessed(100)) == 50
	}, 2*time.Second, 10*time.Millisecond)

	processed := p.LatestProcessed(1)
	require.Len(t, processed, 1)

	// Самая свежая выборка: ЭКГ 490, сатурация валидна, температура откалибрована
	last := processed[0]
	assert.Equal(t, 490, last.EcgRaw)
	assert.Equal(t, 97, last.BloodOxygen)
	assert.InDelta(t, 29.6, last.BodyTemperature, 1e-9)
	assert.NotZero(t, last.Timestamp)
}

func TestDataProcessor_CallbackReceivesEverySample(t *testing.T) {
	p := newTestProcessor()

	received := make(chan models.ProcessedVitalSigns, 10)
	p.SetProcessedCallback(func(sample models.ProcessedVitalSigns) {
		received <- sample
	})

	p.Submit(models.VitalSigns{ECG: 100, SpO2: 98, Temp: 365})
	p.Start()
	defer p.StopWait()

	select {
	case sample := <-received:
		assert.Equal(t, 100, sample.EcgRaw)
		assert.Equal(t, 98, sample.BloodOxygen)
	case <-time.After(2 * time.Second):
		t.Fatal("колбэк не получил обработанную выборку")
	}
}

func TestDataProcessor_InvalidSpO2Zeroed(t *testing.T) {
	p := newTestProcessor()

	p.Submit(models.VitalSigns{ECG: 100, SpO2: -5, Temp: 370})
	p.Start()
	defer p.StopWait()

	require.Eventually(t, func() bool {
		return len(p.LatestProcessed(1)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, p.LatestProcessed(1)[0].BloodOxygen)
}

func TestDataProcessor_StatisticsAndMetrics(t *testing.T) {
	p := newTestProcessor()

	for i := 0; i < 20; i++ {
		p.Submit(models.VitalSigns{ECG: i, SpO2: 97, Temp: 370})
	}
	p.Start()
	defer p.StopWait()

	require.Eventually(t, func() bool {
		return len(p.LatestProcessed(100)) == 20
	}, 2*time.Second, 10*time.Millisecond)

	stats := p.Statistics()
	assert.GreaterOrEqual(t, stats.CurrentHeartRate, 0.0)
	assert.LessOrEqual(t, stats.CurrentHeartRate, 100.0)

	metrics := p.PerformanceMetrics()
	assert.Greater(t, metrics.ProcessingRate, 0.0)
	assert.Equal(t, 20, metrics.QueueLength)
}

func TestDataProcessor_CompressedWaveformAfterFullBuffer(t *testing.T) {
	p := newTestProcessor()

	// 1000 выборок заполняют LTTB буфер и запускают сжатие 1000 → 100
	for i := 0; i < 1000; i++ {
		p.Submit(models.VitalSigns{ECG: i % 700, SpO2: 97, Temp: 370})
	}
	p.Start()
	defer p.StopWait()

	require.Eventually(t, func() bool {
		return len(p.CompressedWaveform()) == 100
	}, 5*time.Second, 20*time.Millisecond)

	waveform := p.CompressedWaveform()
	for _, point := range waveform {
		assert.GreaterOrEqual(t, point.Y, -1.0)
		assert.LessOrEqual(t, point.Y, 1.0)
	}
}
