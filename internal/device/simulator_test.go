package device

import (
	"sync"
	"testing"
	"time"

	"vital_monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_GeneratesValidSamples(t *testing.T) {
	var mu sync.Mutex
	var samples []models.VitalSigns

	sim := NewSimulator(func(v models.VitalSigns) {
		mu.Lock()
		samples = append(samples, v)
		mu.Unlock()
	})

	sim.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(samples) >= 3
	}, 2*time.Second, 10*time.Millisecond)

	sim.Stop()

	mu.Lock()
	defer mu.Unlock()
	for _, s := range samples {
		assert.GreaterOrEqual(t, s.SpO2, 95)
		assert.LessOrEqual(t, s.SpO2, 100)
		assert.GreaterOrEqual(t, s.Temp, 360)
		assert.LessOrEqual(t, s.Temp, 375)
		assert.GreaterOrEqual(t, s.ECG, -550)
		assert.LessOrEqual(t, s.ECG, 550)
	}
}

func TestSimulator_StopWithoutStartDoesNotBlock(t *testing.T) {
	sim := NewSimulator(func(models.VitalSigns) {})

	done := make(chan struct{})
	go func() {
		sim.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop без Start не должен блокироваться")
	}
}

func TestSimulator_StopTerminatesGeneration(t *testing.T) {
	var count int
	var mu sync.Mutex

	sim := NewSimulator(func(models.VitalSigns) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	sim.Start()
	time.Sleep(250 * time.Millisecond)
	sim.Stop()

	mu.Lock()
	after := count
	mu.Unlock()

	// После Stop генерация не продолжается
	time.Sleep(250 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, count)
	mu.Unlock()
}
