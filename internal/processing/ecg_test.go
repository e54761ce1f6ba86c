package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcgState_NoBeatBeforeFirstCalibration(t *testing.T) {
	s := NewEcgState()

	// До первого коммита эпохи порог фактически бесконечен:
	// даже явный зубец не должен давать ЧСС
	for _, v := range []int{100, 400, 650, 400, 100} {
		hr, rr := s.Process(v)
		assert.Zero(t, hr)
		assert.Zero(t, rr)
	}
}

func TestEcgState_DetectsPeakAfterCalibration(t *testing.T) {
	s := NewEcgState()

	// 300 выборок плоской линии: коммитится эпоха max=min=100,
	// порог становится нулевым
	for i := 0; i < 300; i++ {
		hr, _ := s.Process(100)
		assert.Zero(t, hr)
	}

	// Треугольный зубец: средняя точка строго выше соседних
	s.Process(400)
	s.Process(650)
	hr, rr := s.Process(400)

	// К моменту зубца накоплено 299 выборок интервала:
	// ЧСС = 60 / (299 / 250) ≈ 50.17 уд/мин
	require.InDelta(t, 60.0/(299.0/250.0), hr, 1e-9)
	require.InDelta(t, 299.0/250.0, rr, 1e-9)
	assert.InDelta(t, 60.0/hr, rr, 1e-9)
}

func TestEcgState_HeartRateClampedToMax(t *testing.T) {
	s := NewEcgState()

	for i := 0; i < 300; i++ {
		s.Process(100)
	}

	// Первый зубец
	s.Process(400)
	s.Process(650)
	s.Process(400)

	// Второй зубец через несколько выборок: физиологически невозможный
	// интервал, ЧСС ограничивается сверху
	s.Process(300)
	s.Process(300)
	s.Process(400)
	s.Process(650)
	hr, rr := s.Process(400)

	assert.Equal(t, 100.0, hr)
	assert.InDelta(t, 0.6, rr, 1e-9)
}

func TestEcgState_HoldsLastValueBetweenBeats(t *testing.T) {
	s := NewEcgState()

	for i := 0; i < 300; i++ {
		s.Process(100)
	}
	s.Process(400)
	s.Process(650)
	firstHR, firstRR := s.Process(400)
	require.NotZero(t, firstHR)

	// Между ударами детектор держит предыдущую оценку
	for i := 0; i < 50; i++ {
		hr, rr := s.Process(100)
		assert.Equal(t, firstHR, hr)
		assert.Equal(t, firstRR, rr)
	}

	assert.Equal(t, firstHR, s.LastHeartRate())
	assert.Equal(t, firstRR, s.LastRRInterval())
}

func TestEcgState_HeartRateAlwaysInRange(t *testing.T) {
	s := NewEcgState()

	// Псевдослучайный сигнал с зубцами: ЧСС всегда в [0, 100]
	for i := 0; i < 2000; i++ {
		v := (i * 37) % 700
		if i%17 == 0 {
			v = 900
		}
		hr, _ := s.Process(v)
		assert.GreaterOrEqual(t, hr, 0.0)
		assert.LessOrEqual(t, hr, 100.0)
	}
}
