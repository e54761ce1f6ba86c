package processing

import (
	"math"

	"vital_monitor/configs"
)

// peakDetectionThreshold доля размаха текущей эпохи, которую должен
// превысить кандидат, чтобы считаться настоящим R-зубцом
const peakDetectionThreshold = 0.6

// epochLength количество выборок между перекалибровками порога
const epochLength = 300

// maxHeartRate верхний предел выдаваемой ЧСС, уд/мин
const maxHeartRate = 100.0

// EcgState состояние детектора R-зубцов и расчёта ЧСС.
// Один писатель за раз; конвейер защищает состояние своим мьютексом.
//
// Калибровка порога идёт эпохами по 300 выборок: пока текущая эпоха
// накапливает max/min, детектор работает по значениям предыдущей.
// Аккумуляторы сбрасываются асимметрично (max в 0, min в +Inf) —
// это сознательно сохранённое поведение исходного алгоритма,
// влияющее на эффективный порог первой эпохи.
type EcgState struct {
	pointMax    float64 // max текущей (закоммиченной) эпохи
	pointMin    float64 // min текущей эпохи
	pointMaxNew float64 // max накапливаемой эпохи
	pointMinNew float64 // min накапливаемой эпохи

	window          []int // скользящее окно из 3 сырых значений
	peakIntervalNum int   // выборок с последнего подтверждённого зубца
	counter         int   // счётчик выборок внутри эпохи

	lastHeartRate  float64
	lastRRInterval float64
}

// NewEcgState создаёт состояние детектора с начальной калибровкой
func NewEcgState() *EcgState {
	return &EcgState{
		pointMax:    math.Inf(-1),
		pointMin:    math.Inf(1),
		pointMaxNew: 0.0,
		pointMinNew: math.Inf(1),
		window:      make([]int, 0, 3),
	}
}

// Process обрабатывает одну выборку ЭКГ и возвращает последние известные
// ЧСС и RR-интервал. Значения обновляются только на подтверждённом зубце,
// между ударами детектор держит предыдущую оценку.
func (s *EcgState) Process(ecgValue int) (heartRate, rrInterval float64) {
	value := float64(ecgValue)

	// Обновляем аккумуляторы накапливаемой эпохи
	if value > s.pointMaxNew {
		s.pointMaxNew = value
	}
	if value < s.pointMinNew {
		s.pointMinNew = value
	}

	// Каждые 300 выборок коммитим новую калибровку порога
	s.counter++
	if s.counter >= epochLength {
		s.pointMax = s.pointMaxNew
		s.pointMin = s.pointMinNew
		s.pointMaxNew = 0.0
		s.pointMinNew = math.Inf(1)
		s.counter = 0
	}

	// Скользящее окно из 3 точек для детекции зубца
	if len(s.window) < 3 {
		s.window = append(s.window, ecgValue)
		return s.lastHeartRate, s.lastRRInterval
	}

	s.window[0] = s.window[1]
	s.window[1] = s.window[2]
	s.window[2] = ecgValue

	// Зубец: средняя точка строго выше обеих соседних
	if s.window[0] < s.window[1] && s.window[1] > s.window[2] {
		thresholdValue := (s.pointMax - s.pointMin) * peakDetectionThreshold

		if float64(s.window[1])-s.pointMin > thresholdValue {
			if s.peakIntervalNum != 0 {
				// ЧСС из интервала между зубцами при частоте дискретизации 250 Гц
				heartRate := 60.0 / (1.0 / configs.ECGSampleRateHz * float64(s.peakIntervalNum))
				if heartRate > maxHeartRate {
					heartRate = maxHeartRate
				}

				s.lastHeartRate = heartRate
				s.lastRRInterval = 60.0 / heartRate
				s.peakIntervalNum = 0
			}
		} else {
			s.peakIntervalNum++
		}
	} else {
		s.peakIntervalNum++
	}

	return s.lastHeartRate, s.lastRRInterval
}

// LastHeartRate возвращает последнюю рассчитанную ЧСС
func (s *EcgState) LastHeartRate() float64 {
	return s.lastHeartRate
}

// LastRRInterval возвращает последний рассчитанный RR-интервал
func (s *EcgState) LastRRInterval() float64 {
	return s.lastRRInterval
}
