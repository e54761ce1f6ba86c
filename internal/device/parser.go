// Package device содержит разбор протокола датчиков и генератор
// тестовых данных. Физический транспорт (последовательный порт)
// остаётся снаружи: сюда попадают уже принятые строки.
package device

import (
	"strconv"
	"strings"

	"vital_monitor/internal/models"
)

// ParseDataLine разбирает строку протокола датчиков вида
// "A=123,B=98,C=370", где A — ЭКГ, B — сатурация, C — код температуры.
// Неизвестные ключи игнорируются. Выборка валидна только когда
// присутствуют все три поля.
func ParseDataLine(line string) (models.VitalSigns, bool) {
	var (
		ecg, spo2, temp          int
		hasECG, hasSpO2, hasTemp bool
	)

	for _, part := range strings.Split(line, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}

		value, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			continue
		}

		switch strings.TrimSpace(kv[0]) {
		case "A":
			ecg, hasECG = value, true
		case "B":
			spo2, hasSpO2 = value, true
		case "C":
			temp, hasTemp = value, true
		}
	}

	if !hasECG || !hasSpO2 || !hasTemp {
		return models.VitalSigns{}, false
	}

	return models.VitalSigns{ECG: ecg, SpO2: spo2, Temp: temp}, true
}
