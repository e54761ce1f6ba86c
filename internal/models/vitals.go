package models

// VitalSigns сырые показания с датчиков (одна выборка)
type VitalSigns struct {
	ECG  int `json:"ecg"`  // Амплитуда ЭКГ
	SpO2 int `json:"spo2"` // Сатурация кислорода
	Temp int `json:"temp"` // Код температуры (десятые доли градуса)
}

// LttbPoint точка сжатой кривой для отображения
type LttbPoint struct {
	X float64 `json:"x"` // Временная метка или индекс
	Y float64 `json:"y"` // Нормализованное значение (-1..1)
}

// ProcessedVitalSigns обработанные показания после всех алгоритмов
type ProcessedVitalSigns struct {
	EcgRaw            int         `json:"ecg_raw"`             // Исходное значение ЭКГ
	EcgNormalized     float64     `json:"ecg_normalized"`      // Нормализованное значение (-1..1)
	EcgLttbCompressed []LttbPoint `json:"ecg_lttb_compressed"` // Текущий сжатый снимок кривой
	BodyTemperature   float64     `json:"body_temperature"`    // Температура тела, °C
	BloodOxygen       int         `json:"blood_oxygen"`        // Сатурация, %
	HeartRate         float64     `json:"heart_rate"`          // Частота сердечных сокращений, уд/мин
	RRInterval        float64     `json:"rr_interval"`         // RR-интервал, секунды
	Timestamp         uint64      `json:"timestamp"`           // Unix-время в миллисекундах
}

// EcgStatistics сводная статистика по ЭКГ
type EcgStatistics struct {
	CurrentHeartRate      float64 `json:"current_heart_rate"`
	AverageHeartRate      float64 `json:"average_heart_rate"`
	MaxHeartRate          float64 `json:"max_heart_rate"`
	MinHeartRate          float64 `json:"min_heart_rate"`
	RRVariability         float64 `json:"rr_variability"`
	SignalQuality         float64 `json:"signal_quality"`         // Оценка качества сигнала (0-100)
	CompressionEfficiency float64 `json:"compression_efficiency"` // Точек до сжатия / точек после
}

// PerformanceMetrics показатели производительности конвейера
type PerformanceMetrics struct {
	ProcessingRate           float64 `json:"processing_rate"` // Точек в секунду
	QueueLength              int     `json:"queue_length"`    // Длина очереди обработанных данных
	CompressionRatioAchieved float64 `json:"compression_ratio_achieved"`
}

// LttbConfig параметры алгоритма сжатия LTTB
type LttbConfig struct {
	BufferSize          int    `json:"buffer_size"`           // Порог срабатывания сжатия
	CompressionRatio    int    `json:"compression_ratio"`     // Коэффициент сжатия (10 = 10:1)
	EnableDynamicRange  bool   `json:"enable_dynamic_range"`  // Динамическая подстройка диапазона
	RangeUpdateInterval uint64 `json:"range_update_interval"` // Период пересчёта диапазона (в точках)
}

// DefaultLttbConfig возвращает конфигурацию LTTB по умолчанию
func DefaultLttbConfig() LttbConfig {
	return LttbConfig{
		BufferSize:          1000,
		CompressionRatio:    10,
		EnableDynamicRange:  true,
		RangeUpdateInterval: 500,
	}
}

// TemperatureConfig параметры калибровки температурного фильтра
type TemperatureConfig struct {
	ScaleFactor     float64 `json:"scale_factor"`
	Offset          float64 `json:"offset"`
	MaxTemp         float64 `json:"max_temp"`         // Верхний предел выдаваемой температуры, °C
	RoomTemperature float64 `json:"room_temperature"` // Базовая температура при сбое датчика, °C
}

// DefaultTemperatureConfig возвращает калибровку по умолчанию
func DefaultTemperatureConfig() TemperatureConfig {
	return TemperatureConfig{
		ScaleFactor:     0.8,
		Offset:          0.0,
		MaxTemp:         37.2,
		RoomTemperature: 23.2,
	}
}
