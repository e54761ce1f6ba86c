package models

import (
	"time"

	"github.com/google/uuid"
)

// MonitoringSession единая таблица сессий мониторинга жизненных показателей
type MonitoringSession struct {
	// Основные идентификаторы
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CardID   uuid.UUID `json:"card_id" gorm:"type:uuid;not null;index"`
	DeviceID string    `json:"device_id" gorm:"type:varchar(100);not null;index"`

	// Метаданные сессии
	StartTime time.Time  `json:"start_time" gorm:"not null;index"`
	EndTime   *time.Time `json:"end_time" gorm:"index"` // null пока сессия активна

	// Временные ряды показателей как аппендабельные JSONB массивы
	HRData   VitalTimeSeries `json:"hr_data" gorm:"serializer:json;type:jsonb"`   // частота сердечных сокращений
	TempData VitalTimeSeries `json:"temp_data" gorm:"serializer:json;type:jsonb"` // температура тела
	SpO2Data VitalTimeSeries `json:"spo2_data" gorm:"serializer:json;type:jsonb"` // сатурация кислорода
}

// VitalTimeSeries оптимизированная структура для аппенда
type VitalTimeSeries struct {
	Points   []VitalPoint `json:"points"`    // Массив точек данных
	LastTime float64      `json:"last_time"` // Последняя временная отметка
	Count    int          `json:"count"`     // Количество точек
}

// VitalPoint одна точка данных
type VitalPoint struct {
	T float64 `json:"t"` // Время в секундах от начала сессии
	V float64 `json:"v"` // Значение
}

func (MonitoringSession) TableName() string {
	return "monitoring_sessions"
}

// PatientCard карта пациента (метаданные, не связанные с обработкой сигналов)
type PatientCard struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name             string    `json:"name" gorm:"type:varchar(255);not null"`
	Gender           string    `json:"gender" gorm:"type:varchar(16)"`
	Age              int       `json:"age"`
	Height           float64   `json:"height"`
	Weight           float64   `json:"weight"`
	Phone            string    `json:"phone" gorm:"type:varchar(32)"`
	Address          string    `json:"address" gorm:"type:varchar(255)"`
	EmergencyContact string    `json:"emergency_contact" gorm:"type:varchar(255)"`
	BloodType        string    `json:"blood_type" gorm:"type:varchar(8)"`
	Allergies        []string  `json:"allergies" gorm:"serializer:json;type:jsonb"`
	MedicalHistory   []string  `json:"medical_history" gorm:"serializer:json;type:jsonb"`
	LastCheckup      string    `json:"last_checkup" gorm:"type:varchar(64)"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (PatientCard) TableName() string {
	return "patient_cards"
}
