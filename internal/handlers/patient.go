// internal/handlers/patient.go
package handlers

import (
	"errors"
	"fmt"
	"log"

	"vital_monitor/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientService хранение карт пациентов.
// Чистая персистентность метаданных, не связанная с обработкой сигналов.
type PatientService struct {
	db *gorm.DB
}

// NewPatientService создает сервис карт пациентов
func NewPatientService(db *gorm.DB) *PatientService {
	return &PatientService{db: db}
}

// defaultPatientCard карта с незаполненными полями
func defaultPatientCard() models.PatientCard {
	return models.PatientCard{
		Name:             "Не указано",
		Gender:           "Не указано",
		Phone:            "Не указано",
		Address:          "Не указано",
		EmergencyContact: "Не указано",
		BloodType:        "Неизвестно",
		Allergies:        []string{},
		MedicalHistory:   []string{},
		LastCheckup:      "Не записано",
	}
}

// GetCard возвращает карту пациента по ID.
// Отсутствующая карта — не ошибка: возвращается карта по умолчанию,
// как в настольной версии монитора.
func (s *PatientService) GetCard(cardID uuid.UUID) (models.PatientCard, error) {
	var card models.PatientCard
	err := s.db.First(&card, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		card = defaultPatientCard()
		card.ID = cardID
		return card, nil
	}
	if err != nil {
		return models.PatientCard{}, fmt.Errorf("не удалось загрузить карту пациента: %w", err)
	}
	return card, nil
}

// SaveCard создает или обновляет карту пациента
func (s *PatientService) SaveCard(card *models.PatientCard) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}

	if err := s.db.Save(card).Error; err != nil {
		return fmt.Errorf("не удалось сохранить карту пациента: %w", err)
	}

	log.Printf("Карта пациента сохранена: %s", card.ID.String())
	return nil
}

// DeleteCard удаляет карту пациента. Удаление отсутствующей карты — не ошибка.
func (s *PatientService) DeleteCard(cardID uuid.UUID) error {
	if err := s.db.Delete(&models.PatientCard{}, "id = ?", cardID).Error; err != nil {
		return fmt.Errorf("не удалось удалить карту пациента: %w", err)
	}
	return nil
}
