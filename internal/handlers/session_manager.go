// internal/handlers/session_manager.go
package handlers

import (
	"fmt"
	"log"
	"sync"
	"time"

	"vital_monitor/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionManager управляет жизненным циклом сессий мониторинга
type SessionManager struct {
	db             *gorm.DB
	activeSessions map[string]*models.MonitoringSession
	sessionsLock   sync.RWMutex
	vitalsBuffer   *VitalsBuffer
}

// NewSessionManager создает новый менеджер сессий
func NewSessionManager(db *gorm.DB, vitalsBuffer *VitalsBuffer) *SessionManager {
	manager := &SessionManager{
		db:             db,
		activeSessions: make(map[string]*models.MonitoringSession),
		vitalsBuffer:   vitalsBuffer,
	}

	log.Println("Session Manager инициализирован")
	return manager
}

// StartSession создает и запускает новую сессию мониторинга
func (sm *SessionManager) StartSession(cardID uuid.UUID, deviceID string) (*models.MonitoringSession, error) {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()

	// Проверяем, нет ли уже активной сессии для этого устройства
	if existing := sm.activeSessions[deviceID]; existing != nil {
		return nil, fmt.Errorf("активная сессия уже существует для устройства %s", deviceID)
	}

	session := &models.MonitoringSession{
		ID:        uuid.New(),
		CardID:    cardID,
		DeviceID:  deviceID,
		StartTime: time.Now().UTC(),
		HRData:    models.VitalTimeSeries{Points: []models.VitalPoint{}},
		TempData:  models.VitalTimeSeries{Points: []models.VitalPoint{}},
		SpO2Data:  models.VitalTimeSeries{Points: []models.VitalPoint{}},
	}

	// Сохраняем в БД
	if err := sm.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("не удалось создать сессию в БД: %w", err)
	}

	sm.activeSessions[deviceID] = session

	log.Printf("Запущена сессия %s для устройства %s, карта %s",
		session.ID.String(), deviceID, cardID.String())

	return session, nil
}

// StopSession завершает активную сессию
func (sm *SessionManager) StopSession(sessionID uuid.UUID) (*models.MonitoringSession, error) {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()

	var targetDeviceID string
	var targetSession *models.MonitoringSession

	for deviceID, session := range sm.activeSessions {
		if session.ID == sessionID {
			targetDeviceID = deviceID
			targetSession = session
			break
		}
	}

	if targetSession == nil {
		return nil, fmt.Errorf("активная сессия %s не найдена", sessionID.String())
	}

	now := time.Now().UTC()
	targetSession.EndTime = &now

	if err := sm.db.Model(targetSession).Update("end_time", now).Error; err != nil {
		return nil, fmt.Errorf("не удалось обновить сессию в БД: %w", err)
	}

	delete(sm.activeSessions, targetDeviceID)

	// Финальный флаш и очистка буфера сессии
	sm.vitalsBuffer.RemoveSessionBuffer(sessionID)

	log.Printf("✅ Завершена сессия %s для устройства %s", sessionID.String(), targetDeviceID)
	return targetSession, nil
}

// GetActiveSession возвращает активную сессию для устройства
func (sm *SessionManager) GetActiveSession(deviceID string) *models.MonitoringSession {
	sm.sessionsLock.RLock()
	defer sm.sessionsLock.RUnlock()
	return sm.activeSessions[deviceID]
}

// GetActiveSessionCount возвращает количество активных сессий
func (sm *SessionManager) GetActiveSessionCount() int {
	sm.sessionsLock.RLock()
	defer sm.sessionsLock.RUnlock()
	return len(sm.activeSessions)
}

// GetSession получает сессию из БД по ID
func (sm *SessionManager) GetSession(sessionID uuid.UUID) (*models.MonitoringSession, error) {
	var session models.MonitoringSession
	if err := sm.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSessionsByCardID получает все сессии для карты пациента
func (sm *SessionManager) GetSessionsByCardID(cardID uuid.UUID) ([]*models.MonitoringSession, error) {
	var sessions []*models.MonitoringSession
	if err := sm.db.Where("card_id = ?", cardID).
		Order("start_time DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// RecordProcessed записывает обработанную выборку в буфер активной сессии устройства
func (sm *SessionManager) RecordProcessed(deviceID string, p models.ProcessedVitalSigns) {
	session := sm.GetActiveSession(deviceID)
	if session == nil {
		return
	}

	timeSec := float64(p.Timestamp)/1000.0 - float64(session.StartTime.UnixMilli())/1000.0
	sm.vitalsBuffer.AddDataPoint(session.ID, timeSec, p.HeartRate, p.BodyTemperature, p.BloodOxygen)
}

// CleanupInactiveSessions проверяет и очищает зависшие сессии
func (sm *SessionManager) CleanupInactiveSessions() {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()

	var sessionsToRemove []string
	threshold := time.Now().Add(-24 * time.Hour)

	for deviceID, session := range sm.activeSessions {
		if session.StartTime.Before(threshold) {
			now := time.Now().UTC()
			session.EndTime = &now
			sm.db.Model(session).Update("end_time", now)

			sessionsToRemove = append(sessionsToRemove, deviceID)
			log.Printf("Принудительно завершена зависшая сессия: %s", session.ID.String())
		}
	}

	for _, deviceID := range sessionsToRemove {
		delete(sm.activeSessions, deviceID)
	}

	if len(sessionsToRemove) > 0 {
		log.Printf("Очищено %d зависших сессий", len(sessionsToRemove))
	}
}
