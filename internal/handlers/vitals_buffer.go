// internal/handlers/vitals_buffer.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"vital_monitor/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VitalsBuffer управляет буферизацией обработанных показателей
// для пакетной записи в БД
type VitalsBuffer struct {
	db             *gorm.DB
	sessionBuffers map[uuid.UUID]*SessionVitalsBuffer
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

// SessionVitalsBuffer буфер для одной сессии
type SessionVitalsBuffer struct {
	SessionID  uuid.UUID
	HRBuffer   []models.VitalPoint
	TempBuffer []models.VitalPoint
	SpO2Buffer []models.VitalPoint
	LastFlush  time.Time
	mu         sync.Mutex
}

// NewVitalsBuffer создает новый буфер данных
func NewVitalsBuffer(db *gorm.DB) *VitalsBuffer {
	ctx, cancel := context.WithCancel(context.Background())

	buffer := &VitalsBuffer{
		db:             db,
		sessionBuffers: make(map[uuid.UUID]*SessionVitalsBuffer),
		ctx:            ctx,
		cancel:         cancel,
	}

	// Запуск автофлаша
	buffer.wg.Add(1)
	go buffer.autoFlushWorker()

	log.Println("Vitals Buffer инициализирован")
	return buffer
}

// AddDataPoint добавляет точку обработанных показателей в буфер сессии
func (b *VitalsBuffer) AddDataPoint(sessionID uuid.UUID, timeSec, heartRate, temperature float64, spo2 int) {
	b.mu.RLock()
	sessionBuffer, exists := b.sessionBuffers[sessionID]
	b.mu.RUnlock()

	if !exists {
		b.mu.Lock()
		if sessionBuffer, exists = b.sessionBuffers[sessionID]; !exists {
			sessionBuffer = &SessionVitalsBuffer{
				SessionID:  sessionID,
				HRBuffer:   make([]models.VitalPoint, 0, 500),
				TempBuffer: make([]models.VitalPoint, 0, 500),
				SpO2Buffer: make([]models.VitalPoint, 0, 500),
				LastFlush:  time.Now(),
			}
			b.sessionBuffers[sessionID] = sessionBuffer
		}
		b.mu.Unlock()
	}

	sessionBuffer.mu.Lock()
	defer sessionBuffer.mu.Unlock()

	sessionBuffer.HRBuffer = append(sessionBuffer.HRBuffer, models.VitalPoint{T: timeSec, V: heartRate})
	sessionBuffer.TempBuffer = append(sessionBuffer.TempBuffer, models.VitalPoint{T: timeSec, V: temperature})
	sessionBuffer.SpO2Buffer = append(sessionBuffer.SpO2Buffer, models.VitalPoint{T: timeSec, V: float64(spo2)})

	totalPoints := len(sessionBuffer.HRBuffer) + len(sessionBuffer.TempBuffer) + len(sessionBuffer.SpO2Buffer)
	timeSinceFlush := time.Since(sessionBuffer.LastFlush)

	if totalPoints >= 300 || timeSinceFlush > 30*time.Second {
		go b.flushSessionAsync(sessionID)
	}
}

// FlushAll флашит все буферы
func (b *VitalsBuffer) FlushAll() {
	b.mu.RLock()
	var sessionIDs []uuid.UUID
	for sessionID := range b.sessionBuffers {
		sessionIDs = append(sessionIDs, sessionID)
	}
	b.mu.RUnlock()

	for _, sessionID := range sessionIDs {
		b.flushSessionAsync(sessionID)
	}
}

// flushSessionAsync асинхронно флашит буфер сессии
func (b *VitalsBuffer) flushSessionAsync(sessionID uuid.UUID) {
	b.mu.RLock()
	sessionBuffer, exists := b.sessionBuffers[sessionID]
	b.mu.RUnlock()

	if !exists {
		return
	}

	sessionBuffer.mu.Lock()

	// Копируем данные для флаша
	hrPoints := make([]models.VitalPoint, len(sessionBuffer.HRBuffer))
	copy(hrPoints, sessionBuffer.HRBuffer)
	tempPoints := make([]models.VitalPoint, len(sessionBuffer.TempBuffer))
	copy(tempPoints, sessionBuffer.TempBuffer)
	spo2Points := make([]models.VitalPoint, len(sessionBuffer.SpO2Buffer))
	copy(spo2Points, sessionBuffer.SpO2Buffer)

	// Очищаем буферы
	sessionBuffer.HRBuffer = sessionBuffer.HRBuffer[:0]
	sessionBuffer.TempBuffer = sessionBuffer.TempBuffer[:0]
	sessionBuffer.SpO2Buffer = sessionBuffer.SpO2Buffer[:0]
	sessionBuffer.LastFlush = time.Now()

	sessionBuffer.mu.Unlock()

	if len(hrPoints) == 0 && len(tempPoints) == 0 && len(spo2Points) == 0 {
		return
	}

	// Записываем в БД
	if err := b.writeToDatabase(sessionID, hrPoints, tempPoints, spo2Points); err != nil {
		log.Printf("❌ Ошибка записи в БД для сессии %s: %v", sessionID, err)
	} else {
		log.Printf("💾 Записано в БД: сессия %s, HR=%d, Temp=%d, SpO2=%d точек",
			sessionID, len(hrPoints), len(tempPoints), len(spo2Points))
	}
}

// appendSeriesExpr формирует jsonb_set выражение для аппенда точек в колонку
func appendSeriesExpr(column string, points []models.VitalPoint) interface{} {
	pointsJSON, _ := json.Marshal(points)
	lastTimeStr := strconv.FormatFloat(points[len(points)-1].T, 'f', -1, 64)

	return gorm.Expr(
		`jsonb_set(
       jsonb_set(
         jsonb_set(`+column+`,
           '{points}', COALESCE(`+column+`->'points','[]'::jsonb)||?::jsonb),
         '{count}', (COALESCE((`+column+`->>'count')::int,0)+?)::text::jsonb),
       '{last_time}', ?::text::jsonb)`,
		string(pointsJSON),
		len(points),
		lastTimeStr,
	)
}

// writeToDatabase записывает данные в БД пакетно
func (b *VitalsBuffer) writeToDatabase(sessionID uuid.UUID, hrPoints, tempPoints, spo2Points []models.VitalPoint) error {
	updates := make(map[string]interface{})

	if len(hrPoints) > 0 {
		updates["hr_data"] = appendSeriesExpr("hr_data", hrPoints)
	}
	if len(tempPoints) > 0 {
		updates["temp_data"] = appendSeriesExpr("temp_data", tempPoints)
	}
	if len(spo2Points) > 0 {
		updates["spo2_data"] = appendSeriesExpr("spo2_data", spo2Points)
	}

	return b.db.Model(&models.MonitoringSession{}).
		Where("id = ?", sessionID).
		Updates(updates).Error
}

// RemoveSessionBuffer удаляет буфер завершенной сессии
func (b *VitalsBuffer) RemoveSessionBuffer(sessionID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.sessionBuffers[sessionID]; exists {
		// Финальный флаш перед удалением
		go b.flushSessionAsync(sessionID)
		delete(b.sessionBuffers, sessionID)
		log.Printf("Удален буфер сессии: %s", sessionID)
	}
}

// autoFlushWorker периодически флашит старые буферы
func (b *VitalsBuffer) autoFlushWorker() {
	defer b.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.flushOldBuffers()
		case <-b.ctx.Done():
			b.FlushAll()
			log.Println("Auto flush worker остановлен")
			return
		}
	}
}

// flushOldBuffers флашит буферы, которые давно не флашились
func (b *VitalsBuffer) flushOldBuffers() {
	b.mu.RLock()
	var sessionsToFlush []uuid.UUID

	for sessionID, sessionBuffer := range b.sessionBuffers {
		if time.Since(sessionBuffer.LastFlush) > 15*time.Second {
			sessionsToFlush = append(sessionsToFlush, sessionID)
		}
	}
	b.mu.RUnlock()

	for _, sessionID := range sessionsToFlush {
		go b.flushSessionAsync(sessionID)
	}
}

// Stop останавливает буфер
func (b *VitalsBuffer) Stop() {
	log.Println("Остановка Vitals Buffer...")
	b.cancel()
	b.wg.Wait()
	log.Println("Vitals Buffer остановлен")
}
