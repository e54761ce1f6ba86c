// internal/database/migrations.go
package database

import (
	"fmt"
	"log"

	"vital_monitor/internal/models"

	"gorm.io/gorm"
)

// RunMigrations выполняет миграции базы данных
func RunMigrations(db *gorm.DB) error {
	log.Println("🔄 Запуск миграций базы данных...")

	// Автоматические миграции GORM
	err := db.AutoMigrate(
		&models.MonitoringSession{},
		&models.PatientCard{},
	)
	if err != nil {
		return fmt.Errorf("ошибка миграции: %w", err)
	}

	// Создаем индексы для оптимизации запросов
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("ошибка создания индексов: %w", err)
	}

	log.Println("✅ Миграции выполнены успешно")
	return nil
}

// createIndexes создает дополнительные индексы
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Быстрый поиск активной сессии устройства
		"CREATE INDEX IF NOT EXISTS idx_sessions_device_active ON monitoring_sessions(device_id, end_time) WHERE end_time IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_sessions_start_time_desc ON monitoring_sessions(start_time DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_card_device ON monitoring_sessions(card_id, device_id)",

		// GIN индексы для JSONB временных рядов
		"CREATE INDEX IF NOT EXISTS idx_sessions_hr_gin ON monitoring_sessions USING GIN (hr_data)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_temp_gin ON monitoring_sessions USING GIN (temp_data)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Не удалось создать индекс: %s, ошибка: %v", indexSQL, err)
		}
	}

	return nil
}
