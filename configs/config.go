// configs/config.go
package configs

import (
	"os"
	"strconv"
)

// ECGSampleRateHz частота дискретизации ЭКГ, принятая во всех расчётах частоты пульса.
// RR-интервал всегда считается как 60/ЧСС (в секундах).
const ECGSampleRateHz = 250.0

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	MQTT     MQTTConfig
	NATS     NATSConfig
	Pipeline PipelineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

type AppConfig struct {
	Port     string // HTTP_PORT из .env
	LogLevel string
}

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      int
}

type NATSConfig struct {
	URL     string
	Subject string // Префикс сабжекта для публикации обработанных данных
}

// PipelineConfig параметры конвейера обработки сигналов
type PipelineConfig struct {
	LttbBufferSize      int
	LttbRatio           int
	EnableDynamicRange  bool
	RangeUpdateInterval uint64
	TempScaleFactor     float64
	TempOffset          float64
	TempMax             float64
	RoomTemperature     float64
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "vitals_user"),
			Password: getEnv("DB_PASSWORD", "vitals_password"),
			DBName:   getEnv("DB_NAME", "vital_monitor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "Europe/Moscow"),
		},
		App: AppConfig{
			Port:     getEnv("HTTP_PORT", "8080"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		MQTT: MQTTConfig{
			Broker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
			ClientID: getEnv("MQTT_CLIENT_ID", "vital_monitor_service"),
			Username: getEnv("MQTT_USERNAME", ""),
			Password: getEnv("MQTT_PASSWORD", ""),
			QoS:      getEnvAsInt("MQTT_QOS", 1),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://127.0.0.1:4222"),
			Subject: getEnv("NATS_SUBJECT", "monitor.processed"),
		},
		Pipeline: PipelineConfig{
			LttbBufferSize:      getEnvAsInt("LTTB_BUFFER_SIZE", 1000),
			LttbRatio:           getEnvAsInt("LTTB_COMPRESSION_RATIO", 10),
			EnableDynamicRange:  getEnvAsBool("LTTB_DYNAMIC_RANGE", true),
			RangeUpdateInterval: uint64(getEnvAsInt("LTTB_RANGE_INTERVAL", 500)),
			TempScaleFactor:     getEnvAsFloat("TEMP_SCALE_FACTOR", 0.8),
			TempOffset:          getEnvAsFloat("TEMP_OFFSET", 0.0),
			TempMax:             getEnvAsFloat("TEMP_MAX", 37.2),
			RoomTemperature:     getEnvAsFloat("ROOM_TEMPERATURE", 23.2),
		},
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает переменную окружения как int
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool получает переменную окружения как bool
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsFloat получает переменную окружения как float64
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
