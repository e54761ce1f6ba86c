package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"vital_monitor/configs"
	"vital_monitor/internal/database"
	"vital_monitor/internal/handlers"
	"vital_monitor/internal/models"
	"vital_monitor/internal/processing"
)

func main() {
	log.Println(" === VITAL MONITOR (Stream Processing Architecture) ===")

	// 1. Загрузка конфигурации
	cfg := configs.LoadConfig()
	log.Printf("Конфигурация загружена: DB=%s:%s, MQTT=%s, NATS=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.MQTT.Broker, cfg.NATS.URL)

	// 2. Инициализация базы данных
	db, err := database.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Ошибка миграций: %v", err)
	}

	// 3. Создание основных компонентов
	vitalsBuffer := handlers.NewVitalsBuffer(db)
	sessionManager := handlers.NewSessionManager(db, vitalsBuffer)
	patientService := handlers.NewPatientService(db)

	// 4. Конвейер обработки сигналов
	processor := processing.NewDataProcessor(
		models.LttbConfig{
			BufferSize:          cfg.Pipeline.LttbBufferSize,
			CompressionRatio:    cfg.Pipeline.LttbRatio,
			EnableDynamicRange:  cfg.Pipeline.EnableDynamicRange,
			RangeUpdateInterval: cfg.Pipeline.RangeUpdateInterval,
		},
		models.TemperatureConfig{
			ScaleFactor:     cfg.Pipeline.TempScaleFactor,
			Offset:          cfg.Pipeline.TempOffset,
			MaxTemp:         cfg.Pipeline.TempMax,
			RoomTemperature: cfg.Pipeline.RoomTemperature,
		},
	)

	ingest := handlers.NewMQTTIngest(processor)

	// 5. NATS стример для живой раздачи обработанных данных.
	// Недоступный NATS не останавливает сервис: обработка и запись
	// в БД работают и без живых подписчиков.
	natsStreamer, err := handlers.NewNATSStreamer(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		log.Printf("Не удалось подключиться к NATS: %v", err)
		log.Println("Продолжаем работу без живого стриминга")
		natsStreamer = nil
	} else {
		defer natsStreamer.Stop()
	}

	// 6. Колбэк обработанных выборок: стриминг + запись в сессию
	processor.SetProcessedCallback(func(p models.ProcessedVitalSigns) {
		deviceID := ingest.CurrentDevice()
		if natsStreamer != nil {
			natsStreamer.PublishProcessed(deviceID, p)
		}
		sessionManager.RecordProcessed(deviceID, p)
	})

	// 7. Подписка на события конвейера
	eventSubID, eventCh := processor.Events().Subscribe(128)
	go func() {
		for event := range eventCh {
			switch event.Type {
			case processing.EventTemperatureAnomaly:
				log.Printf("⚠️ Аномалия температуры: измерено %.1f, подставлено %.1f",
					event.Fields["measured"], event.Fields["fallback"])
			case processing.EventCompressionFired:
				log.Printf("💾 LTTB сжатие: %.0f → %.0f точек",
					event.Fields["input_points"], event.Fields["output_points"])
			case processing.EventRangeUpdated:
				log.Printf("🔄 Диапазон нормализации обновлён: [%.1f, %.1f]",
					event.Fields["min"], event.Fields["max"])
			}

			if natsStreamer != nil {
				natsStreamer.PublishEvent(event)
			}
		}
	}()

	processor.Start()

	// 8. Инициализация MQTT клиента и подписка на устройства
	mqttClient, err := initMQTTWithAuth(cfg.MQTT)
	if err != nil {
		log.Fatalf("Ошибка MQTT: %v", err)
	}
	defer mqttClient.Disconnect(250)

	messageHandler := func(client mqtt.Client, msg mqtt.Message) {
		ingest.HandleIncomingMQTT(msg.Topic(), msg.Payload())
	}

	topic := "monitor/vitals/+/+" // Все устройства и форматы данных
	token := mqttClient.Subscribe(topic, byte(cfg.MQTT.QoS), messageHandler)
	if token.Wait() && token.Error() != nil {
		log.Fatalf("Ошибка подписки MQTT: %v", token.Error())
	}

	log.Printf("MQTT клиент подключён к %s, топик: %s", cfg.MQTT.Broker, topic)

	// 9. Запуск REST API сервера
	restAPI := handlers.NewRESTAPIServer(sessionManager, processor, ingest, patientService)
	router := restAPI.SetupRoutes()

	go func() {
		log.Printf("REST API Server запущен на :%s", cfg.App.Port)
		if err := http.ListenAndServe(":"+cfg.App.Port, router); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Ошибка HTTP сервера: %v", err)
		}
	}()

	log.Println("Сервис запущен → Ctrl+C для остановки")
	log.Println("Архитектура потокового процессинга:")
	log.Println("MQTT → Data Processor → NATS Stream")
	log.Println("Data Processor → Session Manager → Vitals Buffer → Database")
	log.Println("REST API → Processor / Session Manager / Patient Cards")

	// 10. Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Graceful shutdown...")

	// Остановка компонентов в обратном порядке
	restAPI.StopSimulator()
	processor.StopWait()
	processor.Events().Unsubscribe(eventSubID)
	vitalsBuffer.Stop()

	log.Println("Сервис полностью остановлен")
}

// initMQTTWithAuth инициализирует MQTT клиент с аутентификацией
func initMQTTWithAuth(mqttCfg configs.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(mqttCfg.Broker)
	opts.SetClientID(mqttCfg.ClientID)

	if mqttCfg.Username != "" && mqttCfg.Password != "" {
		opts.SetUsername(mqttCfg.Username)
		opts.SetPassword(mqttCfg.Password)
		log.Printf("MQTT аутентификация: пользователь %s", mqttCfg.Username)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.OnConnect = func(c mqtt.Client) {
		fmt.Println("MQTT подключен")
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Printf("MQTT соединение потеряно: %v", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT подключение не удалось: %w", token.Error())
	}

	return client, nil
}
