package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DeviceSample структура для отправки данных в JSON формате
type DeviceSample struct {
	ECG  int `json:"ecg"`
	SpO2 int `json:"spo2"`
	Temp int `json:"temp"`
}

var mqttClient mqtt.Client

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	fmt.Println("✓ Подключение к MQTT брокеру установлено")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	fmt.Printf("Соединение с MQTT брокером потеряно: %v\n", err)
}

func initMQTTClient(broker string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("vital-emulator-%d", time.Now().Unix()))
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler
	mqttClient = mqtt.NewClient(opts)
	if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("ошибка подключения к MQTT: %v", token.Error())
	}
	return nil
}

func publishMQTT(topic string, payload []byte) error {
	token := mqttClient.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("таймаут отправки MQTT")
	}
	return token.Error()
}

// generateSample генерирует одну выборку: синусоподобная ЭКГ с шумом,
// сатурация 95-100, температура 36.0-37.5 в десятых долях градуса
func generateSample(t float64) DeviceSample {
	ecgBase := math.Sin(t*5.0) * 500.0
	ecgNoise := rand.Float64()*100.0 - 50.0

	return DeviceSample{
		ECG:  int(ecgBase + ecgNoise),
		SpO2: 95 + rand.Intn(6),
		Temp: int((36.0 + rand.Float64()*1.5) * 10.0),
	}
}

// encodeRaw кодирует выборку в строку протокола датчиков
func encodeRaw(s DeviceSample) []byte {
	return []byte(fmt.Sprintf("A=%d,B=%d,C=%d", s.ECG, s.SpO2, s.Temp))
}

func main() {
	broker := flag.String("broker", "tcp://localhost:1883", "адрес MQTT брокера")
	deviceID := flag.String("device", "EMU-001", "идентификатор устройства")
	format := flag.String("format", "raw", "формат payload: raw или json")
	rate := flag.Int("rate", 250, "выборок в секунду")
	flag.Parse()

	if *format != "raw" && *format != "json" {
		log.Fatalf("Неизвестный формат: %s (ожидается raw или json)", *format)
	}

	if err := initMQTTClient(*broker); err != nil {
		log.Fatalf("%v", err)
	}
	defer mqttClient.Disconnect(250)

	topic := fmt.Sprintf("monitor/vitals/%s/%s", *deviceID, *format)
	interval := time.Second / time.Duration(*rate)

	log.Printf("Эмулятор запущен: устройство %s, топик %s, %d выборок/с",
		*deviceID, topic, *rate)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	start := time.Now()

	for {
		select {
		case <-sigChan:
			log.Printf("Эмулятор остановлен, отправлено %d выборок", sent)
			return
		case now := <-ticker.C:
			sample := generateSample(now.Sub(start).Seconds())

			var payload []byte
			if *format == "json" {
				payload, _ = json.Marshal(sample)
			} else {
				payload = encodeRaw(sample)
			}

			if err := publishMQTT(topic, payload); err != nil {
				log.Printf("Ошибка отправки: %v", err)
				continue
			}

			sent++
			if sent%1000 == 0 {
				log.Printf("Отправлено %d выборок", sent)
			}
		}
	}
}
