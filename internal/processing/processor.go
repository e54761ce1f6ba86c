package processing

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"vital_monitor/internal/models"
)

// Status состояние жизненного цикла конвейера
type Status int32

const (
	StatusStopped Status = iota
	StatusRunning
	StatusStopping
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Backoff при пустой очереди: короткая пауза первые несколько опросов,
// длинная — если данных нет давно
const (
	idleShortDelay      = 50 * time.Millisecond
	idleLongDelay       = 200 * time.Millisecond
	idleShortPollLimit  = 10
	performanceInterval = 5 * time.Second
)

// DataProcessor главный конвейер обработки жизненных показателей.
// Один фоновый воркер снимает сырые выборки с входной очереди,
// прогоняет их через фиксированную цепочку процессоров
// {температура, SpO2, ЭКГ, LTTB} и складывает результат
// в ограниченную историю.
type DataProcessor struct {
	rawQueue       *BoundedQueue[models.VitalSigns]
	processedQueue *BoundedQueue[models.ProcessedVitalSigns]

	// Каждое состояние под собственным мьютексом; ни одна операция
	// не держит больше одного замка одновременно
	ecgMu    sync.Mutex
	ecgState *EcgState

	tempMu     sync.Mutex
	tempFilter *TemperatureFilter

	lttbMu    sync.Mutex
	lttbState *LttbState

	events *EventBus

	status         atomic.Int32
	wg             sync.WaitGroup
	startTime      time.Time
	totalProcessed atomic.Uint64

	// Колбэк для каждой обработанной выборки (стриминг, запись сессий).
	// Устанавливается до Start.
	onProcessed func(models.ProcessedVitalSigns)
}

// NewDataProcessor создаёт конвейер с заданными конфигурациями
func NewDataProcessor(lttbCfg models.LttbConfig, tempCfg models.TemperatureConfig) *DataProcessor {
	events := NewEventBus()

	return &DataProcessor{
		rawQueue:       NewBoundedQueue[models.VitalSigns](QueueCapacity),
		processedQueue: NewBoundedQueue[models.ProcessedVitalSigns](QueueCapacity),
		ecgState:       NewEcgState(),
		tempFilter:     NewTemperatureFilter(tempCfg, events),
		lttbState:      NewLttbState(lttbCfg, events),
		events:         events,
		startTime:      time.Now(),
	}
}

// Events возвращает шину событий конвейера
func (p *DataProcessor) Events() *EventBus {
	return p.events
}

// SetProcessedCallback устанавливает колбэк обработанных выборок.
// Вызывать до Start.
func (p *DataProcessor) SetProcessedCallback(cb func(models.ProcessedVitalSigns)) {
	p.onProcessed = cb
}

// Submit кладёт сырую выборку во входную очередь.
// При переполнении молча вытесняется самая старая необработанная выборка.
func (p *DataProcessor) Submit(v models.VitalSigns) {
	p.rawQueue.Push(v)
}

// Status возвращает текущее состояние конвейера
func (p *DataProcessor) Status() Status {
	return Status(p.status.Load())
}

// Start запускает фоновый воркер. Повторный вызов на работающем
// конвейере ничего не делает.
func (p *DataProcessor) Start() {
	if !p.status.CompareAndSwap(int32(StatusStopped), int32(StatusRunning)) {
		return
	}

	p.startTime = time.Now()
	p.wg.Add(1)
	go p.run()
}

// Stop кооперативно сигнализирует воркеру остановиться.
// Не ждёт фактического завершения — выборка в обработке всегда
// дорабатывается до конца.
func (p *DataProcessor) Stop() {
	p.status.CompareAndSwap(int32(StatusRunning), int32(StatusStopping))
}

// StopWait останавливает воркер и дожидается его выхода
func (p *DataProcessor) StopWait() {
	p.Stop()
	p.wg.Wait()
}

// run основной цикл воркера
func (p *DataProcessor) run() {
	defer p.wg.Done()
	defer p.status.Store(int32(StatusStopped))

	log.Println("[DataProcessor] Конвейер обработки запущен (включая LTTB сжатие)")

	consecutiveEmpty := 0
	lastPerformanceLog := time.Now()

	for p.Status() == StatusRunning {
		raw, ok := p.rawQueue.PopFront()
		if !ok {
			consecutiveEmpty++
			// Адаптивный backoff: не жжём CPU на пустой очереди
			if consecutiveEmpty < idleShortPollLimit {
				time.Sleep(idleShortDelay)
			} else {
				time.Sleep(idleLongDelay)
			}
			continue
		}
		consecutiveEmpty = 0

		processed := p.processSample(raw)
		p.totalProcessed.Add(1)

		// Периодическая телеметрия производительности
		if time.Since(lastPerformanceLog) >= performanceInterval {
			p.lttbMu.Lock()
			rawLen := p.lttbState.RawBufferLen()
			compressedLen := p.lttbState.CompressedLen()
			p.lttbMu.Unlock()

			log.Printf("[DataProcessor] Статистика: обработано %d точек, LTTB буфер: %d, сжатых точек: %d",
				p.totalProcessed.Load(), rawLen, compressedLen)
			lastPerformanceLog = time.Now()
		}

		p.processedQueue.Push(processed)

		if p.onProcessed != nil {
			p.onProcessed(processed)
		}
	}

	log.Println("[DataProcessor] Конвейер обработки остановлен")
}

// processSample прогоняет одну выборку через все процессоры
// в фиксированном порядке: температура, SpO2, ЭКГ, LTTB
func (p *DataProcessor) processSample(raw models.VitalSigns) models.ProcessedVitalSigns {
	timestamp := uint64(time.Now().UnixMilli())

	p.tempMu.Lock()
	bodyTemperature := p.tempFilter.Process(raw.Temp)
	p.tempMu.Unlock()

	bloodOxygen := ValidateSpO2(raw.SpO2)

	p.ecgMu.Lock()
	heartRate, rrInterval := p.ecgState.Process(raw.ECG)
	p.ecgMu.Unlock()

	p.lttbMu.Lock()
	ecgNormalized, compressed := p.lttbState.Process(raw.ECG, timestamp)
	p.lttbMu.Unlock()

	return models.ProcessedVitalSigns{
		EcgRaw:            raw.ECG,
		EcgNormalized:     ecgNormalized,
		EcgLttbCompressed: compressed,
		BodyTemperature:   bodyTemperature,
		BloodOxygen:       bloodOxygen,
		HeartRate:         heartRate,
		RRInterval:        rrInterval,
		Timestamp:         timestamp,
	}
}

// LatestProcessed возвращает последние count обработанных выборок,
// самая свежая первой
func (p *DataProcessor) LatestProcessed(count int) []models.ProcessedVitalSigns {
	return p.processedQueue.Latest(count)
}

// LatestRaw возвращает последние count необработанных выборок из входной
// очереди (при работающем воркере очередь обычно почти пуста)
func (p *DataProcessor) LatestRaw(count int) []models.VitalSigns {
	return p.rawQueue.Latest(count)
}

// CompressedWaveform возвращает текущий LTTB снимок кривой ЭКГ
func (p *DataProcessor) CompressedWaveform() []models.LttbPoint {
	p.lttbMu.Lock()
	defer p.lttbMu.Unlock()
	return p.lttbState.CompressedSnapshot()
}

// Statistics возвращает сводную статистику по ЭКГ.
// Средняя/макс/мин ЧСС в минимальной реализации равны текущей.
func (p *DataProcessor) Statistics() models.EcgStatistics {
	p.ecgMu.Lock()
	heartRate := p.ecgState.LastHeartRate()
	rrInterval := p.ecgState.LastRRInterval()
	p.ecgMu.Unlock()

	p.lttbMu.Lock()
	rawLen := p.lttbState.RawBufferLen()
	compressedLen := p.lttbState.CompressedLen()
	p.lttbMu.Unlock()

	compressionEfficiency := 1.0
	if compressedLen > 0 {
		compressionEfficiency = float64(rawLen) / float64(compressedLen)
	}

	return models.EcgStatistics{
		CurrentHeartRate:      heartRate,
		AverageHeartRate:      heartRate, // упрощённая реализация
		MaxHeartRate:          heartRate,
		MinHeartRate:          heartRate,
		RRVariability:         rrInterval,
		SignalQuality:         85.0, // фиксированная оценка
		CompressionEfficiency: compressionEfficiency,
	}
}

// PerformanceMetrics возвращает показатели производительности конвейера
func (p *DataProcessor) PerformanceMetrics() models.PerformanceMetrics {
	totalProcessed := p.totalProcessed.Load()
	elapsed := time.Since(p.startTime).Seconds()

	processingRate := 0.0
	if elapsed > 0 {
		processingRate = float64(totalProcessed) / elapsed
	}

	p.lttbMu.Lock()
	rawLen := p.lttbState.RawBufferLen()
	compressedLen := p.lttbState.CompressedLen()
	p.lttbMu.Unlock()

	compressionRatioAchieved := 0.0
	if compressedLen > 0 && rawLen > 0 {
		compressionRatioAchieved = (1.0 - float64(compressedLen)/float64(rawLen)) * 100.0
	}

	return models.PerformanceMetrics{
		ProcessingRate:           processingRate,
		QueueLength:              p.processedQueue.Len(),
		CompressionRatioAchieved: compressionRatioAchieved,
	}
}
