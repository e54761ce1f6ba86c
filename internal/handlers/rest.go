package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"vital_monitor/internal/device"
	"vital_monitor/internal/models"
	"vital_monitor/internal/processing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// testDeviceID идентификатор устройства в режиме симуляции
const testDeviceID = "TEST_MODE"

// RESTAPIServer обрабатывает REST API запросы
type RESTAPIServer struct {
	sessionManager *SessionManager
	processor      *processing.DataProcessor
	ingest         *MQTTIngest
	patients       *PatientService

	sourceMu   sync.Mutex
	dataSource string // "real" или "test"
	simulator  *device.Simulator
}

// SessionRequest запрос для создания сессии
type SessionRequest struct {
	CardID   string `json:"card_id" binding:"required"`   // UUID карты пациента
	DeviceID string `json:"device_id" binding:"required"` // Идентификатор устройства
}

// SessionResponse ответ с информацией о сессии
type SessionResponse struct {
	SessionID string     `json:"session_id"`
	CardID    string     `json:"card_id"`
	DeviceID  string     `json:"device_id"`
	Status    string     `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  int        `json:"duration"` // Продолжительность в секундах
}

// HealthResponse состояние сервиса
type HealthResponse struct {
	Status         string    `json:"status"`
	Service        string    `json:"service"`
	Timestamp      time.Time `json:"timestamp"`
	PipelineStatus string    `json:"pipeline_status"`
	ActiveSessions int       `json:"active_sessions"`
}

// DataSourceRequest запрос переключения источника данных
type DataSourceRequest struct {
	SourceType string `json:"source_type" binding:"required"` // "real" или "test"
}

// ErrorResponse стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRESTAPIServer создает новый REST API сервер
func NewRESTAPIServer(
	sessionManager *SessionManager,
	processor *processing.DataProcessor,
	ingest *MQTTIngest,
	patients *PatientService,
) *RESTAPIServer {
	return &RESTAPIServer{
		sessionManager: sessionManager,
		processor:      processor,
		ingest:         ingest,
		patients:       patients,
		dataSource:     "real",
	}
}

// SetupRoutes настраивает маршруты REST API
func (api *RESTAPIServer) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:80", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiGroup := r.Group("/api/v1")

	// === УПРАВЛЕНИЕ КОНВЕЙЕРОМ ===
	pipeline := apiGroup.Group("/pipeline")
	{
		pipeline.POST("/start", api.StartPipeline)
		pipeline.POST("/stop", api.StopPipeline)
		pipeline.GET("/status", api.PipelineStatus)
	}

	// === ДАННЫЕ ===
	data := apiGroup.Group("/data")
	{
		data.GET("/processed", api.GetProcessedData)
		data.GET("/raw", api.GetRawData)
		data.GET("/waveform", api.GetCompressedWaveform)
		data.GET("/statistics", api.GetStatistics)
		data.GET("/metrics", api.GetPerformanceMetrics)
	}

	// === ИСТОЧНИК ДАННЫХ ===
	apiGroup.GET("/source", api.GetDataSource)
	apiGroup.POST("/source", api.SetDataSource)

	// === УПРАВЛЕНИЕ СЕССИЯМИ ===
	sessions := apiGroup.Group("/sessions")
	{
		sessions.POST("/start", api.StartSession)
		sessions.POST("/stop/:session_id", api.StopSession)
		sessions.GET("/:session_id", api.GetSession)
	}

	// === КАРТЫ ПАЦИЕНТОВ ===
	patients := apiGroup.Group("/patients")
	{
		patients.GET("/:card_id", api.GetPatientCard)
		patients.POST("", api.SavePatientCard)
		patients.DELETE("/:card_id", api.DeletePatientCard)
		patients.GET("/:card_id/sessions", api.GetCardSessions)
	}

	// === МОНИТОРИНГ СЕРВИСА ===
	monitoring := apiGroup.Group("/monitoring")
	{
		monitoring.GET("/health", api.HealthCheck)
		monitoring.POST("/cleanup", api.CleanupSessions)
	}

	return r
}

// StartPipeline запускает конвейер обработки
func (api *RESTAPIServer) StartPipeline(c *gin.Context) {
	api.processor.Start()
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Конвейер обработки запущен",
		Data:    gin.H{"status": api.processor.Status().String()},
	})
}

// StopPipeline останавливает конвейер обработки.
// Остановка кооперативная: выборка в обработке дорабатывается до конца.
func (api *RESTAPIServer) StopPipeline(c *gin.Context) {
	api.processor.Stop()
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Конвейер обработки останавливается",
		Data:    gin.H{"status": api.processor.Status().String()},
	})
}

// PipelineStatus возвращает состояние конвейера
func (api *RESTAPIServer) PipelineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": api.processor.Status().String()})
}

// GetProcessedData возвращает последние обработанные выборки
func (api *RESTAPIServer) GetProcessedData(c *gin.Context) {
	count := parseCount(c, 100)
	data := api.processor.LatestProcessed(count)
	c.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
}

// GetRawData возвращает последние необработанные выборки из входной очереди
func (api *RESTAPIServer) GetRawData(c *gin.Context) {
	count := parseCount(c, 100)
	data := api.processor.LatestRaw(count)
	c.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
}

// GetCompressedWaveform возвращает текущий LTTB снимок кривой ЭКГ
func (api *RESTAPIServer) GetCompressedWaveform(c *gin.Context) {
	waveform := api.processor.CompressedWaveform()
	c.JSON(http.StatusOK, gin.H{"waveform": waveform, "count": len(waveform)})
}

// GetStatistics возвращает статистику по ЭКГ
func (api *RESTAPIServer) GetStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, api.processor.Statistics())
}

// GetPerformanceMetrics возвращает показатели производительности
func (api *RESTAPIServer) GetPerformanceMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, api.processor.PerformanceMetrics())
}

// GetDataSource возвращает текущий источник данных
func (api *RESTAPIServer) GetDataSource(c *gin.Context) {
	api.sourceMu.Lock()
	source := api.dataSource
	api.sourceMu.Unlock()
	c.JSON(http.StatusOK, gin.H{"source_type": source})
}

// SetDataSource переключает источник данных: реальное устройство или симулятор
func (api *RESTAPIServer) SetDataSource(c *gin.Context) {
	var req DataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Неверный формат данных",
			Details: err.Error(),
		})
		return
	}

	if req.SourceType != "real" && req.SourceType != "test" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Неверный тип источника, используйте 'real' или 'test'",
		})
		return
	}

	api.sourceMu.Lock()
	defer api.sourceMu.Unlock()

	if req.SourceType == api.dataSource {
		c.JSON(http.StatusOK, SuccessResponse{Message: "Источник данных не изменился"})
		return
	}

	// Останавливаем симулятор при переходе на реальное устройство
	if api.simulator != nil {
		api.simulator.Stop()
		api.simulator = nil
	}

	if req.SourceType == "test" {
		api.simulator = device.NewSimulator(api.processor.Submit)
		api.simulator.Start()
		api.ingest.SetCurrentDevice(testDeviceID)
	}

	api.dataSource = req.SourceType
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Источник данных переключен",
		Data:    gin.H{"source_type": req.SourceType},
	})
}

// StartSession запускает новую сессию мониторинга
func (api *RESTAPIServer) StartSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Неверный формат данных",
			Details: err.Error(),
		})
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Неверный ID карты пациента",
		})
		return
	}

	if activeSession := api.sessionManager.GetActiveSession(req.DeviceID); activeSession != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "Сессия для устройства уже активна",
			Details: "active_session_id: " + activeSession.ID.String(),
		})
		return
	}

	session, err := api.sessionManager.StartSession(cardID, req.DeviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Не удалось создать сессию",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Сессия успешно запущена",
		Data:    sessionResponse(session, "active"),
	})
}

// StopSession завершает активную сессию
func (api *RESTAPIServer) StopSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Неверный ID сессии",
		})
		return
	}

	session, err := api.sessionManager.StopSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Сессия не найдена или уже завершена",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Сессия успешно завершена",
		Data:    sessionResponse(session, "stopped"),
	})
}

// GetSession возвращает сессию по ID
func (api *RESTAPIServer) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Неверный ID сессии"})
		return
	}

	session, err := api.sessionManager.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Сессия не найдена"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetCardSessions возвращает сессии карты пациента
func (api *RESTAPIServer) GetCardSessions(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Неверный ID карты пациента"})
		return
	}

	sessions, err := api.sessionManager.GetSessionsByCardID(cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Не удалось загрузить сессии",
			Details: err.Error(),
		})
		return
	}

	responses := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		status := "active"
		if session.EndTime != nil {
			status = "stopped"
		}
		responses = append(responses, sessionResponse(session, status))
	}

	c.JSON(http.StatusOK, gin.H{"sessions": responses, "count": len(responses)})
}

// GetPatientCard возвращает карту пациента
func (api *RESTAPIServer) GetPatientCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Неверный ID карты пациента"})
		return
	}

	card, err := api.patients.GetCard(cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Не удалось загрузить карту пациента",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, card)
}

// SavePatientCard сохраняет карту пациента
func (api *RESTAPIServer) SavePatientCard(c *gin.Context) {
	var card models.PatientCard
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Неверный формат данных",
			Details: err.Error(),
		})
		return
	}

	if err := api.patients.SaveCard(&card); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Не удалось сохранить карту пациента",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Карта пациента сохранена",
		Data:    gin.H{"id": card.ID.String()},
	})
}

// DeletePatientCard удаляет карту пациента
func (api *RESTAPIServer) DeletePatientCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Неверный ID карты пациента"})
		return
	}

	if err := api.patients.DeleteCard(cardID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Не удалось удалить карту пациента",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Карта пациента удалена"})
}

// HealthCheck проверка здоровья сервиса
func (api *RESTAPIServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		Service:        "Vital Monitor",
		Timestamp:      time.Now().UTC(),
		PipelineStatus: api.processor.Status().String(),
		ActiveSessions: api.sessionManager.GetActiveSessionCount(),
	})
}

// CleanupSessions очистка зависших сессий
func (api *RESTAPIServer) CleanupSessions(c *gin.Context) {
	api.sessionManager.CleanupInactiveSessions()
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Очистка сессий выполнена",
		Data:    gin.H{"active_sessions": api.sessionManager.GetActiveSessionCount()},
	})
}

// StopSimulator останавливает симулятор при завершении работы сервиса
func (api *RESTAPIServer) StopSimulator() {
	api.sourceMu.Lock()
	defer api.sourceMu.Unlock()

	if api.simulator != nil {
		api.simulator.Stop()
		api.simulator = nil
	}
}

// parseCount разбирает параметр count с значением по умолчанию
func parseCount(c *gin.Context, defaultCount int) int {
	raw := c.Query("count")
	if raw == "" {
		return defaultCount
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		return defaultCount
	}
	return count
}

// sessionResponse собирает ответ из модели сессии
func sessionResponse(session *models.MonitoringSession, status string) SessionResponse {
	duration := int(time.Since(session.StartTime).Seconds())
	if session.EndTime != nil {
		duration = int(session.EndTime.Sub(session.StartTime).Seconds())
	}

	return SessionResponse{
		SessionID: session.ID.String(),
		CardID:    session.CardID.String(),
		DeviceID:  session.DeviceID,
		Status:    status,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		Duration:  duration,
	}
}
