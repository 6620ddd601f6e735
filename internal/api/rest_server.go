package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/sky-quest/internal/game"
	"github.com/annel0/sky-quest/internal/hud"
	"github.com/annel0/sky-quest/internal/logging"
	"github.com/annel0/sky-quest/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName - имя сервиса для otelgin и префикса HTTP-метрик
const ServiceName = "skyquest_api"

// SnapshotSource отдает последний снимок игры
type SnapshotSource interface {
	Snapshot() *game.Snapshot
}

// Config содержит конфигурацию отладочного сервера
type Config struct {
	Addr        string                // адрес, например ":8088"
	Source      SnapshotSource        // источник снимков игры
	Diagnostics *hud.Diagnostics      // может быть nil
	Registerer  prometheus.Registerer // регистр HTTP-метрик
	Gatherer    prometheus.Gatherer   // источник для /metrics
	Logger      *logging.Logger       // может быть nil
}

// DebugServer - HTTP сервер только для чтения состояния игры
type DebugServer struct {
	router *gin.Engine
	server *http.Server
	source SnapshotSource
	diag   *hud.Diagnostics
	logger *logging.Logger
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SessionResponse - данные /api/session
type SessionResponse struct {
	Game    *game.Snapshot `json:"game"`
	HUD     hud.Snapshot   `json:"hud"`
	HUDText string         `json:"hud_text"`
}

// NewDebugServer создает отладочный сервер
func NewDebugServer(config Config) (*DebugServer, error) {
	if config.Addr == "" {
		config.Addr = ":8088"
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.NewRegistry()
	}
	if config.Gatherer == nil {
		if g, ok := config.Registerer.(prometheus.Gatherer); ok {
			config.Gatherer = g
		} else {
			config.Gatherer = prometheus.DefaultGatherer
		}
	}

	router := gin.New() // без стандартного logger
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw, err := middleware.NewPrometheusMiddleware(ServiceName, config.Registerer)
	if err != nil {
		return nil, err
	}
	router.Use(promMw.Handler())
	middleware.RegisterMetricsEndpoint(router, config.Gatherer)

	ds := &DebugServer{
		router: router,
		source: config.Source,
		diag:   config.Diagnostics,
		logger: config.Logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	ds.setupRoutes()
	return ds, nil
}

func (ds *DebugServer) setupRoutes() {
	ds.router.GET("/health", ds.handleHealth)

	api := ds.router.Group("/api")
	{
		api.GET("/session", ds.handleSession)
		api.GET("/world", ds.handleWorld)
	}
}

// Handler возвращает http.Handler сервера
func (ds *DebugServer) Handler() http.Handler {
	return ds.router
}

// Start запускает сервер и блокируется до Shutdown
func (ds *DebugServer) Start() error {
	ds.infof("🌐 Debug API слушает %s", ds.server.Addr)
	if err := ds.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown корректно останавливает сервер
func (ds *DebugServer) Shutdown(ctx context.Context) error {
	return ds.server.Shutdown(ctx)
}

func (ds *DebugServer) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"time":    time.Now().Unix(),
		"runtime": ReadRuntimeStats(),
	}
	if ds.diag != nil {
		resp["uptime"] = ds.diag.Uptime()
	}
	c.JSON(http.StatusOK, resp)
}

func (ds *DebugServer) handleSession(c *gin.Context) {
	snap := ds.snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Игра еще не запущена",
		})
		return
	}

	h := hud.Build(snap, ds.diag)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние сессии",
		Data: SessionResponse{
			Game:    snap,
			HUD:     h,
			HUDText: h.Text(),
		},
	})
}

func (ds *DebugServer) handleWorld(c *gin.Context) {
	snap := ds.snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Игра еще не запущена",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Текущий мир",
		Data:    snap.World,
	})
}

func (ds *DebugServer) snapshot() *game.Snapshot {
	if ds.source == nil {
		return nil
	}
	return ds.source.Snapshot()
}

func (ds *DebugServer) infof(format string, args ...interface{}) {
	if ds.logger != nil {
		ds.logger.Info(format, args...)
		return
	}
	logging.Info(format, args...)
}
