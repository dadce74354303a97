package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/student-insights/api/handlers"
	"github.com/OldStager01/student-insights/api/middleware"
	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/internal/metrics"
	"github.com/OldStager01/student-insights/pkg/config"
	"github.com/OldStager01/student-insights/pkg/database"
	"github.com/OldStager01/student-insights/pkg/database/queries"
)

// predictRateLimit caps POST /api/v1/predict per client IP and minute.
const predictRateLimit = 30

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.APIConfig
	svc        *insights.Service
	db         *database.DB
	metrics    *metrics.Metrics
}

// NewServer builds the router. db and m may be nil: without a database the model
// run history is not served, without metrics /metrics is not mounted.
func NewServer(cfg config.APIConfig, mode string, svc *insights.Service, db *database.DB, m *metrics.Metrics) *Server {
	if mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		router:  gin.New(),
		config:  cfg,
		svc:     svc,
		db:      db,
		metrics: m,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(s.config.CORS)))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger(s.metrics))

	maxBody := s.config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	s.router.Use(middleware.RequestSizeLimit(maxBody))

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	var hc handlers.HealthChecker
	if s.db != nil {
		hc = s.db
	}

	healthHandler := handlers.NewHealthHandler(hc, s.svc)
	insightsHandler := handlers.NewInsightsHandler(s.svc)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	endpointLimits := middleware.NewEndpointRateLimiter()
	endpointLimits.AddEndpoint("/api/v1/predict", predictRateLimit, time.Minute)

	v1 := s.router.Group("/api/v1")
	v1.Use(endpointLimits.Middleware())
	{
		v1.GET("/filters", insightsHandler.Filters)
		v1.GET("/overview", insightsHandler.Overview)
		v1.GET("/distribution", insightsHandler.Distribution)
		v1.GET("/groups", insightsHandler.Groups)
		v1.GET("/summary", insightsHandler.Summary)
		v1.GET("/correlation", insightsHandler.Correlation)
		v1.GET("/absence", insightsHandler.Absence)
		v1.GET("/at-risk", insightsHandler.AtRisk)

		v1.POST("/predict", insightsHandler.Predict)
		v1.GET("/model", insightsHandler.Model)

		if s.db != nil {
			runsHandler := handlers.NewModelRunsHandler(queries.NewModelRunRepository(s.db.DB))
			v1.GET("/model/runs", runsHandler.Recent)
		}
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idle := s.config.IdleTimeout
	if idle == 0 {
		idle = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idle,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
