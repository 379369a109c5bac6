package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/api/handlers"
	"github.com/domainping/domainping/internal/api/middleware"
	"github.com/domainping/domainping/internal/config"
	"github.com/domainping/domainping/internal/scheduler"
	"github.com/domainping/domainping/internal/storage/postgres"
)

type Server struct {
	Config *config.Config
	Router *gin.Engine
	DB     *postgres.DB

	domains       *postgres.DomainRepo
	notifications *postgres.NotificationRepo
	scheduler     *scheduler.Scheduler
	logger        *zap.Logger
}

func NewServer(cfg *config.Config, db *postgres.DB, domains *postgres.DomainRepo, notifications *postgres.NotificationRepo, sched *scheduler.Scheduler, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{
		Config:        cfg,
		Router:        router,
		DB:            db,
		domains:       domains,
		notifications: notifications,
		scheduler:     sched,
		logger:        logger,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Health and metrics
	healthHandler := handlers.NewHealthHandler(s.DB)
	s.Router.GET("/health", healthHandler.Health)
	s.Router.GET("/ready", healthHandler.Ready)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	authHandler := handlers.NewAuthHandler(s.Config.Auth)
	auth := s.Router.Group("/api/v1/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// API routes (protected)
	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.Config.Auth.JWTSecret))

	// Domain routes
	domainHandler := handlers.NewDomainHandler(s.domains, s.scheduler)
	{
		api.GET("/domains", domainHandler.ListDomains)
		api.POST("/domains", domainHandler.CreateDomain)
		api.GET("/domains/expiring", domainHandler.ListExpiring)
		api.GET("/domains/:id", domainHandler.GetDomain)
		api.PUT("/domains/:id", domainHandler.UpdateDomain)
		api.DELETE("/domains/:id", domainHandler.DeleteDomain)
		api.POST("/domains/:id/refresh", domainHandler.TriggerRefresh)
	}

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(s.notifications)
	{
		api.GET("/domains/:id/notifications", notificationHandler.ListByDomain)
		api.POST("/notifications/:id/cancel", notificationHandler.Cancel)
	}

	// Dashboard routes
	statsHandler := handlers.NewStatsHandler(s.domains, s.notifications)
	{
		api.GET("/dashboard/stats", statsHandler.GetOverview)
	}
}
