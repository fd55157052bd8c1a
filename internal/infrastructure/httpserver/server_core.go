package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/ports"
	customMiddleware "github.com/handyapp/gateway/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	InstanceID   string
}

type ServerDeps struct {
	CacheAside   ports.CacheAsideService
	Directory    ports.DirectoryService
	Notification ports.NotificationService
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter    ports.RateLimiterService
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo            *echo.Echo
	config          *ServerConfig
	logger          *logrus.Logger
	cacheAside      ports.CacheAsideService
	directory       ports.DirectoryService
	notificationSvc ports.NotificationService
	middleware      *customMiddleware.MiddlewareCollection
	healthCheckers  []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:            e,
		config:          serverConfig,
		logger:          logger,
		cacheAside:      deps.CacheAside,
		directory:       deps.Directory,
		notificationSvc: deps.Notification,
		healthCheckers:  deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiter,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}
	e.HTTPErrorHandler = server.handleError

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
