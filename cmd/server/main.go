package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	config "github.com/handyapp/gateway/configs"
	"github.com/handyapp/gateway/internal/application/services"
	"github.com/handyapp/gateway/internal/core/ports"
	"github.com/handyapp/gateway/internal/infrastructure/db"
	"github.com/handyapp/gateway/internal/infrastructure/health"
	"github.com/handyapp/gateway/internal/infrastructure/httpserver"
	"github.com/handyapp/gateway/internal/infrastructure/localcache"
	"github.com/handyapp/gateway/internal/infrastructure/push"
	"github.com/handyapp/gateway/internal/infrastructure/redis"
	"github.com/handyapp/gateway/internal/infrastructure/remotestore"
	"github.com/handyapp/gateway/internal/infrastructure/repositories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"instance":       cfg.Instance.ID,
		"remote_backend": cfg.RemoteStore.Backend,
		"cache_backend":  cfg.LocalCache.Backend,
		"channel":        cfg.Notification.Channel,
	}).Info("Starting gateway...")

	var healthCheckers []ports.HealthChecker

	var redisClient goredis.UniversalClient
	if cfg.UsesRedis() {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
		logger.Info("Connected to Redis successfully")
	}

	var baseStore ports.RemoteStore
	switch cfg.RemoteStore.Backend {
	case config.RemoteBackendPostgres:
		database, err := db.Open(&cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database:", err)
		}
		defer database.Close()
		if err := database.Migrate(cfg.RemoteStore.MigrationsPath); err != nil {
			logger.Fatal("Failed to run migrations:", err)
		}
		healthCheckers = append(healthCheckers, health.NewDBHealthChecker(database))
		baseStore = remotestore.NewPostgresStore(database.DB)
		logger.Info("Connected to database successfully")
	default:
		baseStore = remotestore.NewRedisStore(redisClient, cfg.RemoteStore.KVPrefix, cfg.RemoteStore.ServicePrefix)
	}
	remoteStore := remotestore.NewInstrumentedStore(baseStore, cfg.RemoteStore.Timeout, logger)

	var cache ports.Cache
	switch cfg.LocalCache.Backend {
	case config.CacheBackendRedis:
		cache = redis.NewSharedCache(redisClient, cfg.LocalCache.KeyPrefix)
	default:
		memCache, err := localcache.NewLRUCache(localcache.Config{MaxEntries: cfg.LocalCache.MaxEntries}, logger)
		if err != nil {
			logger.Fatal("Failed to create local cache:", err)
		}
		cache = memCache
	}

	var channel ports.NotificationChannel
	switch cfg.Notification.Channel {
	case config.ChannelFCM:
		channel = push.NewFCMChannel(push.FCMConfig{
			ServerKey: cfg.Notification.FCMServerKey,
			Endpoint:  cfg.Notification.FCMEndpoint,
		}, nil, logger)
	case config.ChannelSendGrid:
		channel = push.NewSendGridChannel(push.SendGridConfig{
			APIKey:    cfg.Notification.SendGridAPIKey,
			FromEmail: cfg.Notification.FromEmail,
			FromName:  cfg.Notification.FromName,
		}, logger)
	default:
		channel = push.NewLogChannel(logger)
	}

	cacheAside := services.NewCacheAsideService(remoteStore, cache, cfg.LocalCache.TTL, logger)
	directory := services.NewDirectoryService(remoteStore, logger)
	notifier := services.NewNotificationService(repositories.NewDeviceRegistry(), channel, cfg.Notification.DispatchTimeout, logger)

	var rateLimiter ports.RateLimiterService
	if cfg.RateLimit.Enabled {
		if redisClient == nil {
			logger.Warn("RATE_LIMIT_ENABLED is set but no Redis is configured; rate limiting disabled")
		} else {
			rateLimiter = services.NewRateLimiterService(
				repositories.NewRateLimitRedisRepository(redisClient),
				&services.RateLimiterConfig{
					RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
					BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
					Window:            cfg.RateLimit.Window,
					KeyPrefix:         cfg.RateLimit.KeyPrefix,
				},
				logger,
			)
		}
	}

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
		InstanceID:   cfg.Instance.ID,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		CacheAside:     cacheAside,
		Directory:      directory,
		Notification:   notifier,
		RateLimiter:    rateLimiter,
		HealthCheckers: healthCheckers,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := notifier.Close(ctx); err != nil {
		logger.WithError(err).Warn("Pending broadcasts abandoned")
	}

	logger.Info("Server exited")
}
