package main

import (
	"fmt"
	"log"
	"net/http"

	"godeliver/internal/config"
	"godeliver/internal/handlers"
	"godeliver/internal/middleware"
	mongorepo "godeliver/internal/repositories/mongodb"
	"godeliver/internal/services"
	"godeliver/pkg/cache"
	"godeliver/pkg/database"
	"godeliver/pkg/logger"
	"godeliver/pkg/websocket"
	"godeliver/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
		Colors:     cfg.App.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	mongodb, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongodb.Close()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	rideRepo := mongorepo.NewRideRepository(mongodb.Database, redisCache)
	userRepo := mongorepo.NewUserRepository(mongodb.Database)

	// WebSocket hub and change notifications
	wsHandler := websocket.NewHandler(&websocket.Config{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		PingPeriod:      cfg.WebSocket.PingPeriod,
		PongWait:        cfg.WebSocket.PongWait,
		WriteWait:       cfg.WebSocket.WriteWait,
		AllowedOrigins:  cfg.Security.CORSAllowedOrigins,
	})
	notifier := services.NewWebsocketNotifier(wsHandler, appLogger)

	// Services
	assignment := services.NewAssignmentService(rideRepo, userRepo, notifier, appLogger)
	rideService := services.NewRideService(rideRepo, userRepo, assignment, notifier, appLogger)

	// Background dispatcher
	if cfg.Dispatch.Enabled {
		dispatcher := services.NewDispatchService(rideRepo, userRepo, assignment, cfg.Dispatch.Interval, appLogger)
		dispatcher.Start()
		appLogger.WithField("interval", cfg.Dispatch.Interval.String()).Info("dispatcher started")
	}

	// Handlers
	rideHandler := handlers.NewRideHandler(rideService)
	adminHandler := handlers.NewAdminRideHandler(rideService, assignment)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupRideRoutes(v1, cfg.Security.JWTSecret, rideHandler, adminHandler, wsHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.WithField("addr", addr).Info("starting server")
	if err := http.ListenAndServe(addr, router); err != nil {
		appLogger.WithError(err).Fatal("server stopped")
	}
}
