package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jirapat-s/ticketline/internal/handler"
	"github.com/jirapat-s/ticketline/internal/middleware"
	"github.com/jirapat-s/ticketline/internal/repository"
	"github.com/jirapat-s/ticketline/internal/service"
	"github.com/jirapat-s/ticketline/pkg/config"
	"github.com/jirapat-s/ticketline/pkg/database"
	"github.com/jirapat-s/ticketline/pkg/logger"
	pkgmiddleware "github.com/jirapat-s/ticketline/pkg/middleware"
	"github.com/jirapat-s/ticketline/pkg/redis"
	"github.com/jirapat-s/ticketline/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting ticketline...")

	ctx := context.Background()

	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Database
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Redis (optional, backs purchase idempotency)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(ctx, &redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			MaxRetries:   3,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
		}
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (%s)", cfg.Redis.Addr()))
	}

	// Kafka publisher (optional)
	var publisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Kafka connection failed: %v", err))
		}
		publisher = kafkaPublisher
		appLog.Info(fmt.Sprintf("Kafka publisher ready (topic: %s)", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	// The admin password is hashed once at startup so login never
	// touches the plaintext again
	adminPassword := cfg.Admin.Password
	if adminPassword == "" {
		adminPassword = "123"
		appLog.Warn("ADMIN_PASSWORD not set, using dev-only default (NEVER use in production)")
	}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to hash admin password: %v", err))
	}

	// Repositories
	userRepo := repository.NewPostgresUserRepository(db.Pool())
	eventRepo := repository.NewPostgresEventRepository(db.Pool())
	inventoryRepo := repository.NewPostgresInventoryRepository(db.Pool())
	bookingRepo := repository.NewPostgresBookingRepository(db.Pool())

	// Services
	authService := service.NewAuthService(userRepo, &service.AuthServiceConfig{
		JWTSecret:         cfg.JWT.Secret,
		TokenTTL:          cfg.JWT.AccessTokenTTL,
		AdminUsername:     cfg.Admin.Username,
		AdminPasswordHash: string(adminHash),
	})
	eventService := service.NewEventService(eventRepo)
	purchaseService := service.NewPurchaseService(inventoryRepo, bookingRepo, publisher, nil)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	eventHandler := handler.NewEventHandler(eventService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)

	healthDeps := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}
	healthHandler := handler.NewHealthHandler(healthDeps)

	// Router
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)

	router.GET("/events", eventHandler.List)
	router.GET("/events/:id", eventHandler.Get)

	authed := router.Group("")
	authed.Use(middleware.RequireAuth(authService))
	{
		authed.POST("/events", eventHandler.Create)
		authed.PATCH("/events/:id/review", eventHandler.AddReview)

		purchase := authed.Group("")
		if redisClient != nil {
			purchase.Use(pkgmiddleware.Idempotency(pkgmiddleware.DefaultIdempotencyConfig(redisClient)))
		}
		purchase.POST("/purchase/:id", purchaseHandler.Purchase)

		admin := authed.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.DELETE("/events/:id", eventHandler.Delete)
			admin.GET("/stats", eventHandler.Stats)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		appLog.Info(fmt.Sprintf("ticketline listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
