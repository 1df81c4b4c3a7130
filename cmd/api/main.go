package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizform/internal/adapter"
	"quizform/internal/cache"
	"quizform/internal/config"
	"quizform/internal/database"
	"quizform/internal/handler"
	"quizform/internal/logger"
	"quizform/internal/middleware"
	"quizform/internal/repository"
	"quizform/internal/service"
	"quizform/internal/util"
	"quizform/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	formRepository := repository.NewSQLXFormRepository(db)
	historyRepository := repository.NewSQLXHistoryRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Connection registry for the QR login relay
	registry := ws.NewMemoryRegistry()

	// Initialize services
	authService := service.NewAuthService(userRepository, cfg)
	pairingService := service.NewPairingService(authService, cacheAdapter, registry, cfg)
	formService := service.NewFormService(formRepository, historyRepository, txManager, util.RandomKeyIssuer{}, cfg)

	// Initialize handlers
	formHandler := handler.NewFormHandler(formService)
	authHandler := handler.NewAuthHandler(authService, pairingService, cfg)
	wsHandler := handler.NewWSHandler(pairingService, registry)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: true,
		MaxAge:           300,
	}))
	app.Use(recover.New())

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/login", middleware.Protected(authService), authHandler.LoginStatus)
	authGroup.Get("/logout", authHandler.Logout)
	authGroup.Post("/qrlogin", authHandler.QRRedeem)
	authGroup.Get("/qrlogin", authHandler.QRFinalize)

	// QR login relay websocket
	wsGroup := apiGroup.Group("/ws")
	wsGroup.Use("/qrlogin", wsHandler.Upgrade)
	wsGroup.Get("/qrlogin", wsHandler.QRLogin())

	// Form routes
	formGroup := apiGroup.Group("/form", middleware.Protected(authService))
	formGroup.Post("/upload", formHandler.UploadForm)
	formGroup.Get("/specify", formHandler.SpecifyForm)
	formGroup.Post("/verify", formHandler.VerifyForm)

	// Listing routes
	obtainGroup := apiGroup.Group("/obtain", middleware.Protected(authService))
	obtainGroup.Get("/forminformation", formHandler.FormInformation)
	obtainGroup.Get("/history", formHandler.History)
	obtainGroup.Get("/historydetails/:hid", formHandler.HistoryDetail)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		appLogger.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLogger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	appLogger.Info("Starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		appLogger.Fatal("Server stopped", zap.Error(err))
	}
}
