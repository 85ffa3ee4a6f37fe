package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"agritrace-backend/internal/ai/gemini"
	"agritrace-backend/internal/config"
	"agritrace-backend/internal/database/minio"
	"agritrace-backend/internal/database/postgres"
	"agritrace-backend/internal/database/redis"
	"agritrace-backend/internal/event"
	"agritrace-backend/internal/handlers"
	"agritrace-backend/internal/repository"
	"agritrace-backend/internal/services"
)

func setupLogging() *os.File {
	logDir := "log"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Failed to create log directory: %v", err)
		return nil
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("agritrace-%s.log", time.Now().Format("2006-01-02")))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
		return nil
	}

	multi := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multi)
	slog.SetDefault(slog.New(slog.NewJSONHandler(multi, nil)))
	return logFile
}

func main() {
	logFile := setupLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	cfg := config.New()

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		postgres.DBStatus = false
		log.Printf("Failed to connect to PostgreSQL: %v, starting retry loop", err)
		go postgres.RetryConnectOnFailed(10*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.Connect(cfg.RedisCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		log.Printf("Failed to connect to MinIO, photo uploads disabled: %v", err)
		minioClient = nil
	}

	// The broker is optional: status events degrade to no-ops without it.
	var publisher *event.StatusPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Printf("Failed to connect to RabbitMQ, status events disabled: %v", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewStatusPublisher(rabbitConn)
	}

	geminiClients := make([]gemini.GeminiClient, 0, len(cfg.GeminiAPICfg.APIKeys))
	for _, key := range cfg.GeminiAPICfg.APIKeys {
		client, err := gemini.NewGenAIClient(key, cfg.GeminiAPICfg.FlashName)
		if err != nil {
			log.Printf("Failed to init Gemini client: %v", err)
			continue
		}
		geminiClients = append(geminiClients, *client)
	}
	selector := gemini.NewGeminiClientSelector(geminiClients)
	slog.Info("Gemini clients initialized", "count", len(geminiClients))

	profileRepo := repository.NewProfileRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	transportRepo := repository.NewTransportLogRepository(db)
	receiptRepo := repository.NewVendorReceiptRepository(db)
	envRepo := repository.NewEnvironmentalDataRepository(db)
	analysisRepo := repository.NewAIAnalysisRepository(db)
	photoRepo := repository.NewBatchPhotoRepository(db)

	jwtService := services.NewJWTService(cfg.AuthCfg.JWTSecret)
	sessionService := services.NewSessionService(redisClient)
	userService := services.NewUserService(profileRepo, jwtService, sessionService)
	weatherService := services.NewWeatherService(cfg.WeatherCfg)
	envService := services.NewEnvironmentService(weatherService, envRepo)
	routeService := services.NewRouteService(cfg.RoutingCfg)
	analysisService := services.NewAnalysisService(batchRepo, transportRepo, receiptRepo, envRepo, analysisRepo, selector)
	batchService := services.NewBatchService(
		batchRepo, transportRepo, receiptRepo, envRepo, analysisRepo, photoRepo,
		envService, analysisService, publisher, minioClient, cfg.MinioCfg.MinioResourceURL,
	)

	authMiddleware := handlers.NewAuthMiddleware(jwtService, sessionService)
	authHandler := handlers.NewAuthHandler(userService)
	batchHandler := handlers.NewBatchHandler(batchService)
	envHandler := handlers.NewEnvironmentHandler(batchService)
	routeHandler := handlers.NewRouteHandler(routeService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)

	router := gin.Default()
	router.Use(handlers.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "database": postgres.DBStatus})
	})

	api := router.Group("/api/v1")
	authHandler.RegisterRoutes(api, authMiddleware)
	batchHandler.RegisterRoutes(api, authMiddleware)
	envHandler.RegisterRoutes(api, authMiddleware)
	routeHandler.RegisterRoutes(api, authMiddleware)
	analysisHandler.RegisterRoutes(api, authMiddleware)

	slog.Info("Starting AgriTrace backend", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
