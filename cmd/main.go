package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"cropcare-service/internal/classifier"
	"cropcare-service/internal/config"
	"cropcare-service/internal/database/jsonstore"
	"cropcare-service/internal/database/minio"
	"cropcare-service/internal/database/redis"
	"cropcare-service/internal/event"
	"cropcare-service/internal/handlers"
	"cropcare-service/internal/metrics"
	"cropcare-service/internal/phone"
	"cropcare-service/internal/repository"
	"cropcare-service/internal/services"
	"cropcare-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func setupLogging(logDir string) (*os.File, error) {
	fmt.Println("Log directory:", logDir)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	if absPath, err := filepath.Abs(logFile); err == nil {
		fmt.Printf("Logging to %s\n", absPath)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	return file, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded, using process environment")
	}
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		fmt.Printf("Logging to stdout: %v\n", err)
	} else {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// record store
	store, err := jsonstore.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Error preparing data directory: %v", err)
	}
	userRepository := repository.NewUserRepository(store)
	reportRepository := repository.NewReportRepository(store)
	advisoryRepository := repository.NewAdvisoryRepository(store)

	appMetrics := metrics.New()

	// background work
	pool := worker.NewWorkingPool(cfg.EventWorkers, 256)
	var poolWg sync.WaitGroup
	poolWg.Add(1)
	go pool.Start(ctx, &poolWg)

	var publisher event.Publisher = event.LogPublisher{}
	if cfg.RabbitMQCfg.Enabled {
		conn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
		if err != nil {
			slog.Error("RabbitMQ unavailable, events will only be logged", "error", err)
		} else {
			defer conn.Close()
			publisher = event.NewRabbitPublisher(conn)
		}
	}
	dispatcher := event.NewAsyncDispatcher(pool, publisher)
	dispatcher.RecordWith(appMetrics)

	var cache services.Cache = services.NoopCache{}
	var throttle services.Throttle = services.NewMemoryThrottle()
	if cfg.RedisCfg.Enabled {
		redisClient, err := redis.NewRedisClient(cfg.RedisCfg)
		if err != nil {
			slog.Error("Redis unavailable, stats cache disabled and OTP throttle is in-process", "error", err)
		} else {
			defer redisClient.Close()
			cache = redis.NewJSONCache(redisClient)
			throttle = redis.NewThrottle(redisClient, "cropcare:otp:")
		}
	}

	var archive services.ImageArchive
	if cfg.MinioCfg.Enabled {
		minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
		if err != nil {
			slog.Error("MinIO unavailable, uploads stay local only", "error", err)
		} else {
			archive = minioClient
		}
	}

	// services
	dashboardService := services.NewDashboardService(reportRepository, cache)
	ingestionService := services.NewIngestionService(userRepository, reportRepository, dispatcher, dashboardService)
	ingestionService.RecordWith(appMetrics)
	imageClassifier := classifier.NewProcessClassifier(cfg.ClassifierCfg, classifier.DefaultCatalog())
	imageClassifier.ObserveWith(appMetrics)
	detectionService := services.NewDetectionService(imageClassifier, ingestionService, archive, pool)
	userService := services.NewUserService(userRepository)
	reportService := services.NewReportService(reportRepository, dashboardService)
	advisoryService := services.NewAdvisoryService(advisoryRepository, dispatcher)
	smsSender := phone.NewPhoneService(cfg.PhoneCfg.Host, cfg.PhoneCfg.Port, cfg.PhoneCfg.Username, cfg.PhoneCfg.Password)
	otpService := services.NewOTPService(smsSender, throttle)

	// handlers
	r := gin.Default()
	r.Use(handlers.NewCORSMiddleware(cfg.CORSAllowedOrigins))

	detectionHandler, err := handlers.NewDetectionHandler(detectionService, cfg.UploadDir)
	if err != nil {
		log.Fatalf("Error preparing upload directory: %v", err)
	}
	handlers.NewHealthHandler(ingestionService, publisher, appMetrics.Handler()).RegisterRoutes(r)
	detectionHandler.RegisterRoutes(r)
	handlers.NewUserHandler(userService).RegisterRoutes(r)
	handlers.NewOfficerHandler(reportService, advisoryService, dashboardService).RegisterRoutes(r)
	handlers.NewOTPHandler(otpService).RegisterRoutes(r)
	r.Static("/uploads", cfg.UploadDir)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Starting cropcare-service on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	poolWg.Wait()
	log.Println("Server stopped")
}
