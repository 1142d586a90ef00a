package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/audit"
	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/config"
	"github.com/DeveloperForam/test-house-design/internal/handler"
	"github.com/DeveloperForam/test-house-design/internal/metrics"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
	"github.com/DeveloperForam/test-house-design/internal/repository"
	"github.com/DeveloperForam/test-house-design/internal/service"
	"github.com/DeveloperForam/test-house-design/internal/storage"
	"github.com/DeveloperForam/test-house-design/pkg/database"
	"github.com/DeveloperForam/test-house-design/pkg/logger"
	"github.com/DeveloperForam/test-house-design/pkg/middleware"
	"github.com/DeveloperForam/test-house-design/pkg/redis"
)

const serviceName = "house-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Must(logger.Options{
		Service:     serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	defer log.Sync()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		log.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH not set, logins will be refused")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	startupCtx, startupCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startupCancel()

	db, err := database.NewPostgresDB(startupCtx, cfg.DatabaseURL, database.DefaultPoolConfig)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(startupCtx, models.Schema...); err != nil {
		log.Fatal("failed to apply schema", zap.Error(err))
	}

	// Initialize Redis
	redisClient := redis.NewRedisClient(redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(startupCtx); err != nil {
		log.Warn("redis not reachable, cache and idempotency will fail until it is", zap.Error(err))
	}

	// Audit trail
	var (
		recorder audit.Recorder = audit.NewLogRecorder(log)
		events   audit.Reader
	)
	if cfg.MongoURI != "" {
		mongoRecorder, err := audit.NewMongoRecorder(startupCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatal("failed to connect to mongo", zap.Error(err))
		}
		defer mongoRecorder.Close(context.Background())
		recorder, events = mongoRecorder, mongoRecorder
	}
	trail := audit.NewTrail(recorder, log)

	store, err := storage.NewStore(cfg.UploadDir, cfg.MaxUploadMB<<20)
	if err != nil {
		log.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	parser := money.Parser{Max: money.Rupees(cfg.MaxAmountRupees)}

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db.DB)
	houseRepo := repository.NewHouseRepository(db.DB)
	bookingRepo := repository.NewBookingRepository(db.DB)
	paymentRepo := repository.NewPaymentRepository(db.DB)
	serviceRepo := repository.NewServiceRepository(db.DB)

	// Initialize services
	cache := service.NewSummaryCache(ctx, redisClient, log,
		time.Duration(cfg.SummaryCacheTTLSeconds)*time.Second, 30*time.Second)
	metrics.RegisterCacheSize(prometheus.DefaultRegisterer, cache.Size)
	bookings := booking.NewService(repository.NewBackend(houseRepo, bookingRepo, paymentRepo), log, cache, m, trail)
	authService := service.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret,
		time.Duration(cfg.TokenTTLHours)*time.Hour, redisClient, log)
	projectService := service.NewProjectService(projectRepo, parser, log)
	houseService := service.NewHouseService(houseRepo, trail, log)
	catalogService := service.NewCatalogService(serviceRepo, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	handlers := []registrar{
		handler.NewBookingHandler(bookings, cache, service.NewIdempotencyStore(redisClient, log), m, parser, log),
		handler.NewProjectHandler(projectService, houseService, store, log),
		handler.NewCatalogHandler(catalogService, store, log),
	}
	if events != nil {
		handlers = append(handlers, handler.NewAuditHandler(events, bookings, log))
	}

	// Setup router
	router := setupRouter(cfg, log, m, authHandler, handlers, readiness(db, redisClient))
	router.Static("/uploads", store.Root())

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

type registrar interface {
	Register(api *gin.RouterGroup, auth gin.HandlerFunc)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// readiness reports the first dependency that does not answer.
func readiness(db pinger, cache redisPinger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := cache.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
}

func setupRouter(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	auth *handler.AuthHandler,
	handlers []registrar,
	ready func(ctx context.Context) error,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadMB << 20

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.Origins()))
	router.Use(middleware.RateLimiter(cfg.MaxRequestsPerMin, log))
	router.Use(m.Middleware())

	// Health checks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			log.Warn("not ready", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	auth.Register(api)
	for _, h := range handlers {
		h.Register(api, auth.RequireAuth())
	}

	return router
}
