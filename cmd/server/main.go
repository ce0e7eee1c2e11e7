package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scamshield-ai/scamshield/internal/alerts"
	"github.com/scamshield-ai/scamshield/internal/anomaly"
	"github.com/scamshield-ai/scamshield/internal/audit"
	"github.com/scamshield-ai/scamshield/internal/behavior"
	"github.com/scamshield-ai/scamshield/internal/content"
	"github.com/scamshield-ai/scamshield/internal/correlation"
	"github.com/scamshield-ai/scamshield/internal/enforcement"
	"github.com/scamshield-ai/scamshield/internal/graph"
	"github.com/scamshield-ai/scamshield/internal/reports"
	"github.com/scamshield-ai/scamshield/internal/threat"
	"github.com/scamshield-ai/scamshield/internal/users"
	"github.com/scamshield-ai/scamshield/pkg/common"
	"github.com/scamshield-ai/scamshield/pkg/config"
	"github.com/scamshield-ai/scamshield/pkg/database"
	"github.com/scamshield-ai/scamshield/pkg/eventbus"
	"github.com/scamshield-ai/scamshield/pkg/logger"
	"github.com/scamshield-ai/scamshield/pkg/middleware"
	"github.com/scamshield-ai/scamshield/pkg/redis"
	"github.com/scamshield-ai/scamshield/pkg/validation"
	"go.uber.org/zap"
)

const (
	serviceName        = "threat-pipeline"
	serviceVersion     = "1.0.0"
	enforcementLockTTL = 10 * time.Second
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting threat pipeline service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer database.Close(pool)

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		bus, err = eventbus.Connect(cfg.NATS.URL)
		if err != nil {
			logger.Fatal("failed to connect to nats", zap.Error(err))
		}
		defer bus.Close()
	} else {
		logger.Info("event bus disabled, pipeline events will not be published")
	}

	// Stores.
	reportRepo := reports.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	auditRepo := audit.NewRepository(pool)
	alertRepo := alerts.NewRepository(pool)

	// Engines. All pure; the report service applies their decisions.
	auditor := audit.NewWriter(auditRepo)
	history := reports.NewHistoryAdapter(reportRepo, auditRepo)

	scorer := content.NewScorer()
	correlator := correlation.NewEngine(reportRepo, cfg.Pipeline.CorrelationWindow, cfg.Pipeline.CorrelationLimit)
	profiler := behavior.NewAggregator(history)
	detector := anomaly.NewDetector(history, anomaly.Config{
		RateWindow:          cfg.Pipeline.AnomalyRateWindow,
		RateThreshold:       cfg.Pipeline.AnomalyRateThreshold,
		SuspiciousThreshold: cfg.Pipeline.AnomalySuspiciousThreshold,
	})
	orchestrator := threat.NewOrchestrator(scorer, correlator, profiler)

	alertTrigger := alerts.NewTrigger(alertRepo, auditor)
	locks := func(key string) enforcement.Locker {
		return redisClient.NewLock(key, enforcementLockTTL)
	}
	enforcer := enforcement.NewService(userRepo, auditor, locks, cfg.Pipeline.DedupeEnforcementAudit)

	var publisher reports.Publisher
	if bus != nil {
		publisher = bus
	}
	reportService := reports.NewService(reportRepo, userRepo, orchestrator, alertTrigger, detector, enforcer, auditor, publisher)

	// HTTP surface.
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.RegisterCustomValidators()

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.Server.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.ActingUserHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, serviceVersion, map[string]func() error{
		"postgres": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	admin := api.Group("/admin")

	reports.NewHandler(reportService).RegisterRoutes(api)
	alerts.NewHandler(alertRepo).RegisterRoutes(api)
	users.NewHandler(userRepo, profiler, detector).RegisterRoutes(api)
	enforcement.NewHandler(enforcer).RegisterRoutes(api, admin)
	graph.NewHandler(graph.NewBuilder(reportRepo, alertRepo)).RegisterRoutes(api)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()
	logger.Info("threat pipeline service listening", zap.String("addr", server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
