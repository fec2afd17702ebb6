package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"eterno-store/internal/ai"
	"eterno-store/internal/auth"
	"eterno-store/internal/config"
	"eterno-store/internal/database"
	"eterno-store/internal/events"
	"eterno-store/internal/export"
	"eterno-store/internal/handlers"
	"eterno-store/internal/middleware"
	"eterno-store/internal/pricing"
	"eterno-store/internal/reports"
	"eterno-store/internal/shop"
	"eterno-store/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	dotenvErr := config.LoadDotEnv()
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)
	if dotenvErr != nil {
		logger.Warn("No .env file found")
	}
	cfg.LogWarnings(logger)
	instance := utils.InstanceID()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if created, err := database.EnsureAdmin(db, cfg.SeedAdminPassword); err != nil {
		logger.WithError(err).Fatal("Failed to seed admin")
	} else if created {
		logger.WithField("username", "admin").Warn("Default admin account created, change its password")
	}
	if n, err := database.SeedSampleProducts(db); err != nil {
		logger.WithError(err).Warn("sample products not seeded")
	} else if n > 0 {
		logger.WithField("count", n).Info("seeded sample products")
	}

	rdb := database.ConnectRedis(cfg.RedisAddr, logger)
	var locker export.Locker = export.NewLocalLocker()
	if rdb != nil {
		locker = export.NewRedisLocker(rdb)
		defer rdb.Close()
	}

	f := reports.NewFormatter(cfg.CurrencySymbol, cfg.DisplayTimezone, cfg.DisplayTZSuffix)
	snapshot := export.NewSnapshotter(db, cfg.ExportPath, f, locker)

	sinks := []events.Sink{export.NewSnapshotSink(snapshot, logger)}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := events.NewKafkaSink(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		logger.WithField("topic", cfg.KafkaTopic).Info("publishing events to kafka")
	}
	bus := events.NewBus(logger, 0, sinks...)

	engine := pricing.NewEngine()
	engine.PWDSeniorRate = cfg.PWDSeniorRate
	engine.VoucherAmount = cfg.VoucherAmount
	engine.ShippingMin = cfg.ShippingFeeMin
	engine.ShippingMax = cfg.ShippingFeeMax
	shopSvc := shop.NewService(db, engine, bus)
	reportSvc := reports.NewService(db, f).WithPublisher(bus)
	agent := ai.NewAgent(cfg.GeminiAPIKey, ai.NewToolbox(shopSvc, reportSvc, f.Location))
	if !agent.Enabled() {
		logger.Warn("GEMINI_API_KEY not set, assistant disabled")
	}

	h := handlers.New(handlers.Deps{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Tokens:   auth.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		Shop:     shopSvc,
		Reports:  reportSvc,
		Snapshot: snapshot,
		Agent:    agent,
		Logger:   logger,
		Instance: instance,
	})

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handlers.RegisterRoutes(r, h)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithField("instance", instance).Info("🚀 Server starting on " + cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
	bus.Close()
}
