package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cardops/card-issuance-api/internal/cache"
	"github.com/cardops/card-issuance-api/internal/config"
	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/dao/memory"
	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/events"
	"github.com/cardops/card-issuance-api/internal/metrics"
	"github.com/cardops/card-issuance-api/internal/router"
	"github.com/cardops/card-issuance-api/internal/service"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Card Issuance API Server...")

	// CONFIG_PATH wins; otherwise configs/config.yaml is searched upwards
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	// handlers log through the standard logger
	logrus.SetFormatter(logger.Formatter)
	logrus.SetLevel(logger.GetLevel())

	logger.WithFields(logrus.Fields{
		"config_path": configPath,
		"log_level":   logger.GetLevel().String(),
		"storage":     cfg.Database.Type,
	}).Info("Configuration loaded successfully")

	m := metrics.New(prometheus.DefaultRegisterer)

	stores, healthCheck, closeStorage := initStorage(cfg, logger)
	defer closeStorage()

	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			logger.WithError(err).Fatal("Failed to configure Redis")
		}
		defer client.Close()
		stores.References = cache.NewStatusCache(stores.References, cache.NewRedisBackend(client),
			cfg.Redis.KeyPrefix, cfg.Redis.TTL, m, logger)
		logger.WithField("ttl", cfg.Redis.TTL).Info("Status cache enabled")
	}

	var publisher interface {
		service.EventPublisher
		Close() error
	} = events.NoopPublisher{}
	if cfg.Events.Enabled() {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Events), logger)
		logger.WithFields(logrus.Fields{
			"brokers": cfg.Events.Brokers,
			"topic":   cfg.Events.Topic,
		}).Info("Status events enabled")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close event publisher")
		}
	}()

	services := service.NewServices(service.Deps{
		Stores:       stores,
		Publisher:    publisher,
		Metrics:      m,
		Logger:       logger,
		DefaultActor: cfg.Issuance.DefaultActor,
	}, service.Options{
		CardExpiryYears:   cfg.Issuance.CardExpiryYears,
		ReportDefaultDays: cfg.Issuance.ReportDefaultDays,
	})

	routerOpts := router.Options{
		CORS:        cfg.CORS,
		HealthCheck: healthCheck,
		Logger:      logger,
	}
	if cfg.Metrics.Enabled {
		routerOpts.MetricsPath = cfg.Metrics.Path
		routerOpts.MetricsHandler = promhttp.Handler()
	}
	ginRouter := router.SetupRouter(services, routerOpts)

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddress(),
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("Starting HTTP server...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}
	logger.Info("Server exited gracefully")
}

// initStorage builds the stores for the configured backend
func initStorage(cfg *config.Config, logger *logrus.Logger) (service.Stores, func(context.Context) error, func()) {
	if cfg.Database.Type == config.DatabaseTypeMemory {
		store := memory.NewStore(memory.DefaultReferenceData())
		logger.Warn("Using in-memory storage; data is lost on restart")
		return service.Stores{
			Tx:           store,
			References:   store.References(),
			Sequences:    store,
			History:      store.History(),
			Clients:      store.Clients(),
			Applications: store.Applications(),
			Batches:      store.Batches(),
			Cards:        store.Cards(),
			Fees:         store.Fees(),
			Reports:      store.Reports(),
		}, nil, func() {}
	}

	db, err := database.Initialize(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}
	logger.Info("Database connection established successfully")

	stores := service.Stores{
		Tx:           db,
		References:   dao.NewReferenceDAO(db),
		Sequences:    dao.NewSequenceDAO(db),
		History:      dao.NewStatusHistoryDAO(db),
		Clients:      dao.NewClientDAO(db),
		Applications: dao.NewApplicationDAO(db),
		Batches:      dao.NewBatchDAO(db),
		Cards:        dao.NewCardDAO(db),
		Fees:         dao.NewFeeOperationDAO(db),
		Reports:      dao.NewReportDAO(db),
	}
	closeDB := func() {
		db.LogStats()
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}
	return stores, db.HealthCheck, closeDB
}
