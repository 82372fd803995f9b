package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/spacevoyager/api"
	"github.com/Domenick1991/spacevoyager/config"
	"github.com/Domenick1991/spacevoyager/internal/bootstrap"
	"github.com/Domenick1991/spacevoyager/internal/cache"
	"github.com/Domenick1991/spacevoyager/internal/catalog"
	"github.com/Domenick1991/spacevoyager/internal/kafka"
	"github.com/Domenick1991/spacevoyager/internal/logging"
	"github.com/Domenick1991/spacevoyager/internal/repository"
	"github.com/Domenick1991/spacevoyager/internal/service/auth"
	"github.com/Domenick1991/spacevoyager/internal/service/booking"
	"github.com/Domenick1991/spacevoyager/internal/service/workflow"
	"github.com/Domenick1991/spacevoyager/internal/storage"
	"github.com/Domenick1991/spacevoyager/internal/ticket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig(config.ConfigPath())
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log)
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("open storage")
	}
	defer closeStore()
	logger.WithField("driver", cfg.Storage.Driver).Info("storage ready")

	var catalogCache catalog.Cache
	if cfg.Catalog.UseCache {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		catalogCache = cache.NewRedisCache(client, time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second)
	}
	var catalogFS fs.FS = catalog.DefaultFS()
	if cfg.Catalog.Dir != "" {
		catalogFS = os.DirFS(cfg.Catalog.Dir)
	}
	referenceData := catalog.NewStore(catalogFS, catalogCache, logger.WithField("component", "catalog"))
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.LoadTimeout())
		defer cancel()
		// Failures are logged by the store; the app keeps running with empty catalogs.
		_ = referenceData.Load(loadCtx)
	}()

	renderer, err := ticket.NewRenderer(referenceData)
	if err != nil {
		logger.WithError(err).Fatal("build ticket renderer")
	}

	users := repository.NewUserRepository(store)
	authService := auth.NewAuthService(users, repository.NewSessionRepository(store), logger.WithField("component", "auth"))

	bookingOpts := []booking.BookingServiceOption{
		booking.WithDefaults(cfg.Booking.DefaultDurationDays, cfg.Booking.Currency, cfg.Booking.ReferencePrefix),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger.WithField("component", "kafka"))
		defer producer.Close()
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := producer.CheckConnection(checkCtx); err != nil {
			logger.WithError(err).Warn("kafka is unreachable, booking events will be dropped until it recovers")
		}
		cancel()
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(store),
		users,
		authService,
		referenceData,
		logger.WithField("component", "booking"),
		bookingOpts...,
	)

	controller := workflow.NewController(
		referenceData,
		bookingService,
		authService,
		repository.NewDraftRepository(store),
		renderer,
		logger.WithField("component", "workflow"),
		workflow.WithLoadTimeout(cfg.Catalog.LoadTimeout()),
		workflow.WithNoticeTTL(cfg.Workflow.NoticeTTL()),
		workflow.WithCurrency(cfg.Booking.Currency),
	)
	if err := controller.Start(ctx); err != nil {
		logger.WithError(err).Error("start booking workflow")
	}

	router := api.NewRouter(api.Handlers{
		Catalog:  api.NewCatalogHandler(referenceData),
		Auth:     api.NewAuthHandler(authService),
		Bookings: api.NewBookingHandler(bookingService, renderer),
		Workflow: api.NewWorkflowHandler(controller),
	}, logger)

	autosave := func(ctx context.Context) {
		controller.RunAutosave(ctx, cfg.Workflow.AutosaveInterval())
	}
	if err := bootstrap.Run(ctx, cfg, router, logger, autosave); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
