package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wuauser/config"
	"wuauser/cron"
	"wuauser/database"
	"wuauser/database/repository"
	"wuauser/handlers"
	"wuauser/middleware"
	"wuauser/routes"
	"wuauser/services/appointment"
	"wuauser/services/notification"
	"wuauser/services/payment"
	"wuauser/services/pet"
	"wuauser/services/storage"
	"wuauser/services/tasks"
	"wuauser/services/vet"
	"wuauser/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76/client"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, _ := cfg.Location()
	offsets, _ := cfg.ReminderOffsetDurations()
	metrics := utils.NewMetrics()

	// Persistence.
	stores, mongoClient, redisClient := openStores(ctx, cfg, logger)
	if mongoClient != nil {
		defer mongoClient.Disconnect(context.Background())
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	logger.Info("Store selected", zap.String("backend", stores.Backend))

	if cfg.SeedFile != "" {
		data, err := repository.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logger.Fatal("main: failed to load seed file", zap.Error(err))
		}
		if err := stores.Seed(ctx, data); err != nil {
			logger.Fatal("main: failed to seed store", zap.Error(err))
		}
		logger.Info("Seeded store", zap.Int("vets", len(data.Vets)), zap.Int("services", len(data.Services)))
	}

	// Notifications.
	var notifier notification.NotificationService = notification.NewLogNotificationService(logger)
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := notification.NewFCMNotificationService(ctx, cfg.FirebaseCredentialsFile, logger)
		if err != nil {
			logger.Warn("main: FCM unavailable, notifications will only be logged", zap.Error(err))
		} else {
			notifier = fcm
		}
	}

	// Reminder queue.
	var reminders appointment.ReminderScheduler
	var worker *asynq.Server
	queueClient, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisReminderQueueDB)
	if err != nil {
		logger.Warn("main: Redis unreachable, reminders disabled", zap.Error(err))
		reminders = tasks.NewDisabledScheduler(logger)
	} else {
		_ = queueClient.Close()
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisReminderQueueDB}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		inspector := asynq.NewInspector(redisOpt)
		defer inspector.Close()

		reminders = tasks.NewReminderScheduler(asynqClient, inspector, logger, tasks.ReminderSchedulerOptions{
			Queue:    cfg.ReminderQueue,
			Offsets:  offsets,
			Location: loc,
			Metrics:  metrics,
		})

		handler := cron.NewReminderHandler(stores.Appointments, notifier, metrics, logger)
		worker, err = cron.StartReminderWorker(redisOpt, cfg.ReminderQueue, handler, logger)
		if err != nil {
			logger.Error("main: reminder worker not running", zap.Error(err))
		}
	}

	// Services.
	appointmentService := appointment.NewAppointmentService(stores, reminders, metrics, logger, appointment.Options{
		Location:     loc,
		ChangeWindow: cfg.CancellationWindow,
	})

	var intents payment.IntentCreator
	if cfg.StripeKey != "" {
		intents = client.New(cfg.StripeKey, nil).PaymentIntents
	} else {
		logger.Warn("main: STRIPE_KEY not set, payment intents disabled")
	}
	paymentService := payment.NewPaymentService(stores, appointmentService, intents, payment.Config{
		WebhookSecret:  cfg.StripeWebhookSecret,
		CommissionRate: cfg.PlatformCommissionRate,
		Currency:       cfg.Currency,
	}, metrics, logger)

	var photos storage.StorageService
	if cfg.CloudinaryURL != "" {
		cld, err := storage.NewCloudinaryStorageService(cfg.CloudinaryURL, logger)
		if err != nil {
			logger.Fatal("main: failed to initialize cloudinary storage service", zap.Error(err))
		}
		photos = cld
	}
	petService := pet.NewPetService(stores.Pets, photos, logger)
	vetService := vet.NewVetService(stores.Vets, stores.Services, logger)

	monitor := utils.NewHealthMonitor(redisClient, mongoClient, time.Minute, logger)
	monitor.Start(ctx)

	// HTTP.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("main: JWT_SECRET not set, authenticated endpoints will reject every request")
	}
	router := gin.New()
	router.MaxMultipartMemory = storage.MaxPhotoBytes
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.NewRateLimiter(cfg.MaxRequestsPerMin).Middleware(metrics, logger))

	handlerBundle := &handlers.HandlerBundle{
		Health:       handlers.NewHealthHandler(monitor, stores.Backend),
		Appointments: handlers.NewAppointmentHandler(appointmentService, logger),
		Vets:         handlers.NewVetHandler(vetService, logger),
		Payments:     handlers.NewPaymentHandler(paymentService, logger),
		Pets:         handlers.NewPetHandler(petService, logger),
		Metrics:      metrics.Handler(),
	}
	routes.RegisterRoutes(router, handlerBundle, middleware.JWTAuthMiddleware([]byte(cfg.JWTSecret), logger))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	logger.Info("main: server stopped gracefully")
}

// openStores picks the persistence backend once: Mongo when configured, otherwise the
// local store on Redis, or in memory when Redis is unreachable.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Stores, *mongo.Client, *redis.Client) {
	if cfg.UseMongo() {
		mongoClient, err := database.NewMongoClient(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		stores, err := repository.NewMongoStores(ctx, mongoClient.Database(cfg.DatabaseName))
		if err != nil {
			logger.Fatal("main: failed to prepare MongoDB collections", zap.Error(err))
		}
		return stores, mongoClient, nil
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisLocalDB)
	if err != nil {
		logger.Warn("main: Redis unreachable, local store kept in memory", zap.Error(err))
		return repository.NewLocalStores(database.NewMemoryKV()), nil, nil
	}
	return repository.NewLocalStores(database.NewRedisKV(redisClient)), nil, redisClient
}
