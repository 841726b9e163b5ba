package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storefront/config"
	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/mailjob"
	"github.com/fekuna/omnipos-storefront/internal/pkg/broker"
	"github.com/fekuna/omnipos-storefront/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/mailer"
	"github.com/fekuna/omnipos-storefront/internal/task"

	cartRepoPkg "github.com/fekuna/omnipos-storefront/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-storefront/internal/cart/usecase"
	invRepoPkg "github.com/fekuna/omnipos-storefront/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-storefront/internal/inventory/usecase"
	orderRepoPkg "github.com/fekuna/omnipos-storefront/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-storefront/internal/order/usecase"
	prodRepoPkg "github.com/fekuna/omnipos-storefront/internal/product/repository"
	reminderRepoPkg "github.com/fekuna/omnipos-storefront/internal/reminder/repository"
	reminderUCPkg "github.com/fekuna/omnipos-storefront/internal/reminder/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	txm := postgres.NewTxManager(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)

	// Order lookups only: nothing here publishes stock or order events.
	cartUC := cartUCPkg.NewCartUseCase(cartRepoPkg.NewPGRepository(db), prodRepo, txm, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepoPkg.NewPGRepository(db), txm, event.NewBus(), redisClient, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepoPkg.NewPGRepository(db), cartUC, prodRepo, invUC, txm,
		broker.NopPublisher{}, cfg.Shop.HistoryPageSize, appLogger)
	reminderUC := reminderUCPkg.NewReminderUseCase(reminderRepoPkg.NewPGRepository(db), prodRepo, appLogger)

	mail := mailer.NewMailer(&mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})

	worker := task.NewWorker(task.NewRedisQueue(redisClient.Client, cfg.Worker.QueueKey), task.WorkerConfig{
		Concurrency: cfg.Worker.Concurrency,
		MaxAttempts: cfg.Worker.MaxAttempts,
	}, appLogger)
	mailjob.NewJobs(reminderUC, orderUC, mail, mailjob.Config{
		SiteName: cfg.Shop.SiteName,
		Managers: cfg.Shop.Managers,
	}, appLogger).Register(worker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Starting task worker",
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("queue", cfg.Worker.QueueKey),
	)
	worker.Run(ctx)
	appLogger.Info("Worker stopped")
}
