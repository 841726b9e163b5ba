package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storefront/config"
	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/notification"
	"github.com/fekuna/omnipos-storefront/internal/pkg/broker"
	"github.com/fekuna/omnipos-storefront/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/search"
	"github.com/fekuna/omnipos-storefront/internal/pkg/storage"
	"github.com/fekuna/omnipos-storefront/internal/server"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/fekuna/omnipos-storefront/internal/task"
	"github.com/gin-gonic/gin"

	cartH "github.com/fekuna/omnipos-storefront/internal/cart/handler"
	cartRepoPkg "github.com/fekuna/omnipos-storefront/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-storefront/internal/cart/usecase"

	catH "github.com/fekuna/omnipos-storefront/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-storefront/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-storefront/internal/category/usecase"

	checkoutH "github.com/fekuna/omnipos-storefront/internal/checkout/handler"
	checkoutUCPkg "github.com/fekuna/omnipos-storefront/internal/checkout/usecase"

	feedbackH "github.com/fekuna/omnipos-storefront/internal/feedback/handler"
	feedbackUCPkg "github.com/fekuna/omnipos-storefront/internal/feedback/usecase"

	invH "github.com/fekuna/omnipos-storefront/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-storefront/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-storefront/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-storefront/internal/inventory/usecase"

	orderH "github.com/fekuna/omnipos-storefront/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-storefront/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-storefront/internal/order/usecase"

	prodH "github.com/fekuna/omnipos-storefront/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-storefront/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-storefront/internal/product/usecase"

	profileH "github.com/fekuna/omnipos-storefront/internal/profile/handler"
	profileRepoPkg "github.com/fekuna/omnipos-storefront/internal/profile/repository"
	profileUCPkg "github.com/fekuna/omnipos-storefront/internal/profile/usecase"

	reminderH "github.com/fekuna/omnipos-storefront/internal/reminder/handler"
	reminderRepoPkg "github.com/fekuna/omnipos-storefront/internal/reminder/repository"
	reminderUCPkg "github.com/fekuna/omnipos-storefront/internal/reminder/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Configuration and logger
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Database
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
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.AutoMigrate {
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
		appLogger.Info("Migrations applied", zap.Strings("files", applied))
	}
	txm := postgres.NewTxManager(db)

	// 3. Redis: cache, locks, sessions and the task queue
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	sessionTTL := time.Duration(cfg.Redis.SessionTTL) * time.Hour
	sessions := session.NewRedisStore(redisClient.Client, sessionTTL)
	queue := task.NewRedisQueue(redisClient.Client, cfg.Worker.QueueKey)

	// 4. Kafka
	stockConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.StockTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer stockConsumer.Close()

	orderEvents := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
	})
	defer orderEvents.Close()
	appLogger.Info("Kafka configured", zap.Strings("brokers", cfg.Kafka.Brokers))

	// 5. Elasticsearch and S3 are optional
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch, search falls back to the database", zap.Error(err))
		esClient = nil
	}

	var uploader storage.Uploader
	s3Uploader, err := storage.NewS3Uploader(ctx, &storage.Config{
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.Warn("Could not configure S3, image upload disabled", zap.Error(err))
	} else {
		uploader = s3Uploader
	}

	// 6. Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	cartRepo := cartRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	profileRepo := profileRepoPkg.NewPGRepository(db)
	reminderRepo := reminderRepoPkg.NewPGRepository(db)

	// 7. Use cases
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	bus := event.NewBus()

	catUC := catUCPkg.NewCategoryUseCase(catRepo, txm, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, catUC, txm, bus, redisClient, esClient, uploader, cfg.Shop.CatalogPageSize, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, txm, bus, redisClient, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodRepo, txm, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, cartUC, prodRepo, invUC, txm, orderEvents, cfg.Shop.HistoryPageSize, appLogger)
	profileUC := profileUCPkg.NewProfileUseCase(profileRepo, cartUC, tokens, txm, appLogger)
	reminderUC := reminderUCPkg.NewReminderUseCase(reminderRepo, prodRepo, appLogger)
	feedbackUC := feedbackUCPkg.NewFeedbackUseCase(profileUC, queue, appLogger)
	checkoutUC := checkoutUCPkg.NewCheckoutUseCase(cartUC, orderUC, profileUC, queue, checkoutUCPkg.Config{
		SiteName: cfg.Shop.SiteName,
		BaseURL:  cfg.Shop.BaseURL,
	}, appLogger)

	notification.NewEngine(cartUC, queue, cfg.Shop.BaseURL, appLogger).Subscribe(bus)

	// 8. Stock listener
	go invListenerPkg.NewStockListener(stockConsumer, invUC, appLogger).Start(ctx)

	// 9. HTTP
	if cfg.Server.AppEnv != "development" && cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Sessions:       sessions,
		Cookie:         session.CookieConfig{MaxAge: sessionTTL, Secure: cfg.Server.SecureCookies},
		Tokens:         tokens,
	}, server.Handlers{
		Category:  catH.NewCategoryHandler(catUC, appLogger),
		Product:   prodH.NewProductHandler(prodUC, appLogger),
		Inventory: invH.NewInventoryHandler(invUC, appLogger),
		Cart:      cartH.NewCartHandler(cartUC, appLogger),
		Checkout:  checkoutH.NewCheckoutHandler(checkoutUC, cartUC, appLogger),
		Order:     orderH.NewOrderHandler(orderUC, appLogger),
		Profile:   profileH.NewProfileHandler(profileUC, appLogger),
		Reminder:  reminderH.NewReminderHandler(reminderUC, appLogger),
		Feedback:  feedbackH.NewFeedbackHandler(feedbackUC, appLogger),
	}, appLogger)

	httpServer := &http.Server{
		Addr:              withColon(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 10. gRPC health
	lis, err := net.Listen("tcp", withColon(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("Failed to listen for gRPC", zap.Error(err))
	}
	grpcServer, healthServer := server.NewGRPCServer(appLogger)
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func withColon(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
