package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"velora/internal/app/catalog/config"
	"velora/internal/app/catalog/handler"
	"velora/internal/app/catalog/infrastructure/graphql"
	"velora/internal/app/catalog/repository"
	"velora/internal/app/catalog/service"
	"velora/internal/app/catalog/util"
	"velora/pkg/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	// Конфигурация загружается один раз и дальше не меняется:
	// режим каталога (local/remote) фиксируется на весь срок жизни процесса
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("catalog-service", cfg.LogLevel)

	var catalogService service.CatalogService

	if cfg.Catalog.Mode == config.ModeRemote {
		// === УДАЛЁННЫЙ РЕЖИМ ===
		// Все девять операций проксируются на удалённый GraphQL API,
		// локальные хранилища не поднимаются вовсе
		client := graphql.NewClient(cfg.Catalog.RemoteURL)
		catalogService = service.NewRemoteCatalogService(client)
		logger.Info().Str("remote_url", cfg.Catalog.RemoteURL).Msg("Catalog running in remote mode")
	} else {
		// === ЛОКАЛЬНЫЙ РЕЖИМ: POSTGRESQL ===
		db, err := connectDB(cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		logger.Info().Msg("Successfully connected to PostgreSQL")

		// === ПОДКЛЮЧЕНИЕ К MONGODB ===
		// MongoDB хранит отзывы; каталог агрегирует по ним рейтинги
		mongoClient, err := connectMongo(cfg.Mongo)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		}()
		logger.Info().Msg("Successfully connected to MongoDB")

		// === ПОДКЛЮЧЕНИЕ К REDIS ===
		// Redis кеширует справочные списки категорий и материалов
		redisClient, err := util.NewRedisClient(
			cfg.Redis.Address(),
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		logger.Info().Msg("Successfully connected to Redis")

		// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
		// События PRODUCT_VIEWED уходят в топик catalog_events
		kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		logger.Info().Msg("Successfully initialized Kafka producer")

		// === ИНИЦИАЛИЗАЦИЯ СЛОЯ РЕПОЗИТОРИЕВ ===
		productRepo := repository.NewProductRepository(db)
		activityRepo := repository.NewActivityRepository(db)
		reviewRepo := repository.NewReviewRepository(mongoClient.Database(cfg.Mongo.DBName))

		// === ИНИЦИАЛИЗАЦИЯ БИЗНЕС-ЛОГИКИ ===
		localService := service.NewLocalCatalogService(
			productRepo,
			activityRepo,
			reviewRepo,
			redisClient,
			kafkaProducer,
		)
		catalogService = localService

		// === ПРОГРЕВ КЕША ПО РАСПИСАНИЮ ===
		// Справочные списки перечитываются кроном, чтобы первый запрос
		// после истечения TTL не ходил в БД
		scheduler := cron.New()
		_, err = scheduler.AddFunc(cfg.Catalog.CacheWarmSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := localService.RefreshListings(ctx); err != nil {
				logger.Warn().Err(err).Msg("Listing cache warm-up failed")
			}
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to schedule cache warm-up")
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info().Str("schedule", cfg.Catalog.CacheWarmSchedule).Msg("Cache warm-up scheduled")

		logger.Info().Msg("Catalog running in local mode")
	}

	// === ИНИЦИАЛИЗАЦИЯ HTTP HANDLERS И МАРШРУТОВ ===
	catalogHandler := handler.NewCatalogHandler(catalogService)
	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	router := handler.SetupRoutes(catalogHandler, authMiddleware)

	// === НАСТРОЙКА HTTP СЕРВЕРА ===
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// === ЗАПУСК HTTP СЕРВЕРА ===
	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	// Ожидаем сигнала завершения (SIGINT или SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	// Даем серверу 30 секунд на завершение текущих запросов
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя GORM
// Использует retry logic с 10 попытками для устойчивости при запуске в Docker
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				// Настраиваем connection pool
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectMongo устанавливает соединение с MongoDB и проверяет его через ping
func connectMongo(cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}
