package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Режимы работы каталога
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config содержит все настройки Catalog Service
// Загружается один раз при старте и дальше не меняется
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Catalog  CatalogConfig
	LogLevel string
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Товары, категории, коллекции, корзины, вишлисты и заказы
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MongoConfig - настройки MongoDB для хранения отзывов
type MongoConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig - настройки Redis для кеширования справочных списков
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий каталога
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// JWTConfig - секрет для разбора опциональных токенов персонализации
type JWTConfig struct {
	Secret string
}

// CatalogConfig - выбор реализации каталога
// Mode=local обслуживает запросы из хранилищ напрямую,
// Mode=remote проксирует их на удалённый GraphQL API
type CatalogConfig struct {
	Mode      string
	RemoteURL string
	// CacheWarmSchedule - cron-расписание прогрева кеша справочных списков
	CacheWarmSchedule string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	mode := getEnv("CATALOG_MODE", ModeLocal)
	if mode != ModeLocal && mode != ModeRemote {
		return nil, fmt.Errorf("invalid CATALOG_MODE value: %s", mode)
	}

	remoteURL := getEnv("CATALOG_REMOTE_URL", "")
	if mode == ModeRemote && remoteURL == "" {
		return nil, fmt.Errorf("CATALOG_REMOTE_URL is required in remote mode")
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8082"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "velora"),
			Password: getEnv("DB_PASSWORD", "velora"),
			DBName:   getEnv("DB_NAME", "catalog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			User:     getEnv("MONGO_USER", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			DBName:   getEnv("MONGO_DB", "reviews"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Catalog: CatalogConfig{
			Mode:              mode,
			RemoteURL:         remoteURL,
			CacheWarmSchedule: getEnv("CACHE_WARM_SCHEDULE", "@hourly"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URI возвращает строку подключения к MongoDB
func (c *MongoConfig) URI() string {
	if c.User != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s", c.User, c.Password, c.Host, c.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s", c.Host, c.Port)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
