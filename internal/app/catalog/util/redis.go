package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"velora/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	// Ключи кеша справочных списков каталога
	CategoriesCacheKey = "catalog:categories"
	MaterialsCacheKey  = "catalog:materials"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// GetList возвращает кешированный список строк или nil при промахе
func (r *RedisClient) GetList(ctx context.Context, key string) ([]string, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		metrics.RecordRedisError("catalog-service", "get")
		return nil, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return values, nil
}

func (r *RedisClient) SetList(ctx context.Context, key string, values []string, ttl time.Duration) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.RecordRedisError("catalog-service", "set")
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}

	return nil
}

// Delete удаляет ключи кеша, отсутствующие ключи не считаются ошибкой
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordRedisError("catalog-service", "del")
		return fmt.Errorf("failed to delete keys from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
