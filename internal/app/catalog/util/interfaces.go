package util

import (
	"context"
	"time"
)

// ListingCache интерфейс кеша справочных списков (категории, материалы)
// Используется для dependency injection и упрощения тестирования
type ListingCache interface {
	GetList(ctx context.Context, key string) ([]string, error)
	SetList(ctx context.Context, key string, values []string, ttl time.Duration) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
