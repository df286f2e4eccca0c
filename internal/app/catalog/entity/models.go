package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product представляет товар в каталоге
// Инвариант available_quantity <= total_quantity обеспечивается на стороне записи
type Product struct {
	ID                uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Slug              string            `json:"slug" gorm:"uniqueIndex"` // URL-safe идентификатор товара
	Name              string            `json:"name"`
	Price             float64           `json:"price"` // Цена в базовой валюте (USD)
	Images            []string          `json:"images" gorm:"serializer:json"`
	Material          string            `json:"material"`
	ColorCode         string            `json:"color_code"`
	ColorName         string            `json:"color_name"`
	AvailableQuantity int               `json:"available_quantity"`
	TotalQuantity     int               `json:"total_quantity"`
	IsActive          bool              `json:"is_active"` // Неактивные товары скрыты из всех публичных выборок
	CollectionID      *uuid.UUID        `json:"collection_id,omitempty" gorm:"type:uuid"`
	Collection        *Collection       `json:"collection,omitempty"`
	Description       string            `json:"description"`
	Instructions      []string          `json:"instructions" gorm:"serializer:json"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Categories        []ProductCategory `json:"categories,omitempty" gorm:"foreignKey:ProductID"`
}

// ProductCategory - связь товара с категорией (many-to-many)
// Категория - это просто строковая метка, отдельной сущности с ID нет
type ProductCategory struct {
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;primaryKey"`
	Category  string    `json:"category" gorm:"primaryKey"`
}

// Collection - временная подборка товаров
// Для каталога чисто информационная, особой логики выборки нет
type Collection struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CartItem - позиция корзины пользователя
// Каталог только читает корзину для персональных рекомендаций
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistItem - позиция вишлиста пользователя
type WishlistItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Order - заказ пользователя (читается для истории покупок)
type Order struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem - купленная позиция заказа
// Агрегация по order_items даёт рейтинг бестселлеров
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;index"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"` // Цена на момент покупки
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BestSellerRow - строка агрегации продаж по товару
type BestSellerRow struct {
	ProductID     uuid.UUID `json:"product_id"`
	TotalQuantity int64     `json:"total_quantity"`
}

// Review - отзыв на товар или событие, хранится в MongoDB
// product_id и event_id взаимоисключающие: отзыв привязан ровно к одному из них
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id,omitempty" bson:"product_id,omitempty"`
	EventID   string             `json:"event_id,omitempty" bson:"event_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	UserName  string             `json:"user_name" bson:"user_name"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	Text      string             `json:"text" bson:"text"`
	Images    []string           `json:"images" bson:"images"`
	LikedBy   []string           `json:"liked_by" bson:"liked_by"` // ID пользователей, лайкнувших отзыв
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProductRating - результат агрегации отзывов по товару
type ProductRating struct {
	ProductID string  `bson:"_id"`
	Average   float64 `bson:"average"`
	Count     int     `bson:"count"`
}

// ProductViewedEvent - событие просмотра карточки товара для Kafka
type ProductViewedEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_VIEWED
	ProductID uuid.UUID `json:"product_id"`
	Slug      string    `json:"slug"`
	Timestamp time.Time `json:"timestamp"`
}
