package repository

import (
	"context"

	"velora/internal/app/catalog/entity"
	"velora/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository создает репозиторий покупательской активности
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// GetCartItems возвращает корзину пользователя с категориями товаров
func (r *activityRepository) GetCartItems(ctx context.Context, userID uuid.UUID) ([]entity.CartItem, error) {
	var items []entity.CartItem
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Product.Categories").
		Find(&items)

	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

// GetWishlistItems возвращает вишлист пользователя с категориями товаров
func (r *activityRepository) GetWishlistItems(ctx context.Context, userID uuid.UUID) ([]entity.WishlistItem, error) {
	var items []entity.WishlistItem
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Product.Categories").
		Find(&items)

	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

// GetRecentPurchases возвращает последние купленные позиции пользователя
// с категориями товаров, новые первыми
func (r *activityRepository) GetRecentPurchases(ctx context.Context, userID uuid.UUID, limit int) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	result := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ?", userID).
		Order("order_items.created_at DESC").
		Limit(limit).
		Preload("Product.Categories").
		Find(&items)

	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

// GetBestSellerRows агрегирует продажи по товарам
// Сумма количеств по order_items, сортировка по сумме убыв.
func (r *activityRepository) GetBestSellerRows(ctx context.Context, limit int) ([]entity.BestSellerRow, error) {
	timer := metrics.NewDbTimer("catalog-service", "best_sellers", "order_items")
	defer timer.ObserveDuration()

	var rows []entity.BestSellerRow
	result := r.db.WithContext(ctx).
		Model(&entity.OrderItem{}).
		Select("product_id, SUM(quantity) AS total_quantity").
		Group("product_id").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rows)

	if result.Error != nil {
		metrics.RecordDbError("catalog-service", "best_sellers")
		return nil, result.Error
	}

	return rows, nil
}
