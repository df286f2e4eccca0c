package repository

import (
	"context"
	"errors"

	"velora/internal/app/catalog/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository - выборки товаров из PostgreSQL
type ProductRepository interface {
	// List возвращает страницу товаров по фильтру с сортировкой и пагинацией
	List(ctx context.Context, filter entity.CatalogFilter) ([]entity.Product, error)
	// Count возвращает размер отфильтрованной популяции
	Count(ctx context.Context, filter entity.CatalogFilter) (int64, error)
	// ListPrices возвращает цены популяции с фильтрами категории/материала/поиска,
	// но БЕЗ ценовых границ - по ним строится диапазон и гистограмма
	ListPrices(ctx context.Context, filter entity.CatalogFilter) ([]float64, error)
	// DistinctCategories возвращает все категории активных товаров без учёта фильтров
	DistinctCategories(ctx context.Context) ([]string, error)
	// DistinctMaterials возвращает все материалы активных товаров без учёта фильтров
	DistinctMaterials(ctx context.Context) ([]string, error)

	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// ListFeatured - самые свежие активные товары в наличии
	ListFeatured(ctx context.Context, limit int) ([]entity.Product, error)
	// ListEligibleByIDs - активные товары в наличии из списка ID, порядок не гарантирован
	ListEligibleByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	// ListByAffinity - активные товары в наличии из заданных категорий, кроме исключённых ID
	ListByAffinity(ctx context.Context, categories []string, exclude []uuid.UUID, limit int) ([]entity.Product, error)
	// ListRelated - активные товары категории, кроме самого товара (наличие не требуется)
	ListRelated(ctx context.Context, category string, exclude uuid.UUID, limit int) ([]entity.Product, error)
}

// ActivityRepository - покупательская активность (корзина, вишлист, покупки)
// Каталог эти таблицы только читает, запись принадлежит другим сервисам
type ActivityRepository interface {
	GetCartItems(ctx context.Context, userID uuid.UUID) ([]entity.CartItem, error)
	GetWishlistItems(ctx context.Context, userID uuid.UUID) ([]entity.WishlistItem, error)
	GetRecentPurchases(ctx context.Context, userID uuid.UUID, limit int) ([]entity.OrderItem, error)
	// GetBestSellerRows агрегирует продажи по товарам, сортировка по количеству убыв.
	GetBestSellerRows(ctx context.Context, limit int) ([]entity.BestSellerRow, error)
}

// ReviewRepository - отзывы в MongoDB
type ReviewRepository interface {
	// GetRecentByProduct возвращает последние отзывы товара, новые первыми
	GetRecentByProduct(ctx context.Context, productID string, limit int) ([]entity.Review, error)
	// GetRatings возвращает средний рейтинг и число отзывов по каждому товару из списка
	GetRatings(ctx context.Context, productIDs []string) (map[string]entity.ProductRating, error)
}
