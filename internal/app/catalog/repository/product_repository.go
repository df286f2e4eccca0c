package repository

import (
	"context"
	"errors"

	"velora/internal/app/catalog/entity"
	"velora/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// filtered строит базовый запрос по активным товарам с применёнными фильтрами
// withPrice управляет тем, накладываются ли ценовые границы:
// выборка для гистограммы строится по популяции без них
func (r *productRepository) filtered(ctx context.Context, f entity.CatalogFilter, withPrice bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&entity.Product{}).Where("products.is_active = ?", true)

	if f.HasCategory() {
		q = q.Where(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = products.id AND LOWER(pc.category) = LOWER(?))",
			f.Category,
		)
	}

	if len(f.Materials) > 0 {
		q = q.Where("products.material IN ?", f.Materials)
	}

	if f.Search != "" {
		q = q.Where("products.name ILIKE ?", "%"+f.Search+"%")
	}

	if withPrice {
		if f.MinPrice != nil {
			q = q.Where("products.price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("products.price <= ?", *f.MaxPrice)
		}
	}

	return q
}

// orderClause возвращает ORDER BY для ключа сортировки
// Первичный порядок всегда "сначала в наличии" (available_quantity убыв.)
func orderClause(sort string) string {
	switch sort {
	case entity.SortPriceLowToHigh:
		return "available_quantity DESC, price ASC"
	case entity.SortPriceHighToLow:
		return "available_quantity DESC, price DESC"
	case entity.SortNew:
		return "available_quantity DESC, created_at DESC"
	default:
		// featured и нераспознанные ключи
		return "available_quantity DESC, created_at DESC"
	}
}

// List возвращает страницу товаров по фильтру
// Страница за пределами выборки - это пустой результат, не ошибка
func (r *productRepository) List(ctx context.Context, filter entity.CatalogFilter) ([]entity.Product, error) {
	f := filter.Normalized()
	offset := (f.Page - 1) * f.Limit

	timer := metrics.NewDbTimer("catalog-service", "list", "products")
	defer timer.ObserveDuration()

	var products []entity.Product
	result := r.filtered(ctx, f, true).
		Order(orderClause(f.Sort)).
		Offset(offset).
		Limit(f.Limit).
		Preload("Categories").
		Find(&products)

	if result.Error != nil {
		metrics.RecordDbError("catalog-service", "list")
		return nil, result.Error
	}

	return products, nil
}

// Count возвращает общее число товаров, попадающих под фильтр
func (r *productRepository) Count(ctx context.Context, filter entity.CatalogFilter) (int64, error) {
	var total int64
	result := r.filtered(ctx, filter, true).Count(&total)

	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}

// ListPrices возвращает цены популяции без учёта ценовых границ фильтра
func (r *productRepository) ListPrices(ctx context.Context, filter entity.CatalogFilter) ([]float64, error) {
	var prices []float64
	result := r.filtered(ctx, filter, false).Pluck("products.price", &prices)

	if result.Error != nil {
		return nil, result.Error
	}

	return prices, nil
}

// DistinctCategories возвращает все категории активных товаров
func (r *productRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	result := r.db.WithContext(ctx).
		Model(&entity.ProductCategory{}).
		Joins("JOIN products ON products.id = product_categories.product_id").
		Where("products.is_active = ?", true).
		Distinct("product_categories.category").
		Order("product_categories.category ASC").
		Pluck("product_categories.category", &categories)

	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// DistinctMaterials возвращает все материалы активных товаров
func (r *productRepository) DistinctMaterials(ctx context.Context) ([]string, error) {
	var materials []string
	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("is_active = ? AND material <> ''", true).
		Distinct("material").
		Order("material ASC").
		Pluck("material", &materials)

	if result.Error != nil {
		return nil, result.Error
	}

	return materials, nil
}

// GetBySlug получает товар по slug с категориями и коллекцией
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Collection").
		First(&product, "slug = ?", slug)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetByID получает товар по ID с категориями и коллекцией
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Collection").
		First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// ListFeatured - самые свежие активные товары в наличии
func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND available_quantity > 0", true).
		Order("created_at DESC").
		Limit(limit).
		Preload("Categories").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// ListEligibleByIDs - активные товары в наличии из списка ID
// Порядок строк не гарантирован: вызывающая сторона переупорядочивает сама
func (r *productRepository) ListEligibleByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND available_quantity > 0 AND id IN ?", true, ids).
		Preload("Categories").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// ListByAffinity - активные товары в наличии из заданных категорий
// Исключённые ID (корзина и вишлист пользователя) в выборку не попадают
func (r *productRepository) ListByAffinity(ctx context.Context, categories []string, exclude []uuid.UUID, limit int) ([]entity.Product, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	q := r.db.WithContext(ctx).
		Where("is_active = ? AND available_quantity > 0", true).
		Where("EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = products.id AND pc.category IN ?)", categories)

	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}

	var products []entity.Product
	result := q.
		Order("created_at DESC").
		Limit(limit).
		Preload("Categories").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// ListRelated - активные товары той же категории, кроме самого товара
// Наличие на складе не требуется
func (r *productRepository) ListRelated(ctx context.Context, category string, exclude uuid.UUID, limit int) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND id <> ?", true, exclude).
		Where("EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = products.id AND LOWER(pc.category) = LOWER(?))", category).
		Order("created_at DESC").
		Limit(limit).
		Preload("Categories").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}
