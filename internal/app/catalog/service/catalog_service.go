package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"velora/internal/app/catalog/entity"
	"velora/internal/app/catalog/repository"
	"velora/internal/app/catalog/util"
	"velora/pkg/logger"
	"velora/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound = errors.New("product not found")
)

const (
	// detailReviewsLimit - сколько последних отзывов попадает в карточку товара
	detailReviewsLimit = 10

	// listingCacheTTL - время жизни кеша категорий и материалов
	listingCacheTTL = time.Hour
)

// LocalCatalogService обслуживает каталог напрямую из хранилищ
// Координирует работу репозиториев PostgreSQL, отзывов в MongoDB,
// Redis кеша справочных списков и Kafka producer
type LocalCatalogService struct {
	productRepo  repository.ProductRepository
	activityRepo repository.ActivityRepository
	reviewRepo   repository.ReviewRepository
	cache        util.ListingCache
	producer     util.MessagePublisher
}

// NewLocalCatalogService создает локальную реализацию каталога с внедрением зависимостей
func NewLocalCatalogService(
	productRepo repository.ProductRepository,
	activityRepo repository.ActivityRepository,
	reviewRepo repository.ReviewRepository,
	cache util.ListingCache,
	producer util.MessagePublisher,
) *LocalCatalogService {
	return &LocalCatalogService{
		productRepo:  productRepo,
		activityRepo: activityRepo,
		reviewRepo:   reviewRepo,
		cache:        cache,
		producer:     producer,
	}
}

// GetProducts возвращает страницу каталога с агрегированными метаданными
// Пять независимых чтений выполняются параллельно: страница товаров, общее число,
// список категорий, список материалов и ценовая популяция для гистограммы.
// Первая же ошибка прерывает остальные и уходит вызывающей стороне
func (s *LocalCatalogService) GetProducts(ctx context.Context, filter entity.CatalogFilter) (*entity.CatalogResult, error) {
	f := filter.Normalized()

	var (
		page       []entity.Product
		total      int64
		categories []string
		materials  []string
		prices     []float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		page, err = s.productRepo.List(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.productRepo.Count(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.productRepo.DistinctCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		materials, err = s.productRepo.DistinctMaterials(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = s.productRepo.ListPrices(gctx, f)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}

	summaries, err := s.summarize(ctx, page)
	if err != nil {
		return nil, err
	}

	priceRange, buckets := buildPriceMeta(prices)

	totalPages := (total + int64(f.Limit) - 1) / int64(f.Limit)

	metrics.CatalogSearches.WithLabelValues(searchFilteredLabel(f)).Inc()

	return &entity.CatalogResult{
		Products:      summaries,
		Filter:        f,
		TotalProducts: total,
		TotalPages:    totalPages,
		Meta: entity.CatalogMeta{
			Categories: categories,
			Materials:  materials,
			PriceRange: priceRange,
			Buckets:    buckets,
		},
	}, nil
}

// GetProductBySlug возвращает карточку товара по slug
func (s *LocalCatalogService) GetProductBySlug(ctx context.Context, slug string) (*entity.ProductDetail, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return s.buildDetail(ctx, product)
}

// GetProductByID возвращает карточку товара по ID
func (s *LocalCatalogService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return s.buildDetail(ctx, product)
}

// buildDetail собирает карточку товара с последними отзывами
// и отправляет событие просмотра в Kafka
func (s *LocalCatalogService) buildDetail(ctx context.Context, product *entity.Product) (*entity.ProductDetail, error) {
	reviews, err := s.reviewRepo.GetRecentByProduct(ctx, product.ID.String(), detailReviewsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	detail := toProductDetail(product, reviews)

	metrics.ProductViews.Inc()

	// Событие просмотра отправляется fire-and-forget:
	// карточка уже собрана, проблемы с Kafka не критичны
	if err := s.publishViewedEvent(ctx, product); err != nil {
		logger.Warn().Err(err).Str("product_id", product.ID.String()).Msg("failed to publish product viewed event")
	}

	return detail, nil
}

// GetCategories возвращает список категорий с кешированием в Redis
// Сначала проверяет кеш, если нет - загружает из БД и кеширует
func (s *LocalCatalogService) GetCategories(ctx context.Context) ([]string, error) {
	return s.cachedListing(ctx, util.CategoriesCacheKey, s.productRepo.DistinctCategories)
}

// GetMaterials возвращает список материалов с кешированием в Redis
func (s *LocalCatalogService) GetMaterials(ctx context.Context) ([]string, error) {
	return s.cachedListing(ctx, util.MaterialsCacheKey, s.productRepo.DistinctMaterials)
}

// RefreshListings принудительно перечитывает справочные списки в кеш
// Вызывается cron-задачей для прогрева
func (s *LocalCatalogService) RefreshListings(ctx context.Context) error {
	categories, err := s.productRepo.DistinctCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh categories: %w", err)
	}
	if err := s.cache.SetList(ctx, util.CategoriesCacheKey, categories, listingCacheTTL); err != nil {
		return fmt.Errorf("failed to cache categories: %w", err)
	}

	materials, err := s.productRepo.DistinctMaterials(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh materials: %w", err)
	}
	if err := s.cache.SetList(ctx, util.MaterialsCacheKey, materials, listingCacheTTL); err != nil {
		return fmt.Errorf("failed to cache materials: %w", err)
	}

	return nil
}

// cachedListing реализует cache-aside для справочного списка
func (s *LocalCatalogService) cachedListing(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	values, err := s.cache.GetList(ctx, key)
	if err == nil && values != nil {
		metrics.RecordCacheHit("catalog-service", key)
		return values, nil
	}
	if err != nil {
		// Проблемы с кешем не критичны, идём в БД
		logger.Warn().Err(err).Str("key", key).Msg("listing cache read failed")
	}
	metrics.RecordCacheMiss("catalog-service", key)

	values, err = load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := s.cache.SetList(ctx, key, values, listingCacheTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("listing cache write failed")
	}

	return values, nil
}

// summarize достаёт рейтинги страницы товаров одним запросом и маппит строки
func (s *LocalCatalogService) summarize(ctx context.Context, products []entity.Product) ([]entity.ProductSummary, error) {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID.String())
	}

	ratings, err := s.reviewRepo.GetRatings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}

	summaries := make([]entity.ProductSummary, 0, len(products))
	for _, p := range products {
		var rating *entity.ProductRating
		if r, ok := ratings[p.ID.String()]; ok {
			rating = &r
		}
		summaries = append(summaries, toProductSummary(&p, rating))
	}

	return summaries, nil
}

// publishViewedEvent отправляет событие PRODUCT_VIEWED в Kafka
// Key - это ProductID для правильного партиционирования
func (s *LocalCatalogService) publishViewedEvent(ctx context.Context, product *entity.Product) error {
	event := entity.ProductViewedEvent{
		EventType: "PRODUCT_VIEWED",
		ProductID: product.ID,
		Slug:      product.Slug,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal viewed event: %w", err)
	}

	if err := s.producer.PublishMessage(ctx, product.ID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

// searchFilteredLabel сообщает метрике, применён ли хоть один фильтр
func searchFilteredLabel(f entity.CatalogFilter) string {
	if f.Search != "" || f.HasCategory() || len(f.Materials) > 0 || f.MinPrice != nil || f.MaxPrice != nil {
		return "true"
	}
	return "false"
}
