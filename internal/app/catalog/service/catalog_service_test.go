package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"velora/internal/app/catalog/entity"
	"velora/internal/app/catalog/repository"
	"velora/internal/app/catalog/repository/mocks"
	"velora/internal/app/catalog/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Хелперы для создания тестовых данных

func newTestProduct() *entity.Product {
	return &entity.Product{
		ID:                uuid.New(),
		Slug:              "linen-tablecloth",
		Name:              "Linen Tablecloth",
		Description:       "Hand-woven linen tablecloth",
		Price:             129.99,
		Images:            []string{"tablecloth-1.jpg"},
		Material:          "linen",
		ColorCode:         "#F5F0E8",
		ColorName:         "Ivory",
		AvailableQuantity: 5,
		TotalQuantity:     10,
		IsActive:          true,
		Categories: []entity.ProductCategory{
			{Category: "tablecloths"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func newTestReview(rating int) entity.Review {
	return entity.Review{
		ID:        primitive.NewObjectID(),
		UserID:    uuid.NewString(),
		UserName:  "Anna",
		Rating:    rating,
		Text:      "Great quality",
		CreatedAt: time.Now(),
	}
}

func newTestService() (*LocalCatalogService, *mocks.MockProductRepository, *mocks.MockActivityRepository, *mocks.MockReviewRepository, *mocks.MockListingCache, *mocks.MockMessagePublisher) {
	productRepo := new(mocks.MockProductRepository)
	activityRepo := new(mocks.MockActivityRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockListingCache)
	producer := new(mocks.MockMessagePublisher)

	service := NewLocalCatalogService(productRepo, activityRepo, reviewRepo, cache, producer)
	return service, productRepo, activityRepo, reviewRepo, cache, producer
}

// ==================== GetProducts Tests ====================

func TestLocalCatalogService_GetProducts_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, reviewRepo, _, _ := newTestService()

	product := newTestProduct()
	normalized := entity.CatalogFilter{Page: 1, Limit: 12, Sort: entity.SortFeatured}

	// Контекст внутри errgroup - производный, поэтому mock.Anything
	productRepo.On("List", mock.Anything, normalized).Return([]entity.Product{*product}, nil)
	productRepo.On("Count", mock.Anything, normalized).Return(int64(25), nil)
	productRepo.On("DistinctCategories", mock.Anything).Return([]string{"tablecloths", "napkins"}, nil)
	productRepo.On("DistinctMaterials", mock.Anything).Return([]string{"linen", "cotton"}, nil)
	productRepo.On("ListPrices", mock.Anything, normalized).Return([]float64{129.99}, nil)
	reviewRepo.On("GetRatings", mock.Anything, []string{product.ID.String()}).Return(map[string]entity.ProductRating{
		product.ID.String(): {ProductID: product.ID.String(), Average: 4.5, Count: 12},
	}, nil)

	// Act
	result, err := service.GetProducts(ctx, entity.CatalogFilter{})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, product.ID, result.Products[0].ID)
	assert.Equal(t, 4.5, result.Products[0].AvgRating)
	assert.Equal(t, 12, result.Products[0].ReviewsCount)
	assert.Equal(t, int64(25), result.TotalProducts)
	assert.Equal(t, int64(3), result.TotalPages)
	assert.Equal(t, []string{"tablecloths", "napkins"}, result.Meta.Categories)
	assert.Equal(t, []string{"linen", "cotton"}, result.Meta.Materials)

	productRepo.AssertExpectations(t)
	reviewRepo.AssertExpectations(t)
}

func TestLocalCatalogService_GetProducts_FilterDefaults(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, reviewRepo, _, _ := newTestService()

	normalized := entity.CatalogFilter{Page: 1, Limit: 12, Sort: entity.SortFeatured}

	productRepo.On("List", mock.Anything, normalized).Return([]entity.Product{}, nil)
	productRepo.On("Count", mock.Anything, normalized).Return(int64(0), nil)
	productRepo.On("DistinctCategories", mock.Anything).Return([]string{}, nil)
	productRepo.On("DistinctMaterials", mock.Anything).Return([]string{}, nil)
	productRepo.On("ListPrices", mock.Anything, normalized).Return([]float64{}, nil)
	reviewRepo.On("GetRatings", mock.Anything, []string{}).Return(map[string]entity.ProductRating{}, nil)

	// Act - пустой фильтр должен получить значения по умолчанию
	result, err := service.GetProducts(ctx, entity.CatalogFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPage, result.Filter.Page)
	assert.Equal(t, entity.DefaultLimit, result.Filter.Limit)
	assert.Equal(t, entity.SortFeatured, result.Filter.Sort)
	assert.Equal(t, int64(0), result.TotalPages)
}

func TestLocalCatalogService_GetProducts_EmptyPopulationPriceDefaults(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, reviewRepo, _, _ := newTestService()

	normalized := entity.CatalogFilter{Page: 1, Limit: 12, Sort: entity.SortFeatured}

	productRepo.On("List", mock.Anything, normalized).Return([]entity.Product{}, nil)
	productRepo.On("Count", mock.Anything, normalized).Return(int64(0), nil)
	productRepo.On("DistinctCategories", mock.Anything).Return([]string{}, nil)
	productRepo.On("DistinctMaterials", mock.Anything).Return([]string{}, nil)
	productRepo.On("ListPrices", mock.Anything, normalized).Return([]float64{}, nil)
	reviewRepo.On("GetRatings", mock.Anything, []string{}).Return(map[string]entity.ProductRating{}, nil)

	// Act
	result, err := service.GetProducts(ctx, entity.CatalogFilter{})

	// Assert - пустая популяция отдаёт диапазон по умолчанию
	require.NoError(t, err)
	assert.Equal(t, float64(0), result.Meta.PriceRange.Min)
	assert.Equal(t, float64(1000), result.Meta.PriceRange.Max)
	assert.Len(t, result.Meta.Buckets, entity.HistogramBuckets)
}

func TestLocalCatalogService_GetProducts_RepoError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, _, _ := newTestService()

	normalized := entity.CatalogFilter{Page: 1, Limit: 12, Sort: entity.SortFeatured}

	productRepo.On("List", mock.Anything, normalized).Return(nil, errors.New("db error"))
	productRepo.On("Count", mock.Anything, normalized).Return(int64(0), nil).Maybe()
	productRepo.On("DistinctCategories", mock.Anything).Return([]string{}, nil).Maybe()
	productRepo.On("DistinctMaterials", mock.Anything).Return([]string{}, nil).Maybe()
	productRepo.On("ListPrices", mock.Anything, normalized).Return([]float64{}, nil).Maybe()

	// Act
	result, err := service.GetProducts(ctx, entity.CatalogFilter{})

	// Assert - первая ошибка любого из параллельных чтений прерывает запрос
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query catalog")
}

// ==================== Product Detail Tests ====================

func TestLocalCatalogService_GetProductBySlug_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, reviewRepo, _, producer := newTestService()

	product := newTestProduct()
	reviews := []entity.Review{newTestReview(5), newTestReview(4), newTestReview(4)}

	productRepo.On("GetBySlug", ctx, product.Slug).Return(product, nil)
	reviewRepo.On("GetRecentByProduct", ctx, product.ID.String(), detailReviewsLimit).Return(reviews, nil)
	producer.On("PublishMessage", ctx, product.ID.String(), mock.Anything).Return(nil)

	// Act
	detail, err := service.GetProductBySlug(ctx, product.Slug)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, product.ID, detail.ID)
	assert.Equal(t, product.Slug, detail.Slug)
	assert.Equal(t, []string{"tablecloths"}, detail.Categories)
	assert.Len(t, detail.Reviews, 3)
	// Рейтинг карточки - округлённое среднее по загруженным отзывам: (5+4+4)/3 -> 4
	assert.Equal(t, float64(4), detail.AvgRating)
	assert.Equal(t, 3, detail.ReviewsCount)
	assert.False(t, detail.InWishlist)

	productRepo.AssertExpectations(t)
	reviewRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestLocalCatalogService_GetProductBySlug_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, _, _ := newTestService()

	productRepo.On("GetBySlug", ctx, "missing").Return(nil, repository.ErrProductNotFound)

	// Act
	detail, err := service.GetProductBySlug(ctx, "missing")

	// Assert
	assert.Nil(t, detail)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestLocalCatalogService_GetProductBySlug_KafkaErrorIgnored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, reviewRepo, _, producer := newTestService()

	product := newTestProduct()

	productRepo.On("GetBySlug", ctx, product.Slug).Return(product, nil)
	reviewRepo.On("GetRecentByProduct", ctx, product.ID.String(), detailReviewsLimit).Return([]entity.Review{}, nil)
	producer.On("PublishMessage", ctx, product.ID.String(), mock.Anything).Return(errors.New("kafka unavailable"))

	// Act
	detail, err := service.GetProductBySlug(ctx, product.Slug)

	// Assert - событие просмотра fire-and-forget, ошибка Kafka не ломает карточку
	require.NoError(t, err)
	assert.NotNil(t, detail)
	assert.Equal(t, float64(0), detail.AvgRating)
	assert.Equal(t, 0, detail.ReviewsCount)
}

func TestLocalCatalogService_GetProductByID_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, reviewRepo, _, producer := newTestService()

	product := newTestProduct()

	productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	reviewRepo.On("GetRecentByProduct", ctx, product.ID.String(), detailReviewsLimit).Return([]entity.Review{newTestReview(5)}, nil)
	producer.On("PublishMessage", ctx, product.ID.String(), mock.Anything).Return(nil)

	// Act
	detail, err := service.GetProductByID(ctx, product.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, product.ID, detail.ID)
	assert.Equal(t, float64(5), detail.AvgRating)
}

func TestLocalCatalogService_GetProductByID_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, _, _ := newTestService()

	id := uuid.New()
	productRepo.On("GetByID", ctx, id).Return(nil, repository.ErrProductNotFound)

	// Act
	detail, err := service.GetProductByID(ctx, id)

	// Assert
	assert.Nil(t, detail)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

// ==================== Listing Cache Tests ====================

func TestLocalCatalogService_GetCategories_CacheHit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, cache, _ := newTestService()

	cache.On("GetList", ctx, util.CategoriesCacheKey).Return([]string{"tablecloths", "napkins"}, nil)

	// Act
	categories, err := service.GetCategories(ctx)

	// Assert - при попадании в кеш БД не трогаем
	require.NoError(t, err)
	assert.Equal(t, []string{"tablecloths", "napkins"}, categories)
	productRepo.AssertNotCalled(t, "DistinctCategories", mock.Anything)
}

func TestLocalCatalogService_GetCategories_CacheMiss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, cache, _ := newTestService()

	cache.On("GetList", ctx, util.CategoriesCacheKey).Return(nil, nil)
	productRepo.On("DistinctCategories", ctx).Return([]string{"tablecloths"}, nil)
	cache.On("SetList", ctx, util.CategoriesCacheKey, []string{"tablecloths"}, listingCacheTTL).Return(nil)

	// Act
	categories, err := service.GetCategories(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"tablecloths"}, categories)
	cache.AssertExpectations(t)
}

func TestLocalCatalogService_GetMaterials_CacheErrorFallsBack(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, cache, _ := newTestService()

	cache.On("GetList", ctx, util.MaterialsCacheKey).Return(nil, errors.New("redis down"))
	productRepo.On("DistinctMaterials", ctx).Return([]string{"linen"}, nil)
	cache.On("SetList", ctx, util.MaterialsCacheKey, []string{"linen"}, listingCacheTTL).Return(errors.New("redis down"))

	// Act
	materials, err := service.GetMaterials(ctx)

	// Assert - проблемы с кешем не критичны, список приходит из БД
	require.NoError(t, err)
	assert.Equal(t, []string{"linen"}, materials)
}

func TestLocalCatalogService_RefreshListings_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, cache, _ := newTestService()

	productRepo.On("DistinctCategories", ctx).Return([]string{"tablecloths"}, nil)
	cache.On("SetList", ctx, util.CategoriesCacheKey, []string{"tablecloths"}, listingCacheTTL).Return(nil)
	productRepo.On("DistinctMaterials", ctx).Return([]string{"linen"}, nil)
	cache.On("SetList", ctx, util.MaterialsCacheKey, []string{"linen"}, listingCacheTTL).Return(nil)

	// Act
	err := service.RefreshListings(ctx)

	// Assert
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestLocalCatalogService_RefreshListings_RepoError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, productRepo, _, _, _, _ := newTestService()

	productRepo.On("DistinctCategories", ctx).Return(nil, errors.New("db error"))

	// Act
	err := service.RefreshListings(ctx)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh categories")
}
