package service

import (
	"context"

	"velora/internal/app/catalog/entity"

	"github.com/google/uuid"
)

// CatalogService - девять публичных операций каталога
// Две реализации с идентичным контрактом: LocalCatalogService (PostgreSQL + MongoDB)
// и RemoteCatalogService (удалённый GraphQL API). Выбор делается один раз при старте
type CatalogService interface {
	GetProducts(ctx context.Context, filter entity.CatalogFilter) (*entity.CatalogResult, error)
	GetProductBySlug(ctx context.Context, slug string) (*entity.ProductDetail, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error)
	GetRelatedProducts(ctx context.Context, productID uuid.UUID, category string, limit int) ([]entity.ProductSummary, error)
	GetFeaturedProducts(ctx context.Context, limit int) ([]entity.ProductSummary, error)
	GetBestSellers(ctx context.Context, limit int) ([]entity.ProductSummary, error)
	GetRecommendedProducts(ctx context.Context, limit int, userID *uuid.UUID) ([]entity.ProductSummary, error)
	GetCategories(ctx context.Context) ([]string, error)
	GetMaterials(ctx context.Context) ([]string, error)
}
