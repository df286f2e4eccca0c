package service

import (
	"context"
	"fmt"

	"velora/internal/app/catalog/entity"

	"github.com/google/uuid"
)

// GraphQLExecutor - транспорт удалённого каталога
// Используется для dependency injection и упрощения тестирования
type GraphQLExecutor interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error
}

// Запросы к удалённому GraphQL API каталога
// Поля выборки один-в-один повторяют выходные формы локальной реализации
const (
	productSummaryFields = `id slug name price images reviews_count avg_rating material in_wishlist available_quantity total_quantity color_code color_name`

	productDetailFields = productSummaryFields + ` description instructions is_active created_at updated_at categories reviews { id user_id user_name rating text images liked_by created_at }`

	queryGetProducts = `query GetProducts($filter: CatalogFilterInput) {
		getProducts(filter: $filter) {
			products { ` + productSummaryFields + ` }
			filter { page limit search category materials min_price max_price sort }
			total_products
			total_pages
			meta {
				categories
				materials
				price_range { min max }
				buckets { min max count }
			}
		}
	}`

	queryGetProductBySlug = `query GetProductBySlug($slug: String!) {
		getProductBySlug(slug: $slug) { ` + productDetailFields + ` }
	}`

	queryGetProductByID = `query GetProductById($id: ID!) {
		getProductById(id: $id) { ` + productDetailFields + ` }
	}`

	queryGetRelatedProducts = `query GetRelatedProducts($productId: ID!, $category: String!, $limit: Int!) {
		getRelatedProducts(productId: $productId, category: $category, limit: $limit) { ` + productSummaryFields + ` }
	}`

	queryGetFeaturedProducts = `query GetFeaturedProducts($limit: Int!) {
		getFeaturedProducts(limit: $limit) { ` + productSummaryFields + ` }
	}`

	queryGetBestSellers = `query GetBestSellers($limit: Int!) {
		getBestSellers(limit: $limit) { ` + productSummaryFields + ` }
	}`

	queryGetRecommendedProducts = `query GetRecommendedProducts($limit: Int!, $userId: ID) {
		getRecommendedProducts(limit: $limit, userId: $userId) { ` + productSummaryFields + ` }
	}`

	queryGetCategories = `query GetCategories { getCategories }`

	queryGetMaterials = `query GetMaterials { getMaterials }`
)

// RemoteCatalogService проксирует все операции каталога на удалённый GraphQL API
// Никакой собственной логики: ошибка или отсутствующий payload удалённой стороны
// поднимается как ошибка, частичных результатов не бывает
type RemoteCatalogService struct {
	client GraphQLExecutor
}

// NewRemoteCatalogService создает удалённую реализацию каталога
func NewRemoteCatalogService(client GraphQLExecutor) *RemoteCatalogService {
	return &RemoteCatalogService{client: client}
}

func (s *RemoteCatalogService) GetProducts(ctx context.Context, filter entity.CatalogFilter) (*entity.CatalogResult, error) {
	f := filter.Normalized()
	variables := map[string]interface{}{"filter": f}

	var out struct {
		GetProducts *entity.CatalogResult `json:"getProducts"`
	}
	if err := s.client.Execute(ctx, queryGetProducts, variables, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch products from remote catalog: %w", err)
	}
	if out.GetProducts == nil {
		return nil, fmt.Errorf("remote catalog returned no products payload")
	}

	return out.GetProducts, nil
}

func (s *RemoteCatalogService) GetProductBySlug(ctx context.Context, slug string) (*entity.ProductDetail, error) {
	variables := map[string]interface{}{"slug": slug}

	var out struct {
		GetProductBySlug *entity.ProductDetail `json:"getProductBySlug"`
	}
	if err := s.client.Execute(ctx, queryGetProductBySlug, variables, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch product from remote catalog: %w", err)
	}
	if out.GetProductBySlug == nil {
		return nil, ErrProductNotFound
	}

	return out.GetProductBySlug, nil
}

func (s *RemoteCatalogService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error) {
	variables := map[string]interface{}{"id": id.String()}

	var out struct {
		GetProductByID *entity.ProductDetail `json:"getProductById"`
	}
	if err := s.client.Execute(ctx, queryGetProductByID, variables, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch product from remote catalog: %w", err)
	}
	if out.GetProductByID == nil {
		return nil, ErrProductNotFound
	}

	return out.GetProductByID, nil
}

func (s *RemoteCatalogService) GetRelatedProducts(ctx context.Context, productID uuid.UUID, category string, limit int) ([]entity.ProductSummary, error) {
	variables := map[string]interface{}{
		"productId": productID.String(),
		"category":  category,
		"limit":     limit,
	}

	var out struct {
		GetRelatedProducts []entity.ProductSummary `json:"getRelatedProducts"`
	}
	if err := s.client.Execute(ctx, queryGetRelatedProducts, variables, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch related products from remote catalog: %w", err)
	}

	return out.GetRelatedProducts, nil
}

func (s *RemoteCatalogService) GetFeaturedProducts(ctx context.Context, limit int) ([]entity.ProductSummary, error) {
	variables := map[string]interface{}{"limit": limit}

	var out struct {
		GetFeaturedProducts []entity.ProductSummary `json:"getFeaturedProducts"`
	}
	if err := s.client.Execute(ctx, queryGetFeaturedProducts, variables, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch featured products from remote catalog: %w", err)
	}

	return out.GetFeaturedProducts, nil
}

func (s *RemoteCatalogService) GetBestSellers(ctx context.Context, limit int) ([]entity.ProductSummary, error) {
	variables := map[string]interface{}{"limit": limit}

	var out struct {
		GetBestSellers []entity.ProductSummary `json:"getBestSellers"`
	}
	if err := s.client.Execute(ctx, queryGetBestSellers, variables, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch best sellers from remote catalog: %w", err)
	}

	return out.GetBestSellers, nil
}

func (s *RemoteCatalogService) GetRecommendedProducts(ctx context.Context, limit int, userID *uuid.UUID) ([]entity.ProductSummary, error) {
	variables := map[string]interface{}{"limit": limit}
	if userID != nil {
		variables["userId"] = userID.String()
	}

	var out struct {
		GetRecommendedProducts []entity.ProductSummary `json:"getRecommendedProducts"`
	}
	if err := s.client.Execute(ctx, queryGetRecommendedProducts, variables, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations from remote catalog: %w", err)
	}

	return out.GetRecommendedProducts, nil
}

func (s *RemoteCatalogService) GetCategories(ctx context.Context) ([]string, error) {
	var out struct {
		GetCategories []string `json:"getCategories"`
	}
	if err := s.client.Execute(ctx, queryGetCategories, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch categories from remote catalog: %w", err)
	}

	return out.GetCategories, nil
}

func (s *RemoteCatalogService) GetMaterials(ctx context.Context) ([]string, error) {
	var out struct {
		GetMaterials []string `json:"getMaterials"`
	}
	if err := s.client.Execute(ctx, queryGetMaterials, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch materials from remote catalog: %w", err)
	}

	return out.GetMaterials, nil
}
