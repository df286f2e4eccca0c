package service

import (
	"context"
	"fmt"

	"velora/internal/app/catalog/entity"
	"velora/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// recentPurchasesLimit - сколько последних покупок учитывается в персонализации
	recentPurchasesLimit = 20

	// bestSellerHeadroom - множитель запаса кандидатов бестселлеров:
	// часть из них отсеется как неактивные или без остатка
	bestSellerHeadroom = 2
)

// GetFeaturedProducts - самые свежие товары в наличии
func (s *LocalCatalogService) GetFeaturedProducts(ctx context.Context, limit int) ([]entity.ProductSummary, error) {
	products, err := s.featuredProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	metrics.RecommendationsServed.WithLabelValues("featured").Inc()
	return s.summarize(ctx, products)
}

// GetBestSellers - товары с наибольшим числом продаж
func (s *LocalCatalogService) GetBestSellers(ctx context.Context, limit int) ([]entity.ProductSummary, error) {
	products, err := s.bestSellerProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	metrics.RecommendationsServed.WithLabelValues("best_sellers").Inc()
	return s.summarize(ctx, products)
}

// GetRecommendedProducts - персональные рекомендации по категориям из корзины,
// вишлиста и истории покупок пользователя. Без пользователя или без истории
// деградирует до бестселлеров; нехватка добирается из них же
func (s *LocalCatalogService) GetRecommendedProducts(ctx context.Context, limit int, userID *uuid.UUID) ([]entity.ProductSummary, error) {
	if userID == nil {
		return s.GetBestSellers(ctx, limit)
	}

	var (
		cart      []entity.CartItem
		wishlist  []entity.WishlistItem
		purchases []entity.OrderItem
	)

	// Три независимых чтения активности выполняются параллельно
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cart, err = s.activityRepo.GetCartItems(gctx, *userID)
		return err
	})
	g.Go(func() error {
		var err error
		wishlist, err = s.activityRepo.GetWishlistItems(gctx, *userID)
		return err
	})
	g.Go(func() error {
		var err error
		purchases, err = s.activityRepo.GetRecentPurchases(gctx, *userID, recentPurchasesLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to query user activity: %w", err)
	}

	// Исключаем то, что уже в корзине или вишлисте; покупки НЕ исключаются
	excluded := make(map[uuid.UUID]bool)
	affinity := make(map[string]bool)

	for _, item := range cart {
		excluded[item.ProductID] = true
		collectCategories(affinity, item.Product)
	}
	for _, item := range wishlist {
		excluded[item.ProductID] = true
		collectCategories(affinity, item.Product)
	}
	for _, item := range purchases {
		collectCategories(affinity, item.Product)
	}

	if len(affinity) == 0 {
		return s.GetBestSellers(ctx, limit)
	}

	categories := make([]string, 0, len(affinity))
	for c := range affinity {
		categories = append(categories, c)
	}
	excludeIDs := make([]uuid.UUID, 0, len(excluded))
	for id := range excluded {
		excludeIDs = append(excludeIDs, id)
	}

	products, err := s.productRepo.ListByAffinity(ctx, categories, excludeIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query affinity products: %w", err)
	}

	// Добираем нехватку из бестселлеров, пропуская дубликаты и исключённые товары.
	// Запрашиваем с запасом на исключения, иначе добор может не дойти до лимита
	if len(products) < limit {
		seen := make(map[uuid.UUID]bool, len(products))
		for _, p := range products {
			seen[p.ID] = true
		}

		sellers, err := s.bestSellerProducts(ctx, limit+len(excludeIDs))
		if err != nil {
			return nil, err
		}

		for _, p := range sellers {
			if len(products) >= limit {
				break
			}
			if seen[p.ID] || excluded[p.ID] {
				continue
			}
			products = append(products, p)
			seen[p.ID] = true
		}
	}

	metrics.RecommendationsServed.WithLabelValues("personalized").Inc()
	return s.summarize(ctx, products)
}

// GetRelatedProducts - товары той же категории, кроме самого товара
func (s *LocalCatalogService) GetRelatedProducts(ctx context.Context, productID uuid.UUID, category string, limit int) ([]entity.ProductSummary, error) {
	products, err := s.productRepo.ListRelated(ctx, category, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query related products: %w", err)
	}

	metrics.RecommendationsServed.WithLabelValues("related").Inc()
	return s.summarize(ctx, products)
}

// featuredProducts возвращает сырые строки стратегии featured
func (s *LocalCatalogService) featuredProducts(ctx context.Context, limit int) ([]entity.Product, error) {
	products, err := s.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured products: %w", err)
	}
	return products, nil
}

// bestSellerProducts возвращает сырые строки стратегии best-sellers:
// кандидаты по сумме продаж (с запасом), затем отсев по доступности
// и восстановление порядка кандидатов. Без истории продаж - featured
func (s *LocalCatalogService) bestSellerProducts(ctx context.Context, limit int) ([]entity.Product, error) {
	rows, err := s.activityRepo.GetBestSellerRows(ctx, limit*bestSellerHeadroom)
	if err != nil {
		return nil, fmt.Errorf("failed to query best seller rows: %w", err)
	}

	if len(rows) == 0 {
		return s.featuredProducts(ctx, limit)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}

	eligible, err := s.productRepo.ListEligibleByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query best seller products: %w", err)
	}

	// IN-выборка не сохраняет порядок списка ID, переупорядочиваем по кандидатам
	byID := make(map[uuid.UUID]entity.Product, len(eligible))
	for _, p := range eligible {
		byID[p.ID] = p
	}

	products := make([]entity.Product, 0, limit)
	for _, row := range rows {
		if len(products) >= limit {
			break
		}
		if p, ok := byID[row.ProductID]; ok {
			products = append(products, p)
		}
	}

	return products, nil
}

// collectCategories добавляет категории товара в множество аффинити
func collectCategories(affinity map[string]bool, product *entity.Product) {
	if product == nil {
		return
	}
	for _, pc := range product.Categories {
		affinity[pc.Category] = true
	}
}
