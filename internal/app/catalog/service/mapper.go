package service

import (
	"math"

	"velora/internal/app/catalog/entity"
)

// Маппинг сырых строк хранилища в стабильные выходные формы.
// Функции чистые, без побочных эффектов

// toProductSummary преобразует строку товара в представление для листингов
// rating может быть nil - тогда рейтинг и счётчик отзывов равны нулю
func toProductSummary(p *entity.Product, rating *entity.ProductRating) entity.ProductSummary {
	summary := entity.ProductSummary{
		ID:                p.ID,
		Slug:              p.Slug,
		Name:              p.Name,
		Price:             p.Price,
		Images:            p.Images,
		Material:          p.Material,
		AvailableQuantity: p.AvailableQuantity,
		TotalQuantity:     p.TotalQuantity,
		ColorCode:         p.ColorCode,
		ColorName:         p.ColorName,
	}

	if rating != nil {
		summary.AvgRating = rating.Average
		summary.ReviewsCount = rating.Count
	}

	return summary
}

// toProductDetail преобразует товар с отзывами в полную карточку
// Рейтинг карточки - округлённое среднее по загруженным (до 10) отзывам.
// InWishlist всегда false: актуальное значение накладывает презентационный слой
func toProductDetail(p *entity.Product, reviews []entity.Review) *entity.ProductDetail {
	detail := &entity.ProductDetail{
		ProductSummary: toProductSummary(p, nil),
		Description:    p.Description,
		Instructions:   p.Instructions,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Categories:     flattenCategories(p.Categories),
		Reviews:        make([]entity.ReviewView, 0, len(reviews)),
	}

	var sum int
	for _, r := range reviews {
		sum += r.Rating
		detail.Reviews = append(detail.Reviews, toReviewView(r))
	}

	detail.ReviewsCount = len(reviews)
	if len(reviews) > 0 {
		detail.AvgRating = math.Round(float64(sum) / float64(len(reviews)))
	}

	return detail
}

// toReviewView преобразует отзыв из MongoDB в выходную форму
func toReviewView(r entity.Review) entity.ReviewView {
	return entity.ReviewView{
		ID:        r.ID.Hex(),
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Text:      r.Text,
		Images:    r.Images,
		LikedBy:   r.LikedBy,
		CreatedAt: r.CreatedAt,
	}
}

// flattenCategories разворачивает связи many-to-many в список меток
func flattenCategories(categories []entity.ProductCategory) []string {
	out := make([]string, 0, len(categories))
	for _, pc := range categories {
		out = append(out, pc.Category)
	}
	return out
}
