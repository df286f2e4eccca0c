package entity

import (
	"time"

	"github.com/google/uuid"
)

// Ключи сортировки каталога
const (
	SortFeatured       = "featured"
	SortNew            = "new"
	SortPriceLowToHigh = "price_low_to_high"
	SortPriceHighToLow = "price_high_to_low"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12

	// CategoryAll - сентинельное значение "без фильтра по категории"
	CategoryAll = "all"

	// HistogramBuckets - фиксированное число корзин гистограммы цен
	HistogramBuckets = 30
)

// CatalogFilter - параметры выборки каталога, живут только в рамках запроса
type CatalogFilter struct {
	Page      int      `json:"page" form:"page" validate:"omitempty,gte=1"`
	Limit     int      `json:"limit" form:"limit" validate:"omitempty,gte=1,lte=100"`
	Search    string   `json:"search" form:"search" validate:"omitempty,max=200"`
	Category  string   `json:"category" form:"category"`
	Materials []string `json:"materials" form:"materials"`
	MinPrice  *float64 `json:"min_price" form:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"max_price" form:"max_price" validate:"omitempty,gte=0"`
	Sort      string   `json:"sort" form:"sort"`
}

// Normalized возвращает копию фильтра с подставленными значениями по умолчанию
// Исходный фильтр не меняется
func (f CatalogFilter) Normalized() CatalogFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Sort == "" {
		f.Sort = SortFeatured
	}
	return f
}

// HasCategory сообщает, задан ли действующий фильтр по категории
func (f CatalogFilter) HasCategory() bool {
	return f.Category != "" && f.Category != CategoryAll
}

// PriceRange - глобальный диапазон цен по отфильтрованной популяции
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceBucket - корзина гистограммы цен
type PriceBucket struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// CatalogMeta - агрегированные метаданные каталога для фильтров UI
type CatalogMeta struct {
	Categories []string      `json:"categories"`
	Materials  []string      `json:"materials"`
	PriceRange PriceRange    `json:"price_range"`
	Buckets    []PriceBucket `json:"buckets"`
}

// CatalogResult - страница каталога с метаданными
type CatalogResult struct {
	Products      []ProductSummary `json:"products"`
	Filter        CatalogFilter    `json:"filter"`
	TotalProducts int64            `json:"total_products"`
	TotalPages    int64            `json:"total_pages"`
	Meta          CatalogMeta      `json:"meta"`
}

// ProductSummary - представление товара для листингов
type ProductSummary struct {
	ID                uuid.UUID `json:"id"`
	Slug              string    `json:"slug"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	Images            []string  `json:"images"`
	ReviewsCount      int       `json:"reviews_count"`
	AvgRating         float64   `json:"avg_rating"`
	Material          string    `json:"material"`
	InWishlist        bool      `json:"in_wishlist"`
	AvailableQuantity int       `json:"available_quantity"`
	TotalQuantity     int       `json:"total_quantity"`
	ColorCode         string    `json:"color_code"`
	ColorName         string    `json:"color_name"`
}

// ReviewView - отзыв в составе карточки товара
type ReviewView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	Images    []string  `json:"images"`
	LikedBy   []string  `json:"liked_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductDetail - полная карточка товара
// InWishlist здесь всегда false: актуальное значение накладывает
// презентационный слой отдельным запросом к вишлисту пользователя
type ProductDetail struct {
	ProductSummary
	Description  string       `json:"description"`
	Instructions []string     `json:"instructions"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Categories   []string     `json:"categories"`
	Reviews      []ReviewView `json:"reviews"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ProductListResponse struct {
	Products []ProductSummary `json:"products"`
	Total    int              `json:"total"`
}

type StringListResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}
