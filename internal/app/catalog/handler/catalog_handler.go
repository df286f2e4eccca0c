package handler

import (
	"errors"
	"net/http"
	"strconv"

	"velora/internal/app/catalog/entity"
	"velora/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultRecommendationLimit = 8
	maxRecommendationLimit     = 50
)

// CatalogHandler обрабатывает HTTP запросы каталога
// Работает с CatalogService не зная, локальная это реализация или удалённая
type CatalogHandler struct {
	catalogService service.CatalogService
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// GetProducts обрабатывает GET /products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	var filter entity.CatalogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if err := h.validator.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	result, err := h.catalogService.GetProducts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get products"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProductBySlug обрабатывает GET /products/slug/:slug
func (h *CatalogHandler) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug is required"})
		return
	}

	product, err := h.catalogService.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProductByID обрабатывает GET /products/:id
func (h *CatalogHandler) GetProductByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalogService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetRelatedProducts обрабатывает GET /products/:id/related
func (h *CatalogHandler) GetRelatedProducts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category is required"})
		return
	}

	products, err := h.catalogService.GetRelatedProducts(c.Request.Context(), id, category, limitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get related products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{Products: products, Total: len(products)})
}

// GetFeaturedProducts обрабатывает GET /recommendations/featured
func (h *CatalogHandler) GetFeaturedProducts(c *gin.Context) {
	products, err := h.catalogService.GetFeaturedProducts(c.Request.Context(), limitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get featured products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{Products: products, Total: len(products)})
}

// GetBestSellers обрабатывает GET /recommendations/best-sellers
func (h *CatalogHandler) GetBestSellers(c *gin.Context) {
	products, err := h.catalogService.GetBestSellers(c.Request.Context(), limitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get best sellers"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{Products: products, Total: len(products)})
}

// GetRecommendedProducts обрабатывает GET /recommendations
// Без аутентифицированного пользователя деградирует до бестселлеров
func (h *CatalogHandler) GetRecommendedProducts(c *gin.Context) {
	var userID *uuid.UUID
	if raw, exists := c.Get("user_id"); exists {
		if str, ok := raw.(string); ok {
			if parsed, err := uuid.Parse(str); err == nil {
				userID = &parsed
			}
		}
	}

	products, err := h.catalogService.GetRecommendedProducts(c.Request.Context(), limitParam(c), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{Products: products, Total: len(products)})
}

// GetCategories обрабатывает GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories"})
		return
	}

	c.JSON(http.StatusOK, entity.StringListResponse{Items: categories, Total: len(categories)})
}

// GetMaterials обрабатывает GET /materials
func (h *CatalogHandler) GetMaterials(c *gin.Context) {
	materials, err := h.catalogService.GetMaterials(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get materials"})
		return
	}

	c.JSON(http.StatusOK, entity.StringListResponse{Items: materials, Total: len(materials)})
}

// limitParam читает query-параметр limit с безопасными границами
func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecommendationLimit)))
	if err != nil || limit < 1 {
		return defaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		return maxRecommendationLimit
	}
	return limit
}

// formatValidationError приводит ошибки валидатора к короткому сообщению
func formatValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return "Invalid value for field " + errs[0].Field()
	}
	return "Validation failed"
}
