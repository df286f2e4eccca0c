package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"velora/pkg/logger"
	"velora/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Catalog Service с использованием Gin
// Все эндпоинты публичные; JWT токен опционален и влияет только на персонализацию
func SetupRoutes(catalogHandler *CatalogHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	products := router.Group("/products")
	{
		products.GET("", catalogHandler.GetProducts)
		products.GET("/slug/:slug", catalogHandler.GetProductBySlug)
		products.GET("/:id", catalogHandler.GetProductByID)
		products.GET("/:id/related", catalogHandler.GetRelatedProducts)
	}

	recommendations := router.Group("/recommendations")
	{
		recommendations.GET("/featured", catalogHandler.GetFeaturedProducts)
		recommendations.GET("/best-sellers", catalogHandler.GetBestSellers)
		// Персональные рекомендации: токен опционален
		recommendations.GET("", authMiddleware.OptionalAuthenticate(), catalogHandler.GetRecommendedProducts)
	}

	router.GET("/categories", catalogHandler.GetCategories)
	router.GET("/materials", catalogHandler.GetMaterials)

	return router
}
