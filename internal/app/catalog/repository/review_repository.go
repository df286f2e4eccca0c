package repository

import (
	"context"
	"fmt"
	"time"

	"velora/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает репозиторий отзывов
// Автоматически создает индекс по product_id для быстрой выборки
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_id", Value: 1},
		},
		Options: options.Index().SetName("product_id_idx"),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		// Логируем ошибку, но не прерываем работу - индекс может уже существовать
		fmt.Printf("Warning: failed to create index on product_id: %v\n", err)
	}

	return &reviewRepository{
		collection: collection,
	}
}

// GetRecentByProduct возвращает последние отзывы товара, новые первыми
func (r *reviewRepository) GetRecentByProduct(ctx context.Context, productID string, limit int) ([]entity.Review, error) {
	filter := bson.M{"product_id": productID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// GetRatings возвращает средний рейтинг и число отзывов по каждому товару из списка
// Товары без отзывов в результирующей map отсутствуют
func (r *reviewRepository) GetRatings(ctx context.Context, productIDs []string) (map[string]entity.ProductRating, error) {
	ratings := make(map[string]entity.ProductRating)
	if len(productIDs) == 0 {
		return ratings, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": bson.M{"$in": productIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$product_id",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []entity.ProductRating
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}

	for _, row := range rows {
		ratings[row.ProductID] = row
	}

	return ratings, nil
}
