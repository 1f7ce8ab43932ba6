package domain

import "context"

type Repository interface {
	// Write paths
	InsertProduct(ctx context.Context, p Product) (int64, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateProductScores(ctx context.Context, id int64, s ProductScores) error
	InsertReview(ctx context.Context, r Review) (int64, error)
	// FinalizeReviewEnrichment applies the one-time provisional-to-final update
	// of the sentiment fields and hybrid score.
	FinalizeReviewEnrichment(ctx context.Context, reviewID int64, label string, sentimentScore, hybridScore float64) error
	DeleteReview(ctx context.Context, id int64) error

	// Read paths
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	GetReview(ctx context.Context, id int64) (Review, error)
	// ListProductReviews returns the complete current review set for a
	// product; aggregation depends on it being unpaginated.
	ListProductReviews(ctx context.Context, productID int64) ([]Review, error)
	ListReviewsBySentiment(ctx context.Context, label string) ([]Review, error)
}

type SentimentClient interface {
	Analyze(ctx context.Context, text string) (SentimentResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
