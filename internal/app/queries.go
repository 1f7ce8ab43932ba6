package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"review_pulse/internal/domain"
)

// QueryService serves the read side through a cache-aside layer. Writes
// invalidate these keys (see ReviewService and Aggregator), so a cached view
// never outlives an aggregation of the same product.
type QueryService struct {
	repo     domain.Repository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.Repository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	key := productKey(id)
	var p domain.Product
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *QueryService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *QueryService) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return s.repo.GetReview(ctx, id)
}

func (s *QueryService) ListProductReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	key := reviewsKey(productID)
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	reviews, err := s.repo.ListProductReviews(ctx, productID)
	if err != nil {
		return nil, err
	}

	// copy before caching so callers can't mutate the cached backing array
	cp := make([]domain.Review, len(reviews))
	copy(cp, reviews)

	// size guard: skip caching pathological review sets
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func (s *QueryService) ListReviewsBySentiment(ctx context.Context, label string) ([]domain.Review, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: sentiment label cannot be empty", domain.ErrInvalidArgument)
	}
	return s.repo.ListReviewsBySentiment(ctx, label)
}
