package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"review_pulse/internal/adapters/observability"
	"review_pulse/internal/domain"
	"review_pulse/internal/scoring"
)

// Aggregator recomputes a product's derived scores from its complete current
// review set. Recomputation is a pure function of that set: it never patches
// prior aggregate state incrementally, which keeps deletes and concurrent
// writes consistent at the cost of O(review count) work per write.
type Aggregator struct {
	repo  domain.Repository
	calc  *scoring.Calculator
	cache domain.Cache

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewAggregator(repo domain.Repository, calc *scoring.Calculator, cache domain.Cache) *Aggregator {
	return &Aggregator{repo: repo, calc: calc, cache: cache, locks: make(map[int64]*sync.Mutex)}
}

// productLock returns the mutex serializing aggregation for one product.
// Different products aggregate fully in parallel.
func (a *Aggregator) productLock(productID int64) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[productID] = l
	}
	return l
}

// Recompute reads the product's full review set and writes fresh aggregates.
// Idempotent: an unchanged review set always produces identical scores.
func (a *Aggregator) Recompute(ctx context.Context, productID int64) (domain.ProductScores, error) {
	l := a.productLock(productID)
	l.Lock()
	defer l.Unlock()

	start := time.Now()

	if _, err := a.repo.GetProduct(ctx, productID); err != nil {
		return domain.ProductScores{}, fmt.Errorf("aggregate product %d: %w", productID, err)
	}

	reviews, err := a.repo.ListProductReviews(ctx, productID)
	if err != nil {
		return domain.ProductScores{}, fmt.Errorf("list reviews for product %d: %w", productID, err)
	}

	scores := a.compute(reviews)

	if err := a.repo.UpdateProductScores(ctx, productID, scores); err != nil {
		return domain.ProductScores{}, fmt.Errorf("persist scores for product %d: %w", productID, err)
	}
	if a.cache != nil {
		_ = a.cache.Del(ctx, productKey(productID))
	}

	observability.ObserveAggregation(time.Since(start))
	log.Debug().
		Int64("product_id", productID).
		Int("reviews", scores.TotalReviews).
		Float64("hybrid", scores.HybridScore).
		Msg("product scores recomputed")

	return scores, nil
}

// compute derives the aggregate fields from the review set. Zero reviews
// resets every field to 0 rather than leaving stale values behind.
func (a *Aggregator) compute(reviews []domain.Review) domain.ProductScores {
	n := len(reviews)
	if n == 0 {
		return domain.ProductScores{}
	}

	var starSum float64
	var sentSum float64
	sentN := 0
	for _, r := range reviews {
		starSum += float64(r.StarRating)
		// reviews still awaiting enrichment are excluded from this mean only
		if r.SentimentScore != nil {
			sentSum += *r.SentimentScore
			sentN++
		}
	}

	avgStar := starSum / float64(n)
	var avgSent *float64
	if sentN > 0 {
		v := sentSum / float64(sentN)
		avgSent = &v
	}

	return domain.ProductScores{
		TotalReviews:     n,
		AverageRating:    scoring.Round2(avgStar),
		HybridScore:      a.calc.ProductScore(&avgStar, avgSent),
		QualityScore:     categoryScore(reviews, domain.CategoryQualityDurability),
		PerformanceScore: categoryScore(reviews, domain.CategoryUsagePerformance),
		ShippingScore:    categoryScore(reviews, domain.CategoryServiceDelivery),
	}
}

// categoryScore averages the hybrid scores of reviews tagged with the
// category. A review tagged with several categories counts toward each of
// them; no member reviews means 0.
func categoryScore(reviews []domain.Review, category string) float64 {
	var sum float64
	n := 0
	for _, r := range reviews {
		if r.HasCategory(category) {
			sum += r.HybridScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return scoring.Round2(sum / float64(n))
}

func productKey(id int64) string { return fmt.Sprintf("product:%d", id) }

func reviewsKey(productID int64) string { return fmt.Sprintf("reviews:%d", productID) }
