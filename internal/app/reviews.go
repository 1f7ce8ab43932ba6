package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_pulse/internal/adapters/observability"
	"review_pulse/internal/domain"
	"review_pulse/internal/scoring"
)

const (
	minCommentLen = 10
	maxCommentLen = 2000

	enrichTimeout = 45 * time.Second
)

// ReviewService orchestrates the review lifecycle: a provisional, rating-only
// scored review is persisted synchronously; sentiment enrichment and the
// product aggregate recomputation continue on a background task. Enrichment
// is best-effort: a gateway failure leaves the provisional score in place
// and is never surfaced to the creation caller.
type ReviewService struct {
	repo      domain.Repository
	sentiment domain.SentimentClient
	agg       *Aggregator
	calc      *scoring.Calculator
	vocab     *scoring.Vocabulary
	cache     domain.Cache

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func NewReviewService(
	repo domain.Repository,
	sentiment domain.SentimentClient,
	agg *Aggregator,
	calc *scoring.Calculator,
	vocab *scoring.Vocabulary,
	cache domain.Cache,
	maxEnrichments int,
) *ReviewService {
	if maxEnrichments <= 0 {
		maxEnrichments = 8
	}
	return &ReviewService{
		repo:      repo,
		sentiment: sentiment,
		agg:       agg,
		calc:      calc,
		vocab:     vocab,
		cache:     cache,
		sem:       semaphore.NewWeighted(int64(maxEnrichments)),
	}
}

// CreateReview validates, classifies, and persists a provisional review, then
// schedules enrichment + aggregation. The returned review reflects the
// provisional state; the enriched state becomes visible asynchronously.
func (s *ReviewService) CreateReview(ctx context.Context, productID int64, comment string, starRating int) (domain.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.Review{}, fmt.Errorf("%w: comment cannot be empty", domain.ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(comment); n < minCommentLen || n > maxCommentLen {
		return domain.Review{}, fmt.Errorf("%w: comment must be between %d and %d characters", domain.ErrInvalidArgument, minCommentLen, maxCommentLen)
	}
	if starRating < 1 || starRating > 5 {
		return domain.Review{}, fmt.Errorf("%w: star rating must be between 1 and 5", domain.ErrInvalidArgument)
	}
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return domain.Review{}, fmt.Errorf("product %d: %w", productID, err)
	}

	review := domain.Review{
		ProductID:      productID,
		Comment:        comment,
		StarRating:     starRating,
		SentimentLabel: "neutral",
		// provisional: rating-only score, no sentiment signal yet
		HybridScore: s.calc.ReviewScore(starRating, nil, "neutral"),
		Categories:  scoring.Classify(comment, s.vocab),
		CreatedAt:   time.Now().UTC(),
	}

	id, err := s.repo.InsertReview(ctx, review)
	if err != nil {
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	review.ID = id

	if s.cache != nil {
		_ = s.cache.Del(ctx, reviewsKey(productID))
	}

	log.Info().
		Int64("review_id", id).
		Int64("product_id", productID).
		Int("stars", starRating).
		Strs("categories", review.Categories).
		Msg("review created, enrichment scheduled")

	// The enrichment task must outlive the request context: the provisional
	// write has already succeeded and the engine aims for eventual completion.
	s.wg.Add(1)
	go func(r domain.Review) {
		defer s.wg.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), enrichTimeout)
		defer cancel()
		s.enrichAndAggregate(bg, r)
	}(review)

	return review, nil
}

// enrichAndAggregate makes the single enrichment attempt and then recomputes
// the owning product, whichever way enrichment went.
func (s *ReviewService) enrichAndAggregate(ctx context.Context, review domain.Review) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		log.Warn().Err(err).Int64("review_id", review.ID).Msg("enrichment slot unavailable, keeping provisional score")
		observability.ObserveEnrichment("skipped")
	} else {
		s.enrich(ctx, review)
		s.sem.Release(1)
	}

	if _, err := s.agg.Recompute(ctx, review.ProductID); err != nil {
		log.Error().Err(err).Int64("product_id", review.ProductID).Msg("aggregate recompute after create failed")
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, reviewsKey(review.ProductID))
	}
}

func (s *ReviewService) enrich(ctx context.Context, review domain.Review) {
	res, err := s.sentiment.Analyze(ctx, review.Comment)
	if err != nil {
		// A failed enrichment is final; the review keeps its provisional score.
		log.Warn().Err(err).Int64("review_id", review.ID).Msg("sentiment enrichment failed, keeping provisional score")
		observability.ObserveEnrichment("failed")
		return
	}

	hybrid := s.calc.ReviewScore(review.StarRating, &res.Normalized, res.Label)
	if err := s.repo.FinalizeReviewEnrichment(ctx, review.ID, res.Label, res.Normalized, hybrid); err != nil {
		log.Error().Err(err).Int64("review_id", review.ID).Msg("persisting enriched review failed")
		observability.ObserveEnrichment("failed")
		return
	}
	observability.ObserveEnrichment("enriched")

	log.Info().
		Int64("review_id", review.ID).
		Str("label", res.Label).
		Float64("raw", res.Score).
		Float64("normalized", res.Normalized).
		Float64("hybrid", hybrid).
		Msg("review enriched")
}

// DeleteReview removes a review and recomputes its former product's
// aggregates before returning.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID int64) error {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("review %d: %w", reviewID, err)
	}
	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review %d: %w", reviewID, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, reviewsKey(review.ProductID))
	}
	if _, err := s.agg.Recompute(ctx, review.ProductID); err != nil {
		return fmt.Errorf("recompute after delete: %w", err)
	}
	log.Info().Int64("review_id", reviewID).Int64("product_id", review.ProductID).Msg("review deleted")
	return nil
}

// RecomputeProductScores exposes the aggregation engine to callers.
func (s *ReviewService) RecomputeProductScores(ctx context.Context, productID int64) (domain.ProductScores, error) {
	return s.agg.Recompute(ctx, productID)
}

// Wait blocks until all in-flight enrichment tasks finish. Used on shutdown
// and in tests.
func (s *ReviewService) Wait() {
	s.wg.Wait()
}
