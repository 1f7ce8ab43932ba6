package app_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"review_pulse/internal/domain"
	"review_pulse/internal/scoring"
)

// ---- fakes ----

// fakeRepo is an in-memory Repository; safe for the concurrent access the
// orchestrator's background enrichment produces.
type fakeRepo struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	reviews  map[int64]domain.Review
	nextID   int64

	scoreWrites   int
	finalizeCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: map[int64]domain.Product{},
		reviews:  map[int64]domain.Review{},
	}
}

func (f *fakeRepo) addProduct(p domain.Product) domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.products[p.ID] = p
	return p
}

func (f *fakeRepo) InsertProduct(ctx context.Context, p domain.Product) (int64, error) {
	return f.addProduct(p).ID, nil
}

func (f *fakeRepo) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeRepo) UpdateProductScores(ctx context.Context, id int64, s domain.ProductScores) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Scores = s
	f.products[id] = p
	f.scoreWrites++
	return nil
}

func (f *fakeRepo) InsertReview(ctx context.Context, r domain.Review) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.reviews[r.ID] = r
	return r.ID, nil
}

func (f *fakeRepo) FinalizeReviewEnrichment(ctx context.Context, reviewID int64, label string, sentimentScore, hybridScore float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok || r.SentimentScore != nil {
		return domain.ErrNotFound
	}
	r.SentimentLabel = label
	r.SentimentScore = &sentimentScore
	r.HybridScore = hybridScore
	f.reviews[reviewID] = r
	f.finalizeCalls++
	return nil
}

func (f *fakeRepo) DeleteReview(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) ListProductReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListReviewsBySentiment(ctx context.Context, label string) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if strings.EqualFold(r.SentimentLabel, label) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) review(t *testing.T, id int64) domain.Review {
	t.Helper()
	r, err := f.GetReview(context.Background(), id)
	if err != nil {
		t.Fatalf("review %d: %v", id, err)
	}
	return r
}

func (f *fakeRepo) product(t *testing.T, id int64) domain.Product {
	t.Helper()
	p, err := f.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("product %d: %v", id, err)
	}
	return p
}

type fakeSentiment struct {
	res   domain.SentimentResult
	err   error
	calls int32
}

func (f *fakeSentiment) Analyze(ctx context.Context, text string) (domain.SentimentResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return domain.SentimentResult{}, f.err
	}
	return f.res, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, _ := json.Marshal(v)
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- shared helpers ----

func defaultCalc(t *testing.T) *scoring.Calculator {
	t.Helper()
	c, err := scoring.NewCalculator(scoring.DefaultWeights)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c
}

func pfloat(f float64) *float64 { return &f }
