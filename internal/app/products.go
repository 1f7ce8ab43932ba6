package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"review_pulse/internal/domain"
)

// ProductService covers the thin catalog surface around the scoring engine.
type ProductService struct {
	repo  domain.Repository
	cache domain.Cache
}

func NewProductService(repo domain.Repository, cache domain.Cache) *ProductService {
	return &ProductService{repo: repo, cache: cache}
}

func (s *ProductService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name cannot be empty", domain.ErrInvalidArgument)
	}
	// new products start unscored
	p.Scores = domain.ProductScores{}

	id, err := s.repo.InsertProduct(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	log.Info().Int64("product_id", id).Str("name", p.Name).Msg("product created")
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return fmt.Errorf("product %d: %w", id, err)
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, productKey(id))
		_ = s.cache.Del(ctx, reviewsKey(id))
	}
	log.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}
