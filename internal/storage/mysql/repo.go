package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"review_pulse/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) InsertProduct(ctx context.Context, p domain.Product) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertProductSQL,
		p.Name,
		valStr(p.Description),
		valF64(p.Price),
		valStr(p.Category),
		valStr(p.ImageURL),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteProductSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) UpdateProductScores(ctx context.Context, id int64, s domain.ProductScores) error {
	res, err := r.db.ExecContext(ctx, updateProductScoresSQL,
		s.AverageRating,
		s.HybridScore,
		s.TotalReviews,
		s.QualityScore,
		s.PerformanceScore,
		s.ShippingScore,
		id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// product may have disappeared mid-recompute; re-check identity since
		// an unchanged row also reports zero affected rows
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, id).Scan(&one); err != nil {
			if err == sql.ErrNoRows {
				return domain.ErrNotFound
			}
			return err
		}
	}
	return nil
}

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ProductID,
		rv.Comment,
		rv.StarRating,
		valF64(rv.SentimentScore),
		rv.SentimentLabel,
		rv.HybridScore,
		domain.JoinCategories(rv.Categories),
		valTime(rv.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) FinalizeReviewEnrichment(ctx context.Context, reviewID int64, label string, sentimentScore, hybridScore float64) error {
	res, err := r.db.ExecContext(ctx, finalizeReviewSQL, label, sentimentScore, hybridScore, reviewID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("review %d: %w (already enriched or deleted)", reviewID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, getProductSQL, id))
}

func (r *Repo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
}

func (r *Repo) ListProductReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	return r.listReviews(ctx, listProductReviewsSQL, productID)
}

func (r *Repo) ListReviewsBySentiment(ctx context.Context, label string) ([]domain.Review, error) {
	return r.listReviews(ctx, listReviewsBySentimentSQL, label)
}

func (r *Repo) listReviews(ctx context.Context, query string, arg any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var desc, category, imageURL sql.NullString
	var price sql.NullFloat64

	err := row.Scan(
		&p.ID,
		&p.Name,
		&desc,
		&price,
		&category,
		&imageURL,
		&p.Scores.AverageRating,
		&p.Scores.HybridScore,
		&p.Scores.TotalReviews,
		&p.Scores.QualityScore,
		&p.Scores.PerformanceScore,
		&p.Scores.ShippingScore,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, err
	}

	if desc.Valid {
		s := desc.String
		p.Description = &s
	}
	if price.Valid {
		f := price.Float64
		p.Price = &f
	}
	if category.Valid {
		s := category.String
		p.Category = &s
	}
	if imageURL.Valid {
		s := imageURL.String
		p.ImageURL = &s
	}
	return p, nil
}

func scanReview(row rowScanner) (domain.Review, error) {
	var rv domain.Review
	var sentScore sql.NullFloat64
	var label, category sql.NullString
	var createdAt sql.NullTime

	err := row.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.Comment,
		&rv.StarRating,
		&sentScore,
		&label,
		&rv.HybridScore,
		&category,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}

	if sentScore.Valid {
		f := sentScore.Float64
		rv.SentimentScore = &f
	}
	if label.Valid {
		rv.SentimentLabel = label.String
	}
	if category.Valid {
		rv.Categories = domain.SplitCategories(category.String)
	}
	if createdAt.Valid {
		rv.CreatedAt = createdAt.Time
	}
	return rv, nil
}
