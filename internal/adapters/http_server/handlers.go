package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_pulse/internal/app"
	"review_pulse/internal/domain"
	"review_pulse/internal/scoring"
)

type Handlers struct {
	Q       *app.QueryService
	Reviews *app.ReviewService
	P       *app.ProductService
	Vocab   *scoring.Vocabulary
	// SentimentHealthy probes the enrichment backend for /healthz detail.
	SentimentHealthy func(ctx context.Context) bool
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.health)

	s.mux.Get("/v1/products", h.listProducts)
	s.mux.Post("/v1/products", h.createProduct)
	s.mux.Get("/v1/products/{id}", h.getProduct)
	s.mux.Delete("/v1/products/{id}", h.deleteProduct)
	s.mux.Get("/v1/products/{id}/reviews", h.listProductReviews)
	s.mux.Post("/v1/products/{id}/reviews", h.createReview)
	s.mux.Post("/v1/products/{id}/recompute", h.recomputeProduct)

	s.mux.Get("/v1/reviews", h.listReviewsBySentiment)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Delete("/v1/reviews/{id}", h.deleteReview)

	s.mux.Get("/v1/categories", h.listCategories)
}

// ---- DTOs ----

type reviewDTO struct {
	ID             int64    `json:"id"`
	ProductID      int64    `json:"product_id"`
	Comment        string   `json:"comment"`
	StarRating     int      `json:"star_rating"`
	SentimentScore *float64 `json:"sentiment_score"`
	SentimentLabel string   `json:"sentiment_label"`
	HybridScore    float64  `json:"hybrid_score"`
	Category       string   `json:"category"`
	CreatedAt      string   `json:"created_at"`
}

func toReviewDTO(r domain.Review) reviewDTO {
	return reviewDTO{
		ID:             r.ID,
		ProductID:      r.ProductID,
		Comment:        r.Comment,
		StarRating:     r.StarRating,
		SentimentScore: r.SentimentScore,
		SentimentLabel: r.SentimentLabel,
		HybridScore:    r.HybridScore,
		Category:       domain.JoinCategories(r.Categories),
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type scoresDTO struct {
	AverageRating    float64 `json:"average_rating"`
	HybridScore      float64 `json:"hybrid_score"`
	TotalReviews     int     `json:"total_reviews"`
	QualityScore     float64 `json:"quality_score"`
	PerformanceScore float64 `json:"performance_score"`
	ShippingScore    float64 `json:"shipping_score"`
}

func toScoresDTO(s domain.ProductScores) scoresDTO {
	return scoresDTO{
		AverageRating:    s.AverageRating,
		HybridScore:      s.HybridScore,
		TotalReviews:     s.TotalReviews,
		QualityScore:     s.QualityScore,
		PerformanceScore: s.PerformanceScore,
		ShippingScore:    s.ShippingScore,
	}
}

type productDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Scores      scoresDTO `json:"scores"`
}

func toProductDTO(p domain.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Scores:      toScoresDTO(p.Scores),
	}
}

// ---- helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeErr maps domain sentinel errors onto problem responses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeProblem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- handlers ----

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"status": "ok"}
	if h.SentimentHealthy != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		out["sentiment"] = h.SentimentHealthy(ctx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Q.ListProducts(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	writeCached(w, r, out)
}

func (h *Handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	p, err := h.Q.GetProduct(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCached(w, r, toProductDTO(p))
}

func (h *Handlers) createProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string   `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		ImageURL    *string  `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	p, err := h.P.CreateProduct(r.Context(), domain.Product{
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Category:    body.Category,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

func (h *Handlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.P.DeleteProduct(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listProductReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	reviews, err := h.Q.ListProductReviews(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]reviewDTO, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewDTO(rv))
	}
	writeCached(w, r, out)
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var body struct {
		Comment    string `json:"comment"`
		StarRating int    `json:"star_rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	review, err := h.Reviews.CreateReview(r.Context(), productID, body.Comment, body.StarRating)
	if err != nil {
		writeErr(w, err)
		return
	}
	// 201 carries the provisional state; enrichment lands asynchronously
	writeJSON(w, http.StatusCreated, toReviewDTO(review))
}

func (h *Handlers) recomputeProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	scores, err := h.Reviews.RecomputeProductScores(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoresDTO(scores))
}

func (h *Handlers) listReviewsBySentiment(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("sentiment")
	reviews, err := h.Q.ListReviewsBySentiment(r.Context(), label)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]reviewDTO, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewDTO(rv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	review, err := h.Q.GetReview(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewDTO(review))
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.Reviews.DeleteReview(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	type categoryDTO struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
	}
	out := map[string]categoryDTO{}
	for _, id := range domain.CanonicalCategories {
		if c, ok := h.Vocab.Category(id); ok {
			out[id] = categoryDTO{Name: c.Name, Description: c.Description, Keywords: c.Keywords}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}
