package scoring

import (
	"fmt"
	"math"
	"strings"

	"review_pulse/internal/domain"
)

// Weights blend the normalized star rating with the sentiment signal.
// Both must be in [0,1] and sum to 1.0 (tolerance 0.001).
type Weights struct {
	Star      float64
	Sentiment float64
}

var DefaultWeights = Weights{Star: 0.5, Sentiment: 0.5}

func (w Weights) Validate() error {
	if w.Star < 0 || w.Star > 1 || w.Sentiment < 0 || w.Sentiment > 1 {
		return fmt.Errorf("%w: weights must be between 0.0 and 1.0", domain.ErrInvalidArgument)
	}
	if math.Abs(w.Star+w.Sentiment-1.0) > 0.001 {
		return fmt.Errorf("%w: weights must sum to 1.0", domain.ErrInvalidArgument)
	}
	return nil
}

// Calculator computes bounded hybrid scores. It is pure and safe for
// concurrent use.
type Calculator struct {
	w Weights
}

func NewCalculator(w Weights) (*Calculator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{w: w}, nil
}

// ReviewScore blends one review's star rating with its sentiment signal.
// A neutral label, or a missing sentiment score, yields the normalized star
// rating alone: an unsure signal never overrides an explicit user rating.
func (c *Calculator) ReviewScore(starRating int, sentimentScore *float64, sentimentLabel string) float64 {
	norm := normalizeStar(float64(starRating))
	if strings.EqualFold(sentimentLabel, "neutral") || sentimentScore == nil {
		return norm
	}
	return roundHalfUp(clamp01(c.w.Star*norm+c.w.Sentiment**sentimentScore), 2)
}

// ProductScore is the product-level overload over average inputs. A missing
// average star rating falls back to the fixed neutral 0.5; a missing average
// sentiment yields the normalized star rating alone.
func (c *Calculator) ProductScore(avgStarRating, avgSentimentScore *float64) float64 {
	if avgStarRating == nil {
		return 0.5
	}
	norm := normalizeStar(*avgStarRating)
	if avgSentimentScore == nil {
		return norm
	}
	return roundHalfUp(clamp01(c.w.Star*norm+c.w.Sentiment**avgSentimentScore), 2)
}

// normalizeStar maps a 1..5 rating onto [0.2,1.0] by dividing by 5.
// The minimum is not subtracted: a 1-star rating normalizes to 0.2, not 0,
// and downstream aggregates depend on that scale.
func normalizeStar(rating float64) float64 {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return roundHalfUp(rating/5, 4)
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// Round2 rounds to two decimal places half-up, the precision every persisted
// score uses.
func Round2(v float64) float64 {
	return roundHalfUp(v, 2)
}

// roundHalfUp rounds to the given number of decimal places with ties away
// from zero, matching decimal HALF_UP on the non-negative scores used here.
func roundHalfUp(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Floor(v*p+0.5) / p
}
