package scoring_test

import (
	"math"
	"testing"

	"review_pulse/internal/scoring"
)

func mustCalc(t *testing.T, w scoring.Weights) *scoring.Calculator {
	t.Helper()
	c, err := scoring.NewCalculator(w)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c
}

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestReviewScore_NeutralOrMissingSentimentUsesStarOnly(t *testing.T) {
	c := mustCalc(t, scoring.DefaultWeights)

	// r/5 exactly for every rating; a 1-star rating maps to 0.2, not 0
	want := map[int]float64{1: 0.2, 2: 0.4, 3: 0.6, 4: 0.8, 5: 1.0}
	for r, exp := range want {
		if got := c.ReviewScore(r, nil, "neutral"); !almostEq(got, exp) {
			t.Fatalf("ReviewScore(%d, nil, neutral) = %v, want %v", r, got, exp)
		}
		if got := c.ReviewScore(r, nil, ""); !almostEq(got, exp) {
			t.Fatalf("ReviewScore(%d, nil, \"\") = %v, want %v", r, got, exp)
		}
		// neutral label overrides a present score, capitalization ignored
		s := 0.9
		if got := c.ReviewScore(r, &s, "Neutral"); !almostEq(got, exp) {
			t.Fatalf("ReviewScore(%d, 0.9, Neutral) = %v, want %v", r, got, exp)
		}
	}
}

func TestReviewScore_BlendsStarAndSentiment(t *testing.T) {
	c := mustCalc(t, scoring.DefaultWeights)

	cases := []struct {
		rating int
		score  float64
		label  string
		want   float64
	}{
		{5, 0.9, "Positive", 0.95},
		{1, 0.1, "Negative", 0.15},
		{3, 0.5, "Positive", 0.55},
		{4, 0.0, "Negative", 0.4},
		{2, 1.0, "Positive", 0.7},
	}
	for _, tc := range cases {
		s := tc.score
		if got := c.ReviewScore(tc.rating, &s, tc.label); !almostEq(got, tc.want) {
			t.Fatalf("ReviewScore(%d, %v, %s) = %v, want %v", tc.rating, tc.score, tc.label, got, tc.want)
		}
	}
}

func TestReviewScore_AlwaysBounded(t *testing.T) {
	c := mustCalc(t, scoring.DefaultWeights)
	for r := 1; r <= 5; r++ {
		for s := 0.0; s <= 1.0; s += 0.05 {
			sc := s
			got := c.ReviewScore(r, &sc, "Positive")
			if got < 0 || got > 1 {
				t.Fatalf("ReviewScore(%d, %v) = %v out of [0,1]", r, s, got)
			}
		}
	}
}

func TestProductScore_Fallbacks(t *testing.T) {
	c := mustCalc(t, scoring.DefaultWeights)

	// absent average star rating: fixed neutral default
	if got := c.ProductScore(nil, nil); !almostEq(got, 0.5) {
		t.Fatalf("ProductScore(nil, nil) = %v, want 0.5", got)
	}

	// absent average sentiment: normalized star rating alone
	avg := 4.0
	if got := c.ProductScore(&avg, nil); !almostEq(got, 0.8) {
		t.Fatalf("ProductScore(4, nil) = %v, want 0.8", got)
	}

	// both present: weighted blend
	star, sent := 3.0, 0.5
	if got := c.ProductScore(&star, &sent); !almostEq(got, 0.55) {
		t.Fatalf("ProductScore(3, 0.5) = %v, want 0.55", got)
	}
}

func TestWeights_Validation(t *testing.T) {
	bad := []scoring.Weights{
		{Star: -0.1, Sentiment: 1.1},
		{Star: 0.3, Sentiment: 0.3},
		{Star: 0.8, Sentiment: 0.8},
		{Star: 1.2, Sentiment: -0.2},
	}
	for _, w := range bad {
		if _, err := scoring.NewCalculator(w); err == nil {
			t.Fatalf("NewCalculator(%+v) accepted invalid weights", w)
		}
	}

	good := []scoring.Weights{
		{Star: 0.5, Sentiment: 0.5},
		{Star: 0.7, Sentiment: 0.3},
		{Star: 1, Sentiment: 0},
		{Star: 0.4995, Sentiment: 0.5},
	}
	for _, w := range good {
		if _, err := scoring.NewCalculator(w); err != nil {
			t.Fatalf("NewCalculator(%+v): %v", w, err)
		}
	}
}

func TestWeights_SkewAffectsBlend(t *testing.T) {
	c := mustCalc(t, scoring.Weights{Star: 0.7, Sentiment: 0.3})
	s := 1.0
	// 0.7*0.2 + 0.3*1.0 = 0.44
	if got := c.ReviewScore(1, &s, "Positive"); !almostEq(got, 0.44) {
		t.Fatalf("skewed ReviewScore = %v, want 0.44", got)
	}
}
