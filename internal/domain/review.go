package domain

import (
	"strings"
	"time"
)

// Canonical category identifiers. "general" is the implicit bucket for
// reviews that match no vocabulary keywords; it never gets an aggregate score.
const (
	CategoryQualityDurability = "quality_durability"
	CategoryUsagePerformance  = "usage_performance"
	CategoryServiceDelivery   = "service_delivery"
	CategoryGeneral           = "general"
)

// CanonicalCategories lists the scored categories in their fixed order.
var CanonicalCategories = []string{
	CategoryQualityDurability,
	CategoryUsagePerformance,
	CategoryServiceDelivery,
}

type Review struct {
	ID             int64
	ProductID      int64
	Comment        string
	StarRating     int // 1..5, immutable after creation
	SentimentLabel string
	// SentimentScore is the normalized positivity score, set exactly once
	// when enrichment completes; nil while the review is provisional.
	SentimentScore *float64
	HybridScore    float64
	Categories     []string // semantically a set, persisted as one CSV field
	CreatedAt      time.Time
}

// HasCategory reports set membership in the review's category tags.
func (r Review) HasCategory(category string) bool {
	for _, c := range r.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// JoinCategories renders a category set into its persisted CSV form.
func JoinCategories(cats []string) string {
	return strings.Join(cats, ",")
}

// SplitCategories parses the persisted CSV form back into a set.
func SplitCategories(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SentimentResult is the outcome of one classifier invocation. Never persisted
// directly; its fields land on the Review once enrichment succeeds.
type SentimentResult struct {
	// Label is the classifier's human-readable label, forwarded unchanged.
	Label string
	// Score is the raw model confidence in [0,1].
	Score float64
	// Normalized is the confidence rescaled onto a single positivity axis:
	// higher is more positive regardless of the predicted class.
	Normalized float64
}

// IsNeutral matches the label case-insensitively, as stored labels keep the
// classifier's capitalization.
func (s SentimentResult) IsNeutral() bool {
	return strings.EqualFold(s.Label, "neutral")
}
