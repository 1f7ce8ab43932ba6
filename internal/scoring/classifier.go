package scoring

import (
	"strings"

	"review_pulse/internal/domain"
)

// Classify tags review text with every canonical category whose vocabulary
// contains at least one case-insensitive substring match. Multiple matches
// are all retained, in canonical order; no match yields the "general"
// pseudo-category.
func Classify(text string, v *Vocabulary) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, id := range domain.CanonicalCategories {
		if containsKeyword(lower, v.Keywords(id)) {
			matched = append(matched, id)
		}
	}
	if len(matched) == 0 {
		return []string{domain.CategoryGeneral}
	}
	return matched
}

func containsKeyword(lowerText string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lowerText, k) {
			return true
		}
	}
	return false
}
