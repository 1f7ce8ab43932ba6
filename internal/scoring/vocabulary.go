package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"review_pulse/internal/domain"
)

// Category is one vocabulary entry: a display name, a description, and the
// ordered keyword list matched against review text.
type Category struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Vocabulary maps category identifiers to their keyword sets. It is built
// once at startup and shared read-only by every classification call.
type Vocabulary struct {
	categories map[string]Category
}

type vocabularyFile struct {
	Categories map[string]Category `json:"categories"`
}

// LoadVocabulary reads the keywords JSON from path. On any failure (missing
// file, bad JSON, missing canonical categories) it logs a warning and falls
// back to the built-in default vocabulary, so startup never blocks on the
// config source.
func LoadVocabulary(path string) *Vocabulary {
	v, err := readVocabulary(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("keyword vocabulary unavailable, using built-in defaults")
		return defaultVocabulary()
	}
	log.Info().Str("path", path).Int("categories", len(v.categories)).Msg("keyword vocabulary loaded")
	return v
}

func readVocabulary(path string) (*Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f vocabularyFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("no categories in %s", path)
	}
	for _, id := range domain.CanonicalCategories {
		c, ok := f.Categories[id]
		if !ok || len(c.Keywords) == 0 {
			return nil, fmt.Errorf("category %q missing or has no keywords", id)
		}
	}
	// lowercase keywords up front; classification is case-insensitive
	cats := make(map[string]Category, len(f.Categories))
	for id, c := range f.Categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		cats[id] = Category{Name: c.Name, Description: c.Description, Keywords: kws}
	}
	return &Vocabulary{categories: cats}, nil
}

func defaultVocabulary() *Vocabulary {
	return &Vocabulary{categories: map[string]Category{
		domain.CategoryQualityDurability: {
			Name:        "Quality & Durability",
			Description: "Materials, workmanship, how long the product lasts",
			Keywords:    []string{"quality", "material", "sturdy", "durable", "broken", "cracked", "flimsy", "solid"},
		},
		domain.CategoryUsagePerformance: {
			Name:        "Usage & Performance",
			Description: "Functionality, how well the product does its job",
			Keywords:    []string{"performance", "works", "speed", "easy", "comfortable", "battery", "excellent"},
		},
		domain.CategoryServiceDelivery: {
			Name:        "Service & Delivery",
			Description: "Shipping speed, packaging, customer support",
			Keywords:    []string{"shipping", "delivery", "package", "courier", "support", "arrived", "late"},
		},
	}}
}

// Category returns the entry for id, if present.
func (v *Vocabulary) Category(id string) (Category, bool) {
	c, ok := v.categories[id]
	return c, ok
}

// Keywords returns the keyword list for id, empty when unknown.
func (v *Vocabulary) Keywords(id string) []string {
	return v.categories[id].Keywords
}
