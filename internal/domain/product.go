package domain

type Product struct {
	ID          int64
	Name        string
	Description *string
	Price       *float64
	Category    *string
	ImageURL    *string
	Scores      ProductScores
}

// ProductScores are derived wholesale from the product's current review set.
// Zero reviews means every field is 0, never a stale prior value.
type ProductScores struct {
	AverageRating    float64
	HybridScore      float64
	TotalReviews     int
	QualityScore     float64 // quality_durability
	PerformanceScore float64 // usage_performance
	ShippingScore    float64 // service_delivery
}
