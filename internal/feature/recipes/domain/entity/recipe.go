package entity

// Recipe is one entry of a category ranking.
// Rank is 1-based and mirrors the order the provider returned.
type Recipe struct {
	Rank             int
	FoodImageURL     string
	RecipeTitle      string
	RecipeURL        string
	RecipeMaterial   []string
	RecipeIndication string // cooking time, e.g. "約10分"

	// Thumbnail is a fixed-width data URI; empty until normalized.
	Thumbnail string
	// ThumbnailFailed reports that normalization failed for this record only.
	ThumbnailFailed bool
}
