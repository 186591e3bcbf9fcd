package entity

import "time"

// CategoryRanking pairs a resolved category with its ranking.
type CategoryRanking struct {
	Category   Category
	CategoryID string
	Ranking    RankingLookup
}

// SearchResult is the full label → recipes pipeline output for one user action.
type SearchResult struct {
	Label      string // detector label as selected by the user
	Term       string // translated term used for category matching
	Status     LookupStatus
	Categories []CategoryRanking
}

// RecipeCount returns the number of recipes across all found rankings.
func (r *SearchResult) RecipeCount() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Ranking.Recipes)
	}
	return n
}

// SearchRecord is a persisted summary of one search.
type SearchRecord struct {
	ID          uint
	Label       string
	Term        string
	Status      LookupStatus
	CategoryIDs []string
	RecipeCount int
	SearchedAt  time.Time
}
