package entity

// LookupStatus distinguishes "nothing matched" from "the provider could not answer".
type LookupStatus string

const (
	// LookupFound means at least one item was returned.
	LookupFound LookupStatus = "found"
	// LookupEmpty means the provider answered but nothing matched.
	LookupEmpty LookupStatus = "empty"
	// LookupUnavailable means the provider failed (HTTP error, timeout, open breaker).
	LookupUnavailable LookupStatus = "unavailable"
)

// CategoryLookup is the outcome of resolving a term to provider categories.
type CategoryLookup struct {
	Term       string
	Status     LookupStatus
	Categories []Category
	Cause      error // set only when Status is LookupUnavailable
}

// RankingLookup is the outcome of fetching a category ranking.
type RankingLookup struct {
	CategoryID string
	Status     LookupStatus
	Recipes    []Recipe
	Cause      error // set only when Status is LookupUnavailable
}
