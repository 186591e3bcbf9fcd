package dto

import "encoding/json"

// CategoryRankingResponse represents the JSON response from the CategoryRanking endpoint.
type CategoryRankingResponse struct {
	Result []RankingRecipe `json:"result"`
}

// RankingRecipe is one entry of the ranking, in provider order.
type RankingRecipe struct {
	RecipeID          json.Number `json:"recipeId"`
	RecipeTitle       string      `json:"recipeTitle"`
	RecipeURL         string      `json:"recipeUrl"`
	FoodImageURL      string      `json:"foodImageUrl"`
	MediumImageURL    string      `json:"mediumImageUrl"`
	SmallImageURL     string      `json:"smallImageUrl"`
	Nickname          string      `json:"nickname"`
	RecipeDescription string      `json:"recipeDescription"`
	RecipeMaterial    []string    `json:"recipeMaterial"`
	RecipeIndication  string      `json:"recipeIndication"`
	RecipeCost        string      `json:"recipeCost"`
	Rank              string      `json:"rank"` // provider's own rank string; ordering comes from array position
}
