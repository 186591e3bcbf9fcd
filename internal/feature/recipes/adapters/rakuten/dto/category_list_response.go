// Package dto defines data transfer objects for the Rakuten Recipe API responses.
package dto

import "encoding/json"

// CategoryListResponse represents the JSON response from the CategoryList endpoint.
// Only the small-category level is requested (categoryType=small).
type CategoryListResponse struct {
	Result struct {
		Small []SmallCategory `json:"small"`
	} `json:"result"`
}

// SmallCategory is one entry of result.small.
type SmallCategory struct {
	CategoryID       json.Number `json:"categoryId"`
	CategoryName     string      `json:"categoryName"`
	CategoryURL      string      `json:"categoryUrl"`
	ParentCategoryID json.Number `json:"parentCategoryId"`
}
