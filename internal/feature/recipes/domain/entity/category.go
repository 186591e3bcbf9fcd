// Package entity defines the domain models for the recipes feature.
package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// Category is a provider-defined recipe category (small category level).
type Category struct {
	CategoryName string // Display name, e.g. "大根"
	CategoryURL  string // e.g. "https://recipe.rakuten.co.jp/category/12-449-1520/"
}

// ID returns the hierarchical category identifier embedded in CategoryURL.
// The identifier is the second path segment: /category/<id>/.
func (c Category) ID() (string, error) {
	u, err := url.Parse(c.CategoryURL)
	if err != nil {
		return "", fmt.Errorf("parse category url %q: %w", c.CategoryURL, err)
	}
	segments := strings.Split(u.Path, "/")
	if len(segments) < 3 || segments[2] == "" {
		return "", fmt.Errorf("category url %q has no id segment", c.CategoryURL)
	}
	return segments[2], nil
}
