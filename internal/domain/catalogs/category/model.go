// Package category provides the product category catalog.
package category

import (
	"tillage/internal/core/entity"
)

// Category groups products for filtering and reporting.
// Hierarchy is supported through the base catalog parent reference.
type Category struct {
	entity.Catalog
}

// New creates a category with generated ID.
func New(code, name string) *Category {
	return &Category{Catalog: entity.NewCatalog(code, name)}
}
