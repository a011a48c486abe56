package dto

import (
	"tillage/internal/domain/catalogs/category"
)

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	CatalogResponse
}

// FromCategory creates CategoryResponse from domain entity.
func FromCategory(c *category.Category) CategoryResponse {
	return CategoryResponse{CatalogResponse: FromCatalog(c.Catalog)}
}

// CreateCategoryRequest for creating categories.
type CreateCategoryRequest struct {
	CreateCatalogRequest
}

// ToEntity converts request to domain entity.
func (r CreateCategoryRequest) ToEntity() *category.Category {
	c := category.New(r.Code, r.Name)
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	if r.Attributes != nil {
		c.Attributes = r.Attributes
	}
	return c
}

// UpdateCategoryRequest for updating categories.
type UpdateCategoryRequest struct {
	UpdateCatalogRequest
}

// ApplyTo maps the update onto an existing category.
func (r UpdateCategoryRequest) ApplyTo(c *category.Category) *category.Category {
	r.ApplyToCatalog(&c.Catalog)
	return c
}
