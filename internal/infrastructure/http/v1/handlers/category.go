package handlers

import (
	"tillage/internal/domain"
	"tillage/internal/domain/catalogs/category"
	"tillage/internal/infrastructure/http/v1/dto"
)

// CategoryHandler handles category catalog endpoints.
type CategoryHandler struct {
	*CatalogHandler[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(base *BaseHandler, service *domain.CatalogService[*category.Category]) *CategoryHandler {
	return &CategoryHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]{
			Service:    service,
			EntityName: "category",
			MapCreateDTO: func(req dto.CreateCategoryRequest) (*category.Category, error) {
				return req.ToEntity(), nil
			},
			MapUpdateDTO: func(req dto.UpdateCategoryRequest, existing *category.Category) (*category.Category, error) {
				return req.ApplyTo(existing), nil
			},
			MapToDTO: func(c *category.Category) any {
				return dto.FromCategory(c)
			},
		}),
	}
}
