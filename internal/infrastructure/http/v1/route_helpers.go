// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tillage/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Reads are open to any authenticated staff; mutations are gated to
// managers.
//
// Usage:
//
//	repo := catalog_repo.NewCategoryRepo(cfg.TxManager)
//	service := domain.NewCatalogService(...)
//	handler := handlers.NewCategoryHandler(baseHandler, service)
//	RegisterCatalogRoutes(api.Group("/categories"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	manager := middleware.RequireManager()

	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", manager, handler.Create)
	group.PUT("/:id", manager, handler.Update)
	group.DELETE("/:id", manager, handler.Delete)
	group.POST("/:id/deletion-mark", manager, handler.SetDeletionMark)
}
