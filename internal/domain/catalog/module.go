package catalog

import (
	"khanmall/internal/domain/catalog/handler"
	"khanmall/internal/domain/catalog/repository"
	"khanmall/internal/domain/catalog/service"
	"khanmall/internal/pkg/middleware"
	"khanmall/internal/pkg/registry"
	"khanmall/pkg/cache"

	"github.com/gin-gonic/gin"
)

// CatalogModule wires products, categories and banners.
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	// Catalog first: order and payment depend on its stock ledger.
	return 1
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewCatalogRepository(ctx.DB)
	svc := service.NewCatalogService(repo, cache.NewRedisCache(ctx.Redis, "catalog"))
	h := handler.NewCatalogHandler(svc)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CatalogHandler) {
	// Public storefront reads
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/categories", h.ListCategories)
	r.GET("/banners", h.ListBanners)

	// Admin back-office
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)

		admin.POST("/categories", h.CreateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.POST("/banners", h.CreateBanner)
		admin.PUT("/banners/:id", h.UpdateBanner)
		admin.DELETE("/banners/:id", h.DeleteBanner)
	}
}
