package discount

import (
	"khanmall/internal/domain/discount/handler"
	"khanmall/internal/domain/discount/repository"
	"khanmall/internal/domain/discount/service"
	"khanmall/internal/pkg/middleware"
	"khanmall/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

type DiscountModule struct{}

func init() {
	registry.Register(&DiscountModule{})
}

func (m *DiscountModule) Name() string {
	return "discount"
}

func (m *DiscountModule) Priority() int {
	return 5
}

func (m *DiscountModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewDiscountRepository(ctx.DB)
	svc := service.NewDiscountService(repo)
	h := handler.NewDiscountHandler(svc)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.DiscountHandler) {
	admin := r.Group("/admin/discounts")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/", h.Create)
		admin.GET("/", h.List)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}
