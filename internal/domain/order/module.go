package order

import (
	catalogRepo "khanmall/internal/domain/catalog/repository"
	discountRepo "khanmall/internal/domain/discount/repository"
	discountService "khanmall/internal/domain/discount/service"
	"khanmall/internal/domain/order/handler"
	"khanmall/internal/domain/order/repository"
	"khanmall/internal/domain/order/service"
	"khanmall/internal/pkg/middleware"
	"khanmall/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// After catalog and discount, whose repositories it writes through.
	return 10
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	oRepo := repository.NewOrderRepository(ctx.DB)
	ledger := catalogRepo.NewCatalogRepository(ctx.DB)
	discounts := discountService.NewDiscountService(discountRepo.NewDiscountRepository(ctx.DB))

	svc := service.NewOrderService(oRepo, ledger, discounts)
	h := handler.NewOrderHandler(svc)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	// Storefront checkout and polling
	orders := r.Group("/orders")
	{
		orders.POST("/", h.Checkout)
		orders.GET("/:id", h.Get)
		orders.GET("/:id/status", h.GetStatus)
	}

	// Admin back-office
	admin := r.Group("/admin/orders")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/", h.List)
		admin.GET("/:id", h.Get)
		admin.PUT("/:id/status", h.UpdateStatus)
		admin.PUT("/:id/payment-status", h.UpdatePaymentStatus)
	}
}
