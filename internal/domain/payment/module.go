package payment

import (
	orderRepo "khanmall/internal/domain/order/repository"
	"khanmall/internal/domain/payment/handler"
	"khanmall/internal/domain/payment/repository"
	"khanmall/internal/domain/payment/service"
	"khanmall/internal/pkg/middleware"
	"khanmall/internal/pkg/registry"
	"khanmall/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// Last: the engine drives the order module's repository.
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	events := repository.NewEventRepository(ctx.DB)
	orders := orderRepo.NewOrderRepository(ctx.DB)

	pool := worker.NewWorkerPool(events, 2, 500)
	pool.Start()

	svc := service.NewReconcileService(orders, &poolAuditor{pool: pool})
	h := handler.NewWebhookHandler(svc, events)

	setupRoutes(ctx.Router, h)
	return nil
}

// poolAuditor adapts the worker pool to the engine's Auditor seam.
type poolAuditor struct {
	pool *worker.WorkerPool
}

func (a *poolAuditor) Record(content, sender, result, reference string) {
	a.pool.AddTask(worker.EventTask{
		Content:   content,
		Sender:    sender,
		Result:    result,
		Reference: reference,
	})
}

func setupRoutes(r *gin.Engine, h *handler.WebhookHandler) {
	// Inbound SMS forwarder. Optionally guarded by the configured webhook
	// key; the key check lives in the handler so the route shape never
	// changes when it is enabled.
	r.POST("/webhook/payment-sms", h.ReceiveSMS)

	admin := r.Group("/admin/payment-events")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/", h.ListEvents)
	}
}
