package handler

import (
	"errors"
	"net/http"

	"khanmall/internal/domain/order/model"
	"khanmall/internal/domain/order/service"
	"khanmall/pkg/response"
	"khanmall/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type CheckoutItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Size      string `json:"size"`
}

type CheckoutInput struct {
	Items        []CheckoutItemInput `json:"items" binding:"required,min=1,dive"`
	DeliveryType string              `json:"deliveryType" binding:"required,oneof=pickup city province"`
	Recipient    string              `json:"recipient"`
	Phone        string              `json:"phone"`
	Address      string              `json:"address"`
	City         string              `json:"city"`
	District     string              `json:"district"`
	DiscountCode string              `json:"discountCode"`
	Notes        string              `json:"notes"`
}

// Checkout creates an order and returns it with the payment reference the
// customer must quote in the bank transfer memo.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	items := make([]service.CheckoutItem, len(input.Items))
	for i, it := range input.Items {
		items[i] = service.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size}
	}

	order, err := h.service.Checkout(service.CheckoutInput{
		Items:        items,
		DeliveryType: model.DeliveryType(input.DeliveryType),
		Recipient:    input.Recipient,
		Phone:        input.Phone,
		Address:      input.Address,
		City:         input.City,
		District:     input.District,
		DiscountCode: input.DiscountCode,
		Notes:        input.Notes,
	})
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			response.Fail(c, response.ErrInsufficientStock, stockErr.Error())
		case errors.Is(err, service.ErrShippingRequired), errors.Is(err, service.ErrEmptyOrder):
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, http.StatusBadRequest, response.ErrProductNotFound, "Unknown product in order")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}

	response.Success(c, order)
}

// GetStatus is the polling endpoint: current status and payment status only,
// no side effects.
func (h *OrderHandler) GetStatus(c *gin.Context) {
	view, err := h.service.GetStatus(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, view)
}

// Get returns the full order for the confirmation screen.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, order)
}

// List returns orders for the admin back-office, optionally filtered by status.
func (h *OrderHandler) List(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := p.GetPageOffset()

	orders, total, err := h.service.List(model.OrderStatus(c.Query("status")), offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.PageResult{List: orders, Total: total, Page: p.Page, Limit: p.Limit})
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

// UpdateStatus applies an admin fulfillment transition.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.UpdateStatus(c.Param("id"), model.OrderStatus(input.Status))
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.Success(c, order)
}

type UpdatePaymentStatusInput struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=pending paid failed refunded"`
}

// UpdatePaymentStatus applies an admin financial transition (manual settle,
// refund).
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	var input UpdatePaymentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.UpdatePaymentStatus(c.Param("id"), model.PaymentStatus(input.PaymentStatus))
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, response.ErrInvalidTransition, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
