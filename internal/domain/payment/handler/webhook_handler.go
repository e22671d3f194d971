package handler

import (
	"net/http"

	"khanmall/internal/domain/payment/repository"
	"khanmall/internal/domain/payment/service"
	"khanmall/internal/pkg/config"
	"khanmall/pkg/response"
	"khanmall/pkg/utils"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	service service.ReconcileService
	events  repository.EventRepository
}

func NewWebhookHandler(s service.ReconcileService, events repository.EventRepository) *WebhookHandler {
	return &WebhookHandler{service: s, events: events}
}

type SMSInput struct {
	Content string `json:"content" binding:"required"`
	Sender  string `json:"sender"`
}

// ReceiveSMS is the inbound bank-SMS webhook. Every parseable request is
// answered 200 regardless of the reconciliation outcome — a 4xx would only
// make the SMS forwarder retry a message that will never match.
func (h *WebhookHandler) ReceiveSMS(c *gin.Context) {
	if key := config.GlobalConfig.Webhook.Key; key != "" {
		if c.GetHeader("X-Webhook-Key") != key {
			response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "Invalid webhook key")
			return
		}
	}

	var input SMSInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Reconcile(input.Content, input.Sender)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, result)
}

// ListEvents exposes the webhook audit trail to the back-office, filterable
// by outcome to review unmatched deliveries.
func (h *WebhookHandler) ListEvents(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := p.GetPageOffset()

	events, total, err := h.events.List(c.Query("result"), offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.PageResult{List: events, Total: total, Page: p.Page, Limit: p.Limit})
}
