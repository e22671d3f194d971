package handler

import (
	"net/http"
	"time"

	"khanmall/internal/domain/discount/model"
	"khanmall/internal/domain/discount/service"
	"khanmall/pkg/response"
	"khanmall/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DiscountHandler struct {
	service service.DiscountService
}

func NewDiscountHandler(s service.DiscountService) *DiscountHandler {
	return &DiscountHandler{service: s}
}

type DiscountInput struct {
	Code        string    `json:"code" binding:"required,alphanum"`
	Type        string    `json:"type" binding:"required,oneof=percentage fixed"`
	Value       int64     `json:"value" binding:"required,gt=0"`
	MinOrder    *int64    `json:"minOrder"`
	MaxDiscount *int64    `json:"maxDiscount"`
	UsageLimit  *int      `json:"usageLimit"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required"`
	IsActive    *bool     `json:"isActive"`
}

// Create creates a discount code (admin).
func (h *DiscountHandler) Create(c *gin.Context) {
	var input DiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	d := &model.Discount{
		Code:        input.Code,
		Type:        model.DiscountType(input.Type),
		Value:       input.Value,
		MinOrder:    input.MinOrder,
		MaxDiscount: input.MaxDiscount,
		UsageLimit:  input.UsageLimit,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    active,
	}
	if err := h.service.Create(d); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, d)
}

// List returns discount codes with pagination (admin).
func (h *DiscountHandler) List(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := p.GetPageOffset()

	discounts, total, err := h.service.List(offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.PageResult{List: discounts, Total: total, Page: p.Page, Limit: p.Limit})
}

// Update edits a discount code (admin). UsedCount is not editable: it only
// moves through checkout consumption.
func (h *DiscountHandler) Update(c *gin.Context) {
	d, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrDiscountNotFound, "Discount not found")
		return
	}

	var input DiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	d.Code = input.Code
	d.Type = model.DiscountType(input.Type)
	d.Value = input.Value
	d.MinOrder = input.MinOrder
	d.MaxDiscount = input.MaxDiscount
	d.UsageLimit = input.UsageLimit
	d.StartDate = input.StartDate
	d.EndDate = input.EndDate
	if input.IsActive != nil {
		d.IsActive = *input.IsActive
	}

	if err := h.service.Update(d); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, d)
}

// Delete removes a discount code (admin).
func (h *DiscountHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, nil)
}
