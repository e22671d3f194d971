package handler

import (
	"errors"
	"net/http"

	"khanmall/internal/domain/catalog/model"
	"khanmall/internal/domain/catalog/service"
	"khanmall/pkg/response"
	"khanmall/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

type ProductInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" binding:"required,gt=0"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes"`
	CategoryID  string   `json:"categoryId"`
	Stock       int      `json:"stock" binding:"gte=0"`
	IsActive    *bool    `json:"isActive"`
}

// ListProducts returns active products, optionally filtered by category.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := p.GetPageOffset()

	products, total, err := h.service.ListProducts(c.Query("category"), offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{List: products, Total: total, Page: p.Page, Limit: p.Limit})
}

// GetProduct returns a single product by id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Product not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, p)
}

// CreateProduct creates a product (admin).
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	p := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Images:      input.Images,
		Sizes:       input.Sizes,
		CategoryID:  input.CategoryID,
		Stock:       input.Stock,
		IsActive:    active,
	}
	if err := h.service.CreateProduct(p); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, p)
}

// UpdateProduct updates a product (admin).
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	p, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Product not found")
		return
	}

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	p.Name = input.Name
	p.Description = input.Description
	p.Price = input.Price
	p.Images = input.Images
	p.Sizes = input.Sizes
	p.CategoryID = input.CategoryID
	p.Stock = input.Stock
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}

	if err := h.service.UpdateProduct(c.Request.Context(), p); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, p)
}

// DeleteProduct soft-deletes a product (admin).
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, nil)
}

type CategoryInput struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	Ordering int    `json:"ordering"`
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, categories)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	cat := &model.Category{Name: input.Name, Slug: input.Slug, Ordering: input.Ordering}
	if err := h.service.CreateCategory(cat); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, cat)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.service.DeleteCategory(c.Param("id")); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, nil)
}

type BannerInput struct {
	Title    string `json:"title"`
	Image    string `json:"image" binding:"required"`
	Link     string `json:"link"`
	Ordering int    `json:"ordering"`
	IsActive *bool  `json:"isActive"`
}

func (h *CatalogHandler) ListBanners(c *gin.Context) {
	banners, err := h.service.ListBanners(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, banners)
}

func (h *CatalogHandler) CreateBanner(c *gin.Context) {
	var input BannerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	b := &model.Banner{Title: input.Title, Image: input.Image, Link: input.Link, Ordering: input.Ordering, IsActive: active}
	if err := h.service.CreateBanner(c.Request.Context(), b); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, b)
}

// UpdateBanner updates a banner (admin).
func (h *CatalogHandler) UpdateBanner(c *gin.Context) {
	b, err := h.service.GetBanner(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrBannerNotFound, "Banner not found")
		return
	}

	var input BannerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	b.Title = input.Title
	b.Image = input.Image
	b.Link = input.Link
	b.Ordering = input.Ordering
	if input.IsActive != nil {
		b.IsActive = *input.IsActive
	}

	if err := h.service.UpdateBanner(c.Request.Context(), b); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, b)
}

func (h *CatalogHandler) DeleteBanner(c *gin.Context) {
	if err := h.service.DeleteBanner(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, nil)
}
