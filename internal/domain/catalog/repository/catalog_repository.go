package repository

import (
	"errors"

	"khanmall/internal/domain/catalog/model"

	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a conditional stock decrement finds
// fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

type CatalogRepository interface {
	CreateProduct(p *model.Product) error
	GetProduct(id string) (*model.Product, error)
	ListProducts(categoryID string, offset, limit int) ([]model.Product, int64, error)
	UpdateProduct(p *model.Product) error
	DeleteProduct(id string) error

	// ReserveStock decrements stock only if at least qty units remain.
	// The check and the decrement are a single conditional UPDATE so that
	// concurrent checkouts can never oversell.
	ReserveStock(productID string, qty int) error
	// ReleaseStock adds units back unconditionally (cancellation, rollback).
	ReleaseStock(productID string, qty int) error

	CreateCategory(c *model.Category) error
	ListCategories() ([]model.Category, error)
	DeleteCategory(id string) error

	CreateBanner(b *model.Banner) error
	GetBanner(id string) (*model.Banner, error)
	ListBanners(activeOnly bool) ([]model.Banner, error)
	UpdateBanner(b *model.Banner) error
	DeleteBanner(id string) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateProduct(p *model.Product) error {
	return r.db.Create(p).Error
}

func (r *catalogRepository) GetProduct(id string) (*model.Product, error) {
	var p model.Product
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) ListProducts(categoryID string, offset, limit int) ([]model.Product, int64, error) {
	var (
		products []model.Product
		total    int64
	)

	query := r.db.Model(&model.Product{}).Where("is_active = ?", true)
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *catalogRepository) UpdateProduct(p *model.Product) error {
	return r.db.Save(p).Error
}

func (r *catalogRepository) DeleteProduct(id string) error {
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *catalogRepository) ReserveStock(productID string, qty int) error {
	result := r.db.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *catalogRepository) ReleaseStock(productID string, qty int) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *catalogRepository) CreateCategory(c *model.Category) error {
	return r.db.Create(c).Error
}

func (r *catalogRepository) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Order("ordering ASC").Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) DeleteCategory(id string) error {
	return r.db.Delete(&model.Category{}, "id = ?", id).Error
}

func (r *catalogRepository) CreateBanner(b *model.Banner) error {
	return r.db.Create(b).Error
}

func (r *catalogRepository) GetBanner(id string) (*model.Banner, error) {
	var b model.Banner
	if err := r.db.First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *catalogRepository) ListBanners(activeOnly bool) ([]model.Banner, error) {
	var banners []model.Banner
	query := r.db.Order("ordering ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&banners).Error
	return banners, err
}

func (r *catalogRepository) UpdateBanner(b *model.Banner) error {
	return r.db.Save(b).Error
}

func (r *catalogRepository) DeleteBanner(id string) error {
	return r.db.Delete(&model.Banner{}, "id = ?", id).Error
}
