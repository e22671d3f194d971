package service

import (
	"context"
	"time"

	"khanmall/internal/domain/catalog/model"
	"khanmall/internal/domain/catalog/repository"
	"khanmall/pkg/cache"
	"khanmall/pkg/logger"

	"go.uber.org/zap"
)

const (
	bannerCacheKey    = "banners:active"
	productCachePref  = "product:"
	productDetailTTL  = 5 * time.Minute
	bannerListTTL     = 10 * time.Minute
)

type CatalogService interface {
	CreateProduct(p *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(categoryID string, offset, limit int) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateCategory(c *model.Category) error
	ListCategories() ([]model.Category, error)
	DeleteCategory(id string) error

	CreateBanner(ctx context.Context, b *model.Banner) error
	GetBanner(id string) (*model.Banner, error)
	ListBanners(ctx context.Context) ([]model.Banner, error)
	UpdateBanner(ctx context.Context, b *model.Banner) error
	DeleteBanner(ctx context.Context, id string) error
}

type catalogService struct {
	repo  repository.CatalogRepository
	cache cache.Cache
}

func NewCatalogService(repo repository.CatalogRepository, c cache.Cache) CatalogService {
	return &catalogService{repo: repo, cache: c}
}

func (s *catalogService) CreateProduct(p *model.Product) error {
	return s.repo.CreateProduct(p)
}

// GetProduct reads through the cache; on a miss the database row is cached
// for a short TTL.
func (s *catalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var cached model.Product
	if err := s.cache.Get(ctx, productCachePref+id, &cached); err == nil {
		return &cached, nil
	}

	p, err := s.repo.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, productCachePref+id, p, productDetailTTL); err != nil {
		logger.Log.Warn("product cache set failed", zap.String("product_id", id), zap.Error(err))
	}
	return p, nil
}

func (s *catalogService) ListProducts(categoryID string, offset, limit int) ([]model.Product, int64, error) {
	return s.repo.ListProducts(categoryID, offset, limit)
}

func (s *catalogService) UpdateProduct(ctx context.Context, p *model.Product) error {
	if err := s.repo.UpdateProduct(p); err != nil {
		return err
	}
	return s.cache.Delete(ctx, productCachePref+p.ID)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(id); err != nil {
		return err
	}
	return s.cache.Delete(ctx, productCachePref+id)
}

func (s *catalogService) CreateCategory(c *model.Category) error {
	return s.repo.CreateCategory(c)
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.repo.ListCategories()
}

func (s *catalogService) DeleteCategory(id string) error {
	return s.repo.DeleteCategory(id)
}

func (s *catalogService) CreateBanner(ctx context.Context, b *model.Banner) error {
	if err := s.repo.CreateBanner(b); err != nil {
		return err
	}
	return s.cache.Delete(ctx, bannerCacheKey)
}

func (s *catalogService) GetBanner(id string) (*model.Banner, error) {
	return s.repo.GetBanner(id)
}

func (s *catalogService) ListBanners(ctx context.Context) ([]model.Banner, error) {
	var cached []model.Banner
	if err := s.cache.Get(ctx, bannerCacheKey, &cached); err == nil {
		return cached, nil
	}

	banners, err := s.repo.ListBanners(true)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, bannerCacheKey, banners, bannerListTTL); err != nil {
		logger.Log.Warn("banner cache set failed", zap.Error(err))
	}
	return banners, nil
}

func (s *catalogService) UpdateBanner(ctx context.Context, b *model.Banner) error {
	if err := s.repo.UpdateBanner(b); err != nil {
		return err
	}
	return s.cache.Delete(ctx, bannerCacheKey)
}

func (s *catalogService) DeleteBanner(ctx context.Context, id string) error {
	if err := s.repo.DeleteBanner(id); err != nil {
		return err
	}
	return s.cache.Delete(ctx, bannerCacheKey)
}
