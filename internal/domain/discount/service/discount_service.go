package service

import (
	"time"

	"khanmall/internal/domain/discount/model"
	"khanmall/internal/domain/discount/repository"
	"khanmall/pkg/logger"

	"go.uber.org/zap"
)

type DiscountService interface {
	Create(d *model.Discount) error
	Get(id string) (*model.Discount, error)
	List(offset, limit int) ([]model.Discount, int64, error)
	Update(d *model.Discount) error
	Delete(id string) error

	// Apply evaluates and consumes a code for a checkout. It returns the
	// discount amount, or 0 when the code is not applicable for any reason —
	// a bad code never fails the checkout, the order just proceeds at full
	// price.
	Apply(code string, subtotal int64, now time.Time) int64
}

type discountService struct {
	repo repository.DiscountRepository
}

func NewDiscountService(repo repository.DiscountRepository) DiscountService {
	return &discountService{repo: repo}
}

func (s *discountService) Create(d *model.Discount) error {
	return s.repo.Create(d)
}

func (s *discountService) Get(id string) (*model.Discount, error) {
	return s.repo.GetByID(id)
}

func (s *discountService) List(offset, limit int) ([]model.Discount, int64, error) {
	return s.repo.List(offset, limit)
}

func (s *discountService) Update(d *model.Discount) error {
	return s.repo.Update(d)
}

func (s *discountService) Delete(id string) error {
	return s.repo.Delete(id)
}

func (s *discountService) Apply(code string, subtotal int64, now time.Time) int64 {
	if code == "" {
		return 0
	}

	d, err := s.repo.GetByCode(code)
	if err != nil {
		return 0
	}

	amount := Evaluate(d, subtotal, now)
	if amount == 0 {
		return 0
	}

	// The increment only succeeds while used_count is under the limit, so a
	// concurrent checkout racing for the last use downgrades to full price
	// here instead of overspending the code.
	if err := s.repo.ConsumeUsage(d.ID); err != nil {
		logger.Log.Info("discount consume failed, order proceeds at full price",
			zap.String("code", d.Code), zap.Error(err))
		return 0
	}

	return amount
}

// Evaluate returns the discount amount a code yields for the given subtotal,
// or 0 when the code is not applicable. It does not consume a use.
func Evaluate(d *model.Discount, subtotal int64, now time.Time) int64 {
	if !d.IsActive {
		return 0
	}
	if now.Before(d.StartDate) || now.After(d.EndDate) {
		return 0
	}
	if d.MinOrder != nil && subtotal < *d.MinOrder {
		return 0
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return 0
	}

	switch d.Type {
	case model.TypePercentage:
		amount := (subtotal*d.Value + 50) / 100
		if d.MaxDiscount != nil && amount > *d.MaxDiscount {
			amount = *d.MaxDiscount
		}
		return amount
	case model.TypeFixed:
		// Deliberately not clamped to the subtotal; a fixed discount larger
		// than the order yields a negative total, matching the storefront's
		// observed behavior.
		return d.Value
	}

	return 0
}
