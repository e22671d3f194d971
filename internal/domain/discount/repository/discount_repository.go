package repository

import (
	"errors"
	"strings"

	"khanmall/internal/domain/discount/model"

	"gorm.io/gorm"
)

// ErrUsageExhausted is returned when a conditional usage increment finds the
// limit already reached.
var ErrUsageExhausted = errors.New("discount usage limit reached")

type DiscountRepository interface {
	Create(d *model.Discount) error
	GetByCode(code string) (*model.Discount, error)
	GetByID(id string) (*model.Discount, error)
	List(offset, limit int) ([]model.Discount, int64, error)
	Update(d *model.Discount) error
	Delete(id string) error

	// ConsumeUsage increments used_count only while it is still under the
	// usage limit. The check and the increment are one conditional UPDATE,
	// so two concurrent checkouts cannot both take the last use.
	ConsumeUsage(id string) error
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(d *model.Discount) error {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	return r.db.Create(d).Error
}

func (r *discountRepository) GetByCode(code string) (*model.Discount, error) {
	var d model.Discount
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := r.db.Where("code = ?", code).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *discountRepository) GetByID(id string) (*model.Discount, error) {
	var d model.Discount
	if err := r.db.First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *discountRepository) List(offset, limit int) ([]model.Discount, int64, error) {
	var (
		discounts []model.Discount
		total     int64
	)
	if err := r.db.Model(&model.Discount{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&discounts).Error
	return discounts, total, err
}

func (r *discountRepository) Update(d *model.Discount) error {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	return r.db.Save(d).Error
}

func (r *discountRepository) Delete(id string) error {
	return r.db.Delete(&model.Discount{}, "id = ?", id).Error
}

func (r *discountRepository) ConsumeUsage(id string) error {
	result := r.db.Model(&model.Discount{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUsageExhausted
	}
	return nil
}
