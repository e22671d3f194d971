package repository

import (
	"khanmall/internal/domain/payment/model"

	"gorm.io/gorm"
)

type EventRepository interface {
	Create(e *model.PaymentEvent) error
	List(result string, offset, limit int) ([]model.PaymentEvent, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(e *model.PaymentEvent) error {
	return r.db.Create(e).Error
}

func (r *eventRepository) List(result string, offset, limit int) ([]model.PaymentEvent, int64, error) {
	var (
		events []model.PaymentEvent
		total  int64
	)

	query := r.db.Model(&model.PaymentEvent{})
	if result != "" {
		query = query.Where("result = ?", result)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
