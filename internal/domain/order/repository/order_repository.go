package repository

import (
	"time"

	"khanmall/internal/domain/order/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(o *model.Order) error
	GetByID(id string) (*model.Order, error)
	GetByReference(reference string) (*model.Order, error)
	List(status model.OrderStatus, offset, limit int) ([]model.Order, int64, error)

	UpdateStatus(id string, status model.OrderStatus) error
	UpdatePaymentStatus(id string, status model.PaymentStatus) error

	// Cancel flips a pending or confirmed order to cancelled in a single
	// conditional UPDATE and reports the rows affected. 0 means the order was
	// already cancelled or had advanced, and the caller must not release
	// stock: exactly one cancel wins, so the reserved units are given back
	// exactly once.
	Cancel(id string) (int64, error)

	// SettleByReference flips a pending order to (confirmed, paid) in a single
	// conditional UPDATE keyed on payment_status = pending. It reports the
	// number of rows affected: 0 means the reference did not match a pending
	// order, which the caller disambiguates into no-match vs already-settled.
	// This is the sole mechanism preventing double settlement from duplicate
	// webhook deliveries.
	SettleByReference(reference string, paidAt time.Time) (int64, error)

	// SettleByID is the admin manual-override equivalent, racing safely with
	// the webhook path through the same conditional UPDATE.
	SettleByID(id string, paidAt time.Time) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(o *model.Order) error {
	return r.db.Create(o).Error
}

func (r *orderRepository) GetByID(id string) (*model.Order, error) {
	var o model.Order
	if err := r.db.First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) GetByReference(reference string) (*model.Order, error) {
	var o model.Order
	if err := r.db.Where("reference = ?", reference).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) List(status model.OrderStatus, offset, limit int) ([]model.Order, int64, error) {
	var (
		orders []model.Order
		total  int64
	)

	query := r.db.Model(&model.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(id string, status model.OrderStatus) error {
	return r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepository) UpdatePaymentStatus(id string, status model.PaymentStatus) error {
	return r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

func (r *orderRepository) Cancel(id string) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, []model.OrderStatus{model.StatusPending, model.StatusConfirmed}).
		Update("status", model.StatusCancelled)
	return result.RowsAffected, result.Error
}

// Note: the guard is payment_status alone. A transfer SMS landing after the
// order was cancelled still settles it back to (confirmed, paid) — the money
// did arrive, and the back-office resolves it from there rather than the
// webhook silently discarding a real payment.
func (r *orderRepository) SettleByReference(reference string, paidAt time.Time) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("reference = ? AND payment_status = ?", reference, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":         model.StatusConfirmed,
			"payment_status": model.PaymentPaid,
			"paid_at":        paidAt,
		})
	return result.RowsAffected, result.Error
}

func (r *orderRepository) SettleByID(id string, paidAt time.Time) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", id, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":         model.StatusConfirmed,
			"payment_status": model.PaymentPaid,
			"paid_at":        paidAt,
		})
	return result.RowsAffected, result.Error
}
