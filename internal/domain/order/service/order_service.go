package service

import (
	"errors"
	"fmt"
	"time"

	catalogModel "khanmall/internal/domain/catalog/model"
	catalogRepo "khanmall/internal/domain/catalog/repository"
	"khanmall/internal/domain/order/model"
	"khanmall/internal/domain/order/repository"
	"khanmall/internal/pkg/config"
	"khanmall/pkg/logger"
	"khanmall/pkg/metrics"
	"khanmall/pkg/utils"

	"go.uber.org/zap"
)

var (
	// ErrInvalidTransition is returned for state machine violations: backward
	// moves, advancing an unpaid order, cancelling a shipped one.
	ErrInvalidTransition = errors.New("invalid order transition")

	// ErrShippingRequired is returned when a non-pickup checkout is missing
	// recipient details.
	ErrShippingRequired = errors.New("recipient, phone and address are required for delivery")

	ErrEmptyOrder = errors.New("order has no items")
)

// InsufficientStockError names the product that could not be reserved.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Product)
}

// StockLedger is the slice of the catalog repository the order module writes:
// product snapshots plus the reserve/release pair.
type StockLedger interface {
	GetProduct(id string) (*catalogModel.Product, error)
	ReserveStock(productID string, qty int) error
	ReleaseStock(productID string, qty int) error
}

// DiscountApplier evaluates and consumes a discount code for a checkout.
type DiscountApplier interface {
	Apply(code string, subtotal int64, now time.Time) int64
}

type CheckoutItem struct {
	ProductID string
	Quantity  int
	Size      string
}

type CheckoutInput struct {
	Items        []CheckoutItem
	DeliveryType model.DeliveryType
	Recipient    string
	Phone        string
	Address      string
	City         string
	District     string
	DiscountCode string
	Notes        string
}

// OrderStatusView is the polling payload: current state, nothing more.
type OrderStatusView struct {
	ID            string              `json:"id"`
	Reference     string              `json:"reference"`
	Status        model.OrderStatus   `json:"status"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
}

type OrderService interface {
	Checkout(input CheckoutInput) (*model.Order, error)
	Get(id string) (*model.Order, error)
	GetStatus(id string) (*OrderStatusView, error)
	List(status model.OrderStatus, offset, limit int) ([]model.Order, int64, error)
	UpdateStatus(id string, next model.OrderStatus) (*model.Order, error)
	UpdatePaymentStatus(id string, next model.PaymentStatus) (*model.Order, error)
}

type orderService struct {
	repo      repository.OrderRepository
	ledger    StockLedger
	discounts DiscountApplier
	now       func() time.Time
}

func NewOrderService(repo repository.OrderRepository, ledger StockLedger, discounts DiscountApplier) OrderService {
	return &orderService{
		repo:      repo,
		ledger:    ledger,
		discounts: discounts,
		now:       time.Now,
	}
}

// Checkout creates an order from a storefront submission. Stock for every
// line item is reserved before the order is persisted; if any reservation
// fails, the ones already taken are released and the checkout fails without
// partial state.
func (s *orderService) Checkout(input CheckoutInput) (*model.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if input.DeliveryType != model.DeliveryPickup {
		if input.Recipient == "" || input.Phone == "" || input.Address == "" {
			return nil, ErrShippingRequired
		}
	}

	now := s.now()

	var (
		items    model.OrderItems
		subtotal int64
		reserved []CheckoutItem
	)

	rollback := func() {
		for _, r := range reserved {
			if err := s.ledger.ReleaseStock(r.ProductID, r.Quantity); err != nil {
				logger.Log.Error("stock rollback failed",
					zap.String("product_id", r.ProductID), zap.Int("qty", r.Quantity), zap.Error(err))
			}
		}
	}

	for _, item := range input.Items {
		if item.Quantity <= 0 {
			rollback()
			return nil, fmt.Errorf("invalid quantity for product %s", item.ProductID)
		}

		product, err := s.ledger.GetProduct(item.ProductID)
		if err != nil {
			rollback()
			return nil, err
		}

		if err := s.ledger.ReserveStock(product.ID, item.Quantity); err != nil {
			rollback()
			if errors.Is(err, catalogRepo.ErrInsufficientStock) {
				metrics.GetCollector().RecordStockReservationFailure()
				return nil, &InsufficientStockError{Product: product.Name}
			}
			return nil, err
		}
		reserved = append(reserved, item)

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     image,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
		})
		subtotal += product.Price * int64(item.Quantity)
	}

	shippingFee := shippingFeeFor(input.DeliveryType)
	discountAmount := s.discounts.Apply(input.DiscountCode, subtotal, now)

	order := &model.Order{
		Reference:      utils.NewOrderReference(now),
		Status:         model.StatusPending,
		PaymentStatus:  model.PaymentPending,
		Items:          items,
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		DiscountAmount: discountAmount,
		Total:          subtotal + shippingFee - discountAmount,
		DiscountCode:   input.DiscountCode,
		Recipient:      input.Recipient,
		Phone:          input.Phone,
		Address:        input.Address,
		City:           input.City,
		District:       input.District,
		DeliveryType:   input.DeliveryType,
		Notes:          input.Notes,
	}

	if err := s.repo.Create(order); err != nil {
		rollback()
		return nil, err
	}

	metrics.GetCollector().RecordOrderCreated()
	logger.Log.Info("order created",
		zap.String("reference", order.Reference),
		zap.Int64("total", order.Total),
		zap.Int("items", len(order.Items)))

	return order, nil
}

func shippingFeeFor(t model.DeliveryType) int64 {
	switch t {
	case model.DeliveryCity:
		return config.GlobalConfig.Shipping.CityFee
	case model.DeliveryProvince:
		return config.GlobalConfig.Shipping.ProvinceFee
	default:
		return 0
	}
}

func (s *orderService) Get(id string) (*model.Order, error) {
	return s.repo.GetByID(id)
}

func (s *orderService) GetStatus(id string) (*OrderStatusView, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &OrderStatusView{
		ID:            o.ID,
		Reference:     o.Reference,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
	}, nil
}

func (s *orderService) List(status model.OrderStatus, offset, limit int) ([]model.Order, int64, error) {
	return s.repo.List(status, offset, limit)
}

// UpdateStatus drives the fulfillment state machine. Setting the current
// status again is a no-op success; backward moves are rejected; forward moves
// require the order to be paid; cancellation is only reachable from pending
// or confirmed and releases every reserved line item. A cancelled order keeps
// payment_status pending, so a transfer SMS arriving afterwards still settles
// it; see the repository's settle guard.
func (s *orderService) UpdateStatus(id string, next model.OrderStatus) (*model.Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if o.Status == next {
		return o, nil
	}

	if next == model.StatusCancelled {
		if !o.Status.Cancellable() {
			return nil, ErrInvalidTransition
		}
		// The conditional cancel decides a winner first; stock goes back only
		// once the cancelled status is durable, so a failed write or a racing
		// second cancel can never release the same units twice.
		affected, err := s.repo.Cancel(o.ID)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			cur, err := s.repo.GetByID(o.ID)
			if err != nil {
				return nil, err
			}
			if cur.Status == model.StatusCancelled {
				// The racing cancel already released the stock.
				return cur, nil
			}
			return nil, ErrInvalidTransition
		}
		for _, item := range o.Items {
			if err := s.ledger.ReleaseStock(item.ProductID, item.Quantity); err != nil {
				logger.Log.Error("stock release on cancel failed",
					zap.String("reference", o.Reference),
					zap.String("product_id", item.ProductID), zap.Error(err))
			}
		}
		o.Status = model.StatusCancelled
		logger.Log.Info("order cancelled", zap.String("reference", o.Reference))
		return o, nil
	}

	curRank, curOnPath := o.Status.Rank()
	nextRank, nextOnPath := next.Rank()
	if !curOnPath || !nextOnPath || nextRank <= curRank {
		return nil, ErrInvalidTransition
	}
	// An unpaid order cannot advance: nothing ships before the transfer lands.
	if o.PaymentStatus != model.PaymentPaid {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(o.ID, next); err != nil {
		return nil, err
	}
	o.Status = next
	return o, nil
}

// UpdatePaymentStatus handles the manual financial transitions. Pending→paid
// goes through the same conditional settle as the webhook, so an admin
// override racing a webhook delivery settles exactly once. Paid→refunded is
// a financial fact only: it neither restocks nor rolls back fulfillment.
func (s *orderService) UpdatePaymentStatus(id string, next model.PaymentStatus) (*model.Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if o.PaymentStatus == next {
		return o, nil
	}

	switch next {
	case model.PaymentPaid:
		if o.PaymentStatus != model.PaymentPending {
			return nil, ErrInvalidTransition
		}
		affected, err := s.repo.SettleByID(o.ID, s.now())
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			// Lost the race to the webhook; the order is settled either way.
			return s.repo.GetByID(o.ID)
		}
		return s.repo.GetByID(o.ID)
	case model.PaymentRefunded:
		if o.PaymentStatus != model.PaymentPaid {
			return nil, ErrInvalidTransition
		}
		if err := s.repo.UpdatePaymentStatus(o.ID, model.PaymentRefunded); err != nil {
			return nil, err
		}
		o.PaymentStatus = model.PaymentRefunded
		return o, nil
	default:
		return nil, ErrInvalidTransition
	}
}
