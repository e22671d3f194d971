package service

import (
	"errors"
	"testing"
	"time"

	catalogModel "khanmall/internal/domain/catalog/model"
	catalogRepo "khanmall/internal/domain/catalog/repository"
	"khanmall/internal/domain/order/model"
	"khanmall/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func init() {
	config.GlobalConfig.Shipping = config.ShippingConfig{CityFee: 5000, ProvinceFee: 10000}
}

// MockOrderRepository is a mock of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(o *model.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByReference(reference string) (*model.Order, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(status model.OrderStatus, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(status, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Cancel(id string) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(id string, status model.OrderStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdatePaymentStatus(id string, status model.PaymentStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) SettleByReference(reference string, paidAt time.Time) (int64, error) {
	args := m.Called(reference, paidAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SettleByID(id string, paidAt time.Time) (int64, error) {
	args := m.Called(id, paidAt)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockLedger is a mock of StockLedger
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) GetProduct(id string) (*catalogModel.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogModel.Product), args.Error(1)
}

func (m *MockStockLedger) ReserveStock(productID string, qty int) error {
	args := m.Called(productID, qty)
	return args.Error(0)
}

func (m *MockStockLedger) ReleaseStock(productID string, qty int) error {
	args := m.Called(productID, qty)
	return args.Error(0)
}

// MockDiscountApplier is a mock of DiscountApplier
type MockDiscountApplier struct {
	mock.Mock
}

func (m *MockDiscountApplier) Apply(code string, subtotal int64, now time.Time) int64 {
	args := m.Called(code, subtotal, now)
	return args.Get(0).(int64)
}

func testProduct(id, name string, price int64, stock int) *catalogModel.Product {
	p := &catalogModel.Product{
		Name:     name,
		Price:    price,
		Stock:    stock,
		Images:   catalogModel.StringList{"https://img/" + id + ".jpg"},
		IsActive: true,
	}
	p.ID = id
	return p
}

func cityCheckout(items []CheckoutItem) CheckoutInput {
	return CheckoutInput{
		Items:        items,
		DeliveryType: model.DeliveryCity,
		Recipient:    "Bat-Erdene",
		Phone:        "99112233",
		Address:      "Peace Avenue 17",
		City:         "Ulaanbaatar",
		District:     "Sükhbaatar",
	}
}

func TestCheckout(t *testing.T) {
	t.Run("two line items, city delivery, no discount", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		discounts := new(MockDiscountApplier)
		svc := NewOrderService(repo, ledger, discounts)

		ledger.On("GetProduct", "p1").Return(testProduct("p1", "Deel", 80000, 5), nil)
		ledger.On("GetProduct", "p2").Return(testProduct("p2", "Boots", 120000, 3), nil)
		ledger.On("ReserveStock", "p1", 1).Return(nil)
		ledger.On("ReserveStock", "p2", 1).Return(nil)
		discounts.On("Apply", "", int64(200000), mock.AnythingOfType("time.Time")).Return(int64(0))

		var created *model.Order
		repo.On("Create", mock.AnythingOfType("*model.Order")).Run(func(args mock.Arguments) {
			created = args.Get(0).(*model.Order)
		}).Return(nil)

		order, err := svc.Checkout(cityCheckout([]CheckoutItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1, Size: "42"},
		}))

		assert.NoError(t, err)
		assert.Equal(t, model.StatusPending, order.Status)
		assert.Equal(t, model.PaymentPending, order.PaymentStatus)
		assert.Equal(t, int64(200000), order.Subtotal)
		assert.Equal(t, int64(5000), order.ShippingFee)
		assert.Equal(t, int64(0), order.DiscountAmount)
		assert.Equal(t, int64(205000), order.Total)
		assert.Equal(t, order.Subtotal+order.ShippingFee-order.DiscountAmount, order.Total)
		assert.Regexp(t, `^KM\d{8}$`, order.Reference)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, "Deel", order.Items[0].Name)
		assert.Equal(t, "42", order.Items[1].Size)
		assert.Same(t, created, order)

		ledger.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("reservation failure rolls back earlier reservations", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		discounts := new(MockDiscountApplier)
		svc := NewOrderService(repo, ledger, discounts)

		ledger.On("GetProduct", "p1").Return(testProduct("p1", "Deel", 80000, 5), nil)
		ledger.On("GetProduct", "p2").Return(testProduct("p2", "Boots", 120000, 0), nil)
		ledger.On("ReserveStock", "p1", 2).Return(nil)
		ledger.On("ReserveStock", "p2", 1).Return(catalogRepo.ErrInsufficientStock)
		ledger.On("ReleaseStock", "p1", 2).Return(nil)

		_, err := svc.Checkout(cityCheckout([]CheckoutItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		}))

		var stockErr *InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "Boots", stockErr.Product)

		ledger.AssertExpectations(t)
		repo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("persist failure releases all reserved stock", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		discounts := new(MockDiscountApplier)
		svc := NewOrderService(repo, ledger, discounts)

		ledger.On("GetProduct", "p1").Return(testProduct("p1", "Deel", 80000, 5), nil)
		ledger.On("ReserveStock", "p1", 1).Return(nil)
		ledger.On("ReleaseStock", "p1", 1).Return(nil)
		discounts.On("Apply", "", int64(80000), mock.AnythingOfType("time.Time")).Return(int64(0))
		repo.On("Create", mock.AnythingOfType("*model.Order")).Return(errors.New("db down"))

		_, err := svc.Checkout(cityCheckout([]CheckoutItem{{ProductID: "p1", Quantity: 1}}))

		assert.Error(t, err)
		ledger.AssertExpectations(t)
	})

	t.Run("discount applied to total", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		discounts := new(MockDiscountApplier)
		svc := NewOrderService(repo, ledger, discounts)

		ledger.On("GetProduct", "p1").Return(testProduct("p1", "Deel", 100000, 5), nil)
		ledger.On("ReserveStock", "p1", 1).Return(nil)
		discounts.On("Apply", "SAVE10", int64(100000), mock.AnythingOfType("time.Time")).Return(int64(5000))
		repo.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		input := cityCheckout([]CheckoutItem{{ProductID: "p1", Quantity: 1}})
		input.DiscountCode = "SAVE10"
		order, err := svc.Checkout(input)

		assert.NoError(t, err)
		assert.Equal(t, int64(5000), order.DiscountAmount)
		assert.Equal(t, int64(100000), order.Total)
		assert.GreaterOrEqual(t, order.DiscountAmount, int64(0))
	})

	t.Run("delivery without recipient rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		discounts := new(MockDiscountApplier)
		svc := NewOrderService(repo, ledger, discounts)

		_, err := svc.Checkout(CheckoutInput{
			Items:        []CheckoutItem{{ProductID: "p1", Quantity: 1}},
			DeliveryType: model.DeliveryCity,
		})

		assert.ErrorIs(t, err, ErrShippingRequired)
		ledger.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything)
	})

	t.Run("pickup needs no shipping fields and no fee", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		discounts := new(MockDiscountApplier)
		svc := NewOrderService(repo, ledger, discounts)

		ledger.On("GetProduct", "p1").Return(testProduct("p1", "Deel", 80000, 5), nil)
		ledger.On("ReserveStock", "p1", 1).Return(nil)
		discounts.On("Apply", "", int64(80000), mock.AnythingOfType("time.Time")).Return(int64(0))
		repo.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		order, err := svc.Checkout(CheckoutInput{
			Items:        []CheckoutItem{{ProductID: "p1", Quantity: 1}},
			DeliveryType: model.DeliveryPickup,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(0), order.ShippingFee)
	})

	t.Run("empty order rejected", func(t *testing.T) {
		svc := NewOrderService(new(MockOrderRepository), new(MockStockLedger), new(MockDiscountApplier))
		_, err := svc.Checkout(CheckoutInput{DeliveryType: model.DeliveryPickup})
		assert.ErrorIs(t, err, ErrEmptyOrder)
	})
}

func pendingOrder(id string, items ...model.OrderItem) *model.Order {
	o := &model.Order{
		Reference:     "KM99990000",
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		Items:         items,
	}
	o.ID = id
	return o
}

func TestUpdateStatus(t *testing.T) {
	t.Run("shipping an unpaid order is rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		svc := NewOrderService(repo, ledger, new(MockDiscountApplier))

		o := pendingOrder("o1")
		repo.On("GetByID", "o1").Return(o, nil)

		_, err := svc.UpdateStatus("o1", model.StatusShipped)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, model.StatusPending, o.Status)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("paid order advances forward", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockStockLedger), new(MockDiscountApplier))

		o := pendingOrder("o1")
		o.Status = model.StatusConfirmed
		o.PaymentStatus = model.PaymentPaid
		repo.On("GetByID", "o1").Return(o, nil)
		repo.On("UpdateStatus", "o1", model.StatusProcessing).Return(nil)

		updated, err := svc.UpdateStatus("o1", model.StatusProcessing)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusProcessing, updated.Status)
	})

	t.Run("backward move rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockStockLedger), new(MockDiscountApplier))

		o := pendingOrder("o1")
		o.Status = model.StatusShipped
		o.PaymentStatus = model.PaymentPaid
		repo.On("GetByID", "o1").Return(o, nil)

		_, err := svc.UpdateStatus("o1", model.StatusConfirmed)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("cancel releases every line item", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		svc := NewOrderService(repo, ledger, new(MockDiscountApplier))

		o := pendingOrder("o1", model.OrderItem{ProductID: "px", Quantity: 2})
		repo.On("GetByID", "o1").Return(o, nil)
		repo.On("Cancel", "o1").Return(int64(1), nil)
		ledger.On("ReleaseStock", "px", 2).Return(nil)

		updated, err := svc.UpdateStatus("o1", model.StatusCancelled)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, updated.Status)
		ledger.AssertExpectations(t)
	})

	t.Run("failed cancel write releases nothing", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		svc := NewOrderService(repo, ledger, new(MockDiscountApplier))

		o := pendingOrder("o1", model.OrderItem{ProductID: "px", Quantity: 2})
		repo.On("GetByID", "o1").Return(o, nil)
		repo.On("Cancel", "o1").Return(int64(0), errors.New("db down"))

		_, err := svc.UpdateStatus("o1", model.StatusCancelled)

		assert.Error(t, err)
		// The order is still pending/confirmed; releasing now would hand the
		// units back twice once the cancel is retried.
		ledger.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything)
	})

	t.Run("losing a cancel race releases nothing", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		svc := NewOrderService(repo, ledger, new(MockDiscountApplier))

		o := pendingOrder("o1", model.OrderItem{ProductID: "px", Quantity: 2})
		cancelled := pendingOrder("o1", model.OrderItem{ProductID: "px", Quantity: 2})
		cancelled.Status = model.StatusCancelled

		// Both requests read the order as pending; only one conditional
		// cancel finds a matching row.
		repo.On("GetByID", "o1").Return(o, nil).Once()
		repo.On("Cancel", "o1").Return(int64(0), nil)
		repo.On("GetByID", "o1").Return(cancelled, nil)

		updated, err := svc.UpdateStatus("o1", model.StatusCancelled)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, updated.Status)
		ledger.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything)
	})

	t.Run("cancel losing to an advancing order is rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		svc := NewOrderService(repo, ledger, new(MockDiscountApplier))

		o := pendingOrder("o1")
		o.Status = model.StatusConfirmed
		o.PaymentStatus = model.PaymentPaid
		advanced := pendingOrder("o1")
		advanced.Status = model.StatusProcessing
		advanced.PaymentStatus = model.PaymentPaid

		repo.On("GetByID", "o1").Return(o, nil).Once()
		repo.On("Cancel", "o1").Return(int64(0), nil)
		repo.On("GetByID", "o1").Return(advanced, nil)

		_, err := svc.UpdateStatus("o1", model.StatusCancelled)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		ledger.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything)
	})

	t.Run("cancelling twice is a no-op success", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		svc := NewOrderService(repo, ledger, new(MockDiscountApplier))

		o := pendingOrder("o1", model.OrderItem{ProductID: "px", Quantity: 2})
		o.Status = model.StatusCancelled
		repo.On("GetByID", "o1").Return(o, nil)

		updated, err := svc.UpdateStatus("o1", model.StatusCancelled)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, updated.Status)
		ledger.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything)
	})

	t.Run("cancelling a shipped order is rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockStockLedger), new(MockDiscountApplier))

		o := pendingOrder("o1")
		o.Status = model.StatusShipped
		o.PaymentStatus = model.PaymentPaid
		repo.On("GetByID", "o1").Return(o, nil)

		_, err := svc.UpdateStatus("o1", model.StatusCancelled)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Run("manual settle goes through the conditional update", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockStockLedger), new(MockDiscountApplier))

		o := pendingOrder("o1")
		settled := pendingOrder("o1")
		settled.Status = model.StatusConfirmed
		settled.PaymentStatus = model.PaymentPaid

		repo.On("GetByID", "o1").Return(o, nil).Once()
		repo.On("SettleByID", "o1", mock.AnythingOfType("time.Time")).Return(int64(1), nil)
		repo.On("GetByID", "o1").Return(settled, nil)

		updated, err := svc.UpdatePaymentStatus("o1", model.PaymentPaid)

		assert.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)
		assert.Equal(t, model.StatusConfirmed, updated.Status)
	})

	t.Run("losing the settle race to the webhook is not an error", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockStockLedger), new(MockDiscountApplier))

		o := pendingOrder("o1")
		settled := pendingOrder("o1")
		settled.Status = model.StatusConfirmed
		settled.PaymentStatus = model.PaymentPaid

		repo.On("GetByID", "o1").Return(o, nil).Once()
		repo.On("SettleByID", "o1", mock.AnythingOfType("time.Time")).Return(int64(0), nil)
		repo.On("GetByID", "o1").Return(settled, nil)

		updated, err := svc.UpdatePaymentStatus("o1", model.PaymentPaid)

		assert.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)
	})

	t.Run("refund requires paid", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockStockLedger), new(MockDiscountApplier))

		o := pendingOrder("o1")
		repo.On("GetByID", "o1").Return(o, nil)

		_, err := svc.UpdatePaymentStatus("o1", model.PaymentRefunded)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("refund does not restock or roll back fulfillment", func(t *testing.T) {
		repo := new(MockOrderRepository)
		ledger := new(MockStockLedger)
		svc := NewOrderService(repo, ledger, new(MockDiscountApplier))

		o := pendingOrder("o1", model.OrderItem{ProductID: "px", Quantity: 1})
		o.Status = model.StatusDelivered
		o.PaymentStatus = model.PaymentPaid
		repo.On("GetByID", "o1").Return(o, nil)
		repo.On("UpdatePaymentStatus", "o1", model.PaymentRefunded).Return(nil)

		updated, err := svc.UpdatePaymentStatus("o1", model.PaymentRefunded)

		assert.NoError(t, err)
		assert.Equal(t, model.PaymentRefunded, updated.PaymentStatus)
		assert.Equal(t, model.StatusDelivered, updated.Status)
		ledger.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything)
	})
}

func TestGetStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, new(MockStockLedger), new(MockDiscountApplier))

	t.Run("returns the polling view", func(t *testing.T) {
		o := pendingOrder("o1")
		repo.On("GetByID", "o1").Return(o, nil)

		view, err := svc.GetStatus("o1")

		assert.NoError(t, err)
		assert.Equal(t, "KM99990000", view.Reference)
		assert.Equal(t, model.StatusPending, view.Status)
		assert.Equal(t, model.PaymentPending, view.PaymentStatus)
	})

	t.Run("unknown order", func(t *testing.T) {
		repo.On("GetByID", "nope").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetStatus("nope")

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
