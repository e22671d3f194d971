package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	baseModel "khanmall/pkg/model"
)

// OrderStatus is the operational/fulfillment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// fulfillmentRank orders the forward-only fulfillment path. Cancelled sits
// outside the path and is handled separately.
var fulfillmentRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// Rank returns the position of a status on the fulfillment path and whether
// it is on the path at all.
func (s OrderStatus) Rank() (int, bool) {
	r, ok := fulfillmentRank[s]
	return r, ok
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// PaymentStatus is the financial state of an order, independent from the
// fulfillment axis.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// DeliveryType selects the shipping tariff. Pickup needs no shipping fields.
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryCity     DeliveryType = "city"
	DeliveryProvince DeliveryType = "province"
)

// OrderItem is a snapshot of a product line at order-creation time. Later
// edits to the live product never change a placed order.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

// OrderItems is the jsonb column holding the line item snapshots.
type OrderItems []OrderItem

func (i OrderItems) Value() (driver.Value, error) {
	data, err := json.Marshal(i)
	return string(data), err
}

func (i *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*i = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	}
	return errors.New("unsupported type for OrderItems")
}

// Order is the central entity. It is never physically deleted; cancellation
// is a status, not a row removal.
type Order struct {
	baseModel.BaseModel
	Reference     string        `gorm:"type:varchar(10);uniqueIndex;not null" json:"reference"`
	Status        OrderStatus   `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"paymentStatus"`

	Items OrderItems `gorm:"type:jsonb;not null" json:"items"`

	Subtotal       int64  `gorm:"not null" json:"subtotal"`
	ShippingFee    int64  `gorm:"not null" json:"shippingFee"`
	DiscountAmount int64  `gorm:"not null;default:0" json:"discountAmount"`
	Total          int64  `gorm:"not null" json:"total"`
	DiscountCode   string `gorm:"type:varchar(50)" json:"discountCode,omitempty"`

	// Shipping snapshot, captured at creation.
	Recipient    string       `gorm:"type:varchar(100)" json:"recipient"`
	Phone        string       `gorm:"type:varchar(20)" json:"phone"`
	Address      string       `json:"address"`
	City         string       `gorm:"type:varchar(100)" json:"city"`
	District     string       `gorm:"type:varchar(100)" json:"district"`
	DeliveryType DeliveryType `gorm:"type:varchar(16);not null" json:"deliveryType"`

	Notes  string     `json:"notes,omitempty"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
}
