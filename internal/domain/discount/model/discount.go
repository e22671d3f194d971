package model

import (
	"time"

	baseModel "khanmall/pkg/model"
)

type DiscountType string

const (
	TypePercentage DiscountType = "percentage"
	TypeFixed      DiscountType = "fixed"
)

// Discount is an admin-managed discount code. UsedCount only ever grows:
// cancelling an order does not give the use back.
type Discount struct {
	baseModel.BaseModel
	Code        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Type        DiscountType `gorm:"type:varchar(16);not null" json:"type"`
	Value       int64        `gorm:"not null" json:"value"` // percent for percentage, tögrög for fixed
	MinOrder    *int64       `json:"minOrder,omitempty"`
	MaxDiscount *int64       `json:"maxDiscount,omitempty"` // percentage type only
	UsageLimit  *int         `json:"usageLimit,omitempty"`  // nil = unlimited
	UsedCount   int          `gorm:"not null;default:0" json:"usedCount"`
	StartDate   time.Time    `gorm:"not null" json:"startDate"`
	EndDate     time.Time    `gorm:"not null" json:"endDate"`
	IsActive    bool         `gorm:"default:true" json:"isActive"`
}
