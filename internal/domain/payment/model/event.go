package model

import (
	baseModel "khanmall/pkg/model"
)

// Reconciliation outcomes.
const (
	ResultReconciled     = "reconciled"
	ResultNoMatch        = "no_match"
	ResultAlreadySettled = "already_settled"
)

// PaymentEvent is the audit record of one inbound bank-SMS webhook delivery.
// Unmatched deliveries stay reviewable here instead of vanishing.
type PaymentEvent struct {
	baseModel.BaseModel
	Content   string `gorm:"not null" json:"content"`
	Sender    string `gorm:"type:varchar(50)" json:"sender"`
	Result    string `gorm:"type:varchar(20);not null;index" json:"result"`
	Reference string `gorm:"type:varchar(10);index" json:"reference,omitempty"`
}
