package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is recorded by a parent against a fee and settled by the school that issued the fee
type Payment struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FeeID         string          `json:"feeId" gorm:"type:varchar(36);index;not null"`
	ParentID      string          `json:"parentId" gorm:"type:varchar(36);index;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency      string          `json:"currency" gorm:"type:varchar(3);not null"`
	PaymentMethod string          `json:"paymentMethod" gorm:"type:varchar(50)"`
	TransactionID string          `json:"transactionId" gorm:"type:varchar(100);index"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ReceiptData   *string         `json:"receiptData" gorm:"type:varchar(255)"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Fee    *Fee    `json:"fee,omitempty" gorm:"foreignKey:FeeID"`
	Parent *Parent `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return nil
}
