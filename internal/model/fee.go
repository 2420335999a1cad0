package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FeeStatus string

const (
	FeePending                  FeeStatus = "pending"
	FeePaymentPendingValidation FeeStatus = "payment_pending_validation"
	FeePaid                     FeeStatus = "paid"
)

// Fee is a charge a school issues against one of its students. Status follows the payment lifecycle.
type Fee struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ChildID     string          `json:"childId" gorm:"type:varchar(36);index;not null"`
	SchoolID    string          `json:"schoolId" gorm:"type:varchar(36);index;not null"`
	FeeType     string          `json:"feeType" gorm:"type:varchar(100);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency    string          `json:"currency" gorm:"type:varchar(3);not null"`
	DueDate     time.Time       `json:"dueDate" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text"`
	Status      FeeStatus       `json:"status" gorm:"type:varchar(32);not null;default:'pending';index"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Child    *Child    `json:"child,omitempty" gorm:"foreignKey:ChildID"`
	School   *School   `json:"school,omitempty" gorm:"foreignKey:SchoolID"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:FeeID"`
}

func (f *Fee) BeforeCreate(tx *gorm.DB) error {
	newID(&f.ID)
	if f.Status == "" {
		f.Status = FeePending
	}
	return nil
}
