package model

import (
	"time"

	"gorm.io/gorm"
)

// Parent authenticates by phone. OTPHash and OTPExpiry are either both set or both nil.
type Parent struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Phone     string     `json:"phone" gorm:"type:varchar(32);uniqueIndex;not null"`
	Name      string     `json:"name" gorm:"type:varchar(150)"`
	OTPHash   *string    `json:"-" gorm:"column:otp;type:varchar(255)"`
	OTPExpiry *time.Time `json:"-" gorm:"column:otp_expiry;index"`
	Verified  bool       `json:"verified" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Children []Child `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (p *Parent) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

// HasPendingCode reports whether a one-time code is waiting for verification
func (p *Parent) HasPendingCode() bool {
	return p.OTPHash != nil && p.OTPExpiry != nil
}
