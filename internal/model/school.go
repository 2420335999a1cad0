package model

import (
	"time"

	"gorm.io/gorm"
)

// School is a fee-issuing institution. It cannot log in until an admin approves it.
type School struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string    `json:"name" gorm:"type:varchar(150)"`
	Email      string    `json:"email" gorm:"type:varchar(150);uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null"`
	IsApproved bool      `json:"isApproved" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Students []Child `json:"students,omitempty" gorm:"foreignKey:SchoolID"`
	Fees     []Fee   `json:"fees,omitempty" gorm:"foreignKey:SchoolID"`
}

func (s *School) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}
