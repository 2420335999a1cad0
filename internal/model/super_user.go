package model

import (
	"time"

	"gorm.io/gorm"
)

// SuperUser is an administrator account, provisioned out-of-band
type SuperUser struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"type:varchar(150);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null;default:'admin'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *SuperUser) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	if u.Role == "" {
		u.Role = "admin"
	}
	return nil
}
