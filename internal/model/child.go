package model

import (
	"time"

	"gorm.io/gorm"
)

type Child struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string    `json:"name" gorm:"type:varchar(150);not null"`
	ClassGrade string    `json:"classGrade" gorm:"type:varchar(50)"`
	SchoolID   string    `json:"schoolId" gorm:"type:varchar(36);index;not null"`
	ParentID   string    `json:"parentId" gorm:"type:varchar(36);index;not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	School *School `json:"school,omitempty" gorm:"foreignKey:SchoolID"`
	Parent *Parent `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Fees   []Fee   `json:"fees,omitempty" gorm:"foreignKey:ChildID"`
}

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}
