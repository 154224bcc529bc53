package models

import "time"

// Category forms a tree through ParentID.
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	ParentID  *uint     `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Category) TableName() string { return "categories" }
