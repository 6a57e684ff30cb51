package models

import "time"

type Category struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"index;not null"`
	User      User
	Name      string          `gorm:"size:100;not null"`
	Type      TransactionType `gorm:"size:10;not null"` // income / expense
	Context   TransactionContext `gorm:"size:10;not null;default:personal"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
