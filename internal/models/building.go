package models

import "time"

// Building: İçinde kiralık dükkanlar bulunan bina
type Building struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	User      User
	Name      string `gorm:"size:200;not null"`
	Address   string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Shops []Shop
}
