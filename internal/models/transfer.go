package models

import "time"

// Transfer: Kullanıcının iki hesabı arası para aktarımı (virman)
type Transfer struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index;not null"`
	User          User
	FromAccountID uint        `gorm:"index;not null"`
	FromAccount   BankAccount `gorm:"foreignKey:FromAccountID"`
	ToAccountID   uint        `gorm:"index;not null"`
	ToAccount     BankAccount `gorm:"foreignKey:ToAccountID"`
	Amount        float64     `gorm:"not null"`
	Description   string      `gorm:"size:255"`
	Date          time.Time   `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
