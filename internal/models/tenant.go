package models

import "time"

// Tenant: Dükkan kiracısı
type Tenant struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	User      User
	Name      string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:50"`
	Email     string `gorm:"size:100"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantShop: Kiracı-dükkan tahsis kaydı
type TenantShop struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index;not null"`
	TenantID    uint `gorm:"index;not null"`
	Tenant      Tenant
	ShopID      uint `gorm:"index;not null"`
	Shop        Shop
	AllocatedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
