package models

import "time"

type RentStatus string

const (
	RentStatusPending RentStatus = "pending" // bekliyor
	RentStatusPaid    RentStatus = "paid"    // ödendi
)

// RentPayment: Bir kiracı-dükkan çifti için tek bir (ay, yıl) kira dönemi.
// Doğal anahtar (tenant, shop, month, year): aynı dönem için ikinci kayıt açılmaz.
type RentPayment struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index;not null"`
	User          User
	TenantID      uint `gorm:"not null;uniqueIndex:uniq_rent_period"`
	Tenant        Tenant
	ShopID        uint `gorm:"not null;uniqueIndex:uniq_rent_period"`
	Shop          Shop
	Month         int        `gorm:"not null;uniqueIndex:uniq_rent_period"` // 1-12
	Year          int        `gorm:"not null;uniqueIndex:uniq_rent_period"`
	Amount        float64    `gorm:"not null"` // dönemin kira borcu, oluşturulduğunda sabitlenir
	PaidAmount    float64    `gorm:"default:0"`
	PendingAmount float64    `gorm:"default:0"`
	Status        RentStatus `gorm:"size:10;not null;default:pending"`
	PaymentDate   *time.Time
	Notes         string `gorm:"size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
