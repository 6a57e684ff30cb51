package models

import "time"

// Shop: Bina içindeki kiralanabilir dükkan
type Shop struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index;not null"`
	User          User
	BuildingID    uint `gorm:"index;not null"`
	Building      Building
	Name          string  `gorm:"size:100;not null"` // dükkan no/adı
	MonthlyRent   float64 `gorm:"not null"`          // aylık kira
	Advance       float64 `gorm:"default:0"`         // depozito/avans tutarı
	IsAdvancePaid bool    `gorm:"default:false"`
	TenantID      *uint `gorm:"index"`
	Tenant        *Tenant
	AllocatedAt   *time.Time // kiracıya tahsis tarihi (gün bazlı, kira bu günden işler)
	IsActive      bool       `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOccupied: kiracı atanmış ve tahsis tarihi geçmişse dolu sayılır
func (s *Shop) IsOccupied(now time.Time) bool {
	return s.TenantID != nil && s.AllocatedAt != nil && !s.AllocatedAt.After(now)
}
