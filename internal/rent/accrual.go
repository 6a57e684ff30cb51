package rent

import (
	"time"

	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"

	"gorm.io/gorm"
)

// Period: Bir kiracı-dükkan çifti için (ay, yıl) fatura dönemi
type Period struct {
	Month int
	Year  int
}

// DateOnly: Zaman bileşenini atıp UTC takvim gününe indirger. Tahsis tarihleri
// ve dönem sınırları gün bazlıdır; saat farkları dönem kimliğini kaydırmamalı.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// lastDuePeriod: Tahakkuk edilecek son dönem = içinde bulunulan ayın bir öncesi.
// İçinde bulunulan ay henüz tamamlanmadığı için hiçbir zaman tahakkuk edilmez.
func lastDuePeriod(now time.Time) Period {
	y, m, _ := now.UTC().Date()
	month := int(m) - 1
	year := y
	if month == 0 {
		month = 12
		year--
	}
	return Period{Month: month, Year: year}
}

// PeriodsDue: Tahsis tarihinden son tamamlanmış aya kadar (dahil) tüm dönemleri
// sıralı üretir. Tahsis içinde bulunulan ayda veya gelecekteyse boş döner.
func PeriodsDue(allocatedAt, now time.Time) []Period {
	alloc := DateOnly(allocatedAt)
	last := lastDuePeriod(now)

	month := int(alloc.Month())
	year := alloc.Year()

	var periods []Period
	for year < last.Year || (year == last.Year && month <= last.Month) {
		periods = append(periods, Period{Month: month, Year: year})
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return periods
}

// EnsurePeriods: Dükkanın tahsis tarihinden bugüne eksik kira dönemlerini açar.
// Var olan dönemlere dokunmaz; tutar ilk açılışta dükkanın o anki kirasından
// sabitlenir, kira sonradan değişse de geçmiş dönemler güncellenmez.
func EnsurePeriods(db *gorm.DB, shop *models.Shop, now time.Time) error {
	if shop.TenantID == nil || shop.AllocatedAt == nil {
		return nil
	}
	if DateOnly(*shop.AllocatedAt).After(DateOnly(now)) {
		return nil
	}

	tenantID := *shop.TenantID
	monthlyRent := ledger.Round2(shop.MonthlyRent)

	for _, p := range PeriodsDue(*shop.AllocatedAt, now) {
		var count int64
		if err := db.Model(&models.RentPayment{}).
			Where("tenant_id = ? AND shop_id = ? AND month = ? AND year = ?",
				tenantID, shop.ID, p.Month, p.Year).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		rp := models.RentPayment{
			UserID:        shop.UserID,
			TenantID:      tenantID,
			ShopID:        shop.ID,
			Month:         p.Month,
			Year:          p.Year,
			Amount:        monthlyRent,
			PaidAmount:    0,
			PendingAmount: monthlyRent,
			Status:        models.RentStatusPending,
		}
		if err := db.Create(&rp).Error; err != nil {
			return err
		}
	}

	return nil
}

// ReaccrueFrom: Tahsis tarihi düzeltildiğinde yeni tarihten önceki dönemleri
// siler ve yeni tarihten itibaren yeniden tahakkuk eder.
func ReaccrueFrom(db *gorm.DB, shop *models.Shop, now time.Time) error {
	if shop.TenantID == nil || shop.AllocatedAt == nil {
		return nil
	}

	alloc := DateOnly(*shop.AllocatedAt)
	if err := db.Where(
		"tenant_id = ? AND shop_id = ? AND (year < ? OR (year = ? AND month < ?))",
		*shop.TenantID, shop.ID, alloc.Year(), alloc.Year(), int(alloc.Month()),
	).Delete(&models.RentPayment{}).Error; err != nil {
		return err
	}

	return EnsurePeriods(db, shop, now)
}
