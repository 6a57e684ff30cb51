package rent

import (
	"errors"
	"time"

	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidAmount        = errors.New("ödeme tutarı 0'dan büyük olmalı")
	ErrInvalidPeriod        = errors.New("ay 1-12 arasında olmalı")
	ErrAmountExceedsRentDue = errors.New("ödeme toplamı dönemin kira borcunu aşamaz")
	ErrShopNotFound         = errors.New("dükkan bulunamadı")
	ErrTenantNotFound       = errors.New("kiracı bulunamadı")
	ErrRentPaymentNotFound  = errors.New("kira kaydı bulunamadı")
)

type PaymentInput struct {
	TenantID    uint
	ShopID      uint
	Month       int
	Year        int
	AmountPaid  float64
	PaymentDate time.Time
	Notes       string
}

// ApplyPayment: Dönem kaydını doğal anahtarıyla bulur, ödenen tutarı artırır
// ve kalan/durum alanlarını yeniden türetir. Dönem kaydı yoksa açar (tutar
// dükkanın güncel kirasından alınır). Kısmi ödemelerle aynı dönem için defalarca
// çağrılabilir; toplam ödeme dönem borcunu aşarsa reddedilir.
func ApplyPayment(db *gorm.DB, userID uint, in PaymentInput) (*models.RentPayment, error) {
	if in.AmountPaid <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, ErrInvalidPeriod
	}

	paid := ledger.Round2(in.AmountPaid)
	paymentDate := DateOnly(in.PaymentDate)

	var rp models.RentPayment
	err := db.Where("user_id = ? AND tenant_id = ? AND shop_id = ? AND month = ? AND year = ?",
		userID, in.TenantID, in.ShopID, in.Month, in.Year).First(&rp).Error

	switch {
	case err == nil:
		newPaid := ledger.Round2(rp.PaidAmount + paid)
		if newPaid > rp.Amount {
			return nil, ErrAmountExceedsRentDue
		}
		rp.PaidAmount = newPaid
		rp.PendingAmount, rp.Status = ledger.Recompute(rp.Amount, newPaid)
		rp.PaymentDate = &paymentDate
		if in.Notes != "" {
			rp.Notes = in.Notes
		}
		if err := db.Save(&rp).Error; err != nil {
			return nil, err
		}
		return &rp, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		var shop models.Shop
		if err := db.Where("id = ? AND user_id = ?", in.ShopID, userID).First(&shop).Error; err != nil {
			return nil, ErrShopNotFound
		}
		var tenant models.Tenant
		if err := db.Where("id = ? AND user_id = ?", in.TenantID, userID).First(&tenant).Error; err != nil {
			return nil, ErrTenantNotFound
		}

		amount := ledger.Round2(shop.MonthlyRent)
		if paid > amount {
			return nil, ErrAmountExceedsRentDue
		}

		pending, status := ledger.Recompute(amount, paid)
		rp = models.RentPayment{
			UserID:        userID,
			TenantID:      in.TenantID,
			ShopID:        in.ShopID,
			Month:         in.Month,
			Year:          in.Year,
			Amount:        amount,
			PaidAmount:    paid,
			PendingAmount: pending,
			Status:        status,
			PaymentDate:   &paymentDate,
			Notes:         in.Notes,
		}
		if err := db.Create(&rp).Error; err != nil {
			return nil, err
		}
		return &rp, nil

	default:
		return nil, err
	}
}

// ReversePayment: Silinen bir kira tahsilatının etkisini dönem kaydından geri
// düşer. Ödenen tutar hiçbir zaman sıfırın altına inmez; dönem kaydı yoksa
// geri alınacak bir şey yoktur, sessizce geçilir.
func ReversePayment(db *gorm.DB, userID, tenantID, shopID uint, month, year int, amount float64) error {
	var rp models.RentPayment
	err := db.Where("user_id = ? AND tenant_id = ? AND shop_id = ? AND month = ? AND year = ?",
		userID, tenantID, shopID, month, year).First(&rp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	newPaid := ledger.Round2(rp.PaidAmount - amount)
	if newPaid < 0 {
		newPaid = 0
	}
	rp.PaidAmount = newPaid
	rp.PendingAmount, rp.Status = ledger.Recompute(rp.Amount, newPaid)

	return db.Save(&rp).Error
}

// RecalculateAll: Kullanıcının tüm kira dönemlerinde kalan/durum alanlarını
// ödenen toplamdan yeniden türetir. Toplu veri içe aktarma sonrası invariant'ı
// garantiye almak için çalıştırılır.
func RecalculateAll(db *gorm.DB, userID uint) error {
	type group struct {
		TenantID  uint
		ShopID    uint
		Month     int
		Year      int
		Amount    float64
		TotalPaid float64
	}

	var groups []group
	if err := db.Model(&models.RentPayment{}).
		Select("tenant_id, shop_id, month, year, MAX(amount) as amount, SUM(paid_amount) as total_paid").
		Where("user_id = ?", userID).
		Group("tenant_id, shop_id, month, year").
		Scan(&groups).Error; err != nil {
		return err
	}

	for _, g := range groups {
		paid := ledger.Round2(g.TotalPaid)
		pending, status := ledger.Recompute(ledger.Round2(g.Amount), paid)
		if err := db.Model(&models.RentPayment{}).
			Where("user_id = ? AND tenant_id = ? AND shop_id = ? AND month = ? AND year = ?",
				userID, g.TenantID, g.ShopID, g.Month, g.Year).
			Updates(map[string]interface{}{
				"paid_amount":    paid,
				"pending_amount": pending,
				"status":         status,
			}).Error; err != nil {
			return err
		}
	}

	return nil
}
