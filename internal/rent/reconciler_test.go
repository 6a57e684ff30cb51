package rent

import (
	"testing"
	"time"

	"muhasebe-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Kısmi ödeme, tamamlama ve fazla ödeme reddi
func TestApplyPaymentPartialThenFull(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 10000, date(2024, time.January, 15))
	require.NoError(t, EnsurePeriods(db, shop, date(2024, time.April, 10)))

	input := PaymentInput{
		TenantID:    *shop.TenantID,
		ShopID:      shop.ID,
		Month:       1,
		Year:        2024,
		AmountPaid:  6000,
		PaymentDate: date(2024, time.February, 3),
	}

	rp, err := ApplyPayment(db, shop.UserID, input)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, rp.PaidAmount)
	assert.Equal(t, 4000.0, rp.PendingAmount)
	assert.Equal(t, models.RentStatusPending, rp.Status)

	input.AmountPaid = 4000
	rp, err = ApplyPayment(db, shop.UserID, input)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, rp.PaidAmount)
	assert.Equal(t, 0.0, rp.PendingAmount)
	assert.Equal(t, models.RentStatusPaid, rp.Status)

	input.AmountPaid = 1
	_, err = ApplyPayment(db, shop.UserID, input)
	assert.ErrorIs(t, err, ErrAmountExceedsRentDue)

	// Reddedilen ödeme kaydı değiştirmemiş olmalı
	var stored models.RentPayment
	require.NoError(t, db.Where("month = ? AND year = ?", 1, 2024).First(&stored).Error)
	assert.Equal(t, 10000.0, stored.PaidAmount)
	assert.Equal(t, models.RentStatusPaid, stored.Status)
}

// Dönem kaydı yoksa dükkanın güncel kirasıyla açılır
func TestApplyPaymentCreatesMissingPeriod(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 7500, date(2024, time.January, 1))

	rp, err := ApplyPayment(db, shop.UserID, PaymentInput{
		TenantID:    *shop.TenantID,
		ShopID:      shop.ID,
		Month:       2,
		Year:        2024,
		AmountPaid:  7500,
		PaymentDate: date(2024, time.February, 28),
		Notes:       "elden tahsilat",
	})
	require.NoError(t, err)
	assert.Equal(t, 7500.0, rp.Amount)
	assert.Equal(t, models.RentStatusPaid, rp.Status)
	assert.Equal(t, "elden tahsilat", rp.Notes)

	var count int64
	require.NoError(t, db.Model(&models.RentPayment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 10000, date(2024, time.January, 1))

	base := PaymentInput{
		TenantID: *shop.TenantID, ShopID: shop.ID,
		Month: 1, Year: 2024, PaymentDate: date(2024, time.January, 31),
	}

	in := base
	in.AmountPaid = 0
	_, err := ApplyPayment(db, shop.UserID, in)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	in = base
	in.AmountPaid = -50
	_, err = ApplyPayment(db, shop.UserID, in)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	in = base
	in.Month = 13
	in.AmountPaid = 100
	_, err = ApplyPayment(db, shop.UserID, in)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	in = base
	in.ShopID = 9999
	in.AmountPaid = 100
	_, err = ApplyPayment(db, shop.UserID, in)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

// Bir kullanıcı başka kullanıcının dönem kaydına ödeme işleyemez
func TestApplyPaymentScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 10000, date(2024, time.January, 1))
	require.NoError(t, EnsurePeriods(db, shop, date(2024, time.February, 15)))

	other := models.User{Name: "Diğer", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	// Başka kullanıcının kiracı+dükkan kimlikleriyle ödeme denemesi
	_, err := ApplyPayment(db, other.ID, PaymentInput{
		TenantID:    *shop.TenantID,
		ShopID:      shop.ID,
		Month:       1,
		Year:        2024,
		AmountPaid:  10000,
		PaymentDate: date(2024, time.February, 3),
	})
	assert.ErrorIs(t, err, ErrShopNotFound)

	// Sahibin dönem kaydı dokunulmamış kalmalı
	var stored models.RentPayment
	require.NoError(t, db.Where("tenant_id = ? AND shop_id = ? AND month = ? AND year = ?",
		*shop.TenantID, shop.ID, 1, 2024).First(&stored).Error)
	assert.Equal(t, 0.0, stored.PaidAmount)
	assert.Equal(t, models.RentStatusPending, stored.Status)
}

// Dönem açılırken kiracı da çağıran kullanıcıya ait olmalı
func TestApplyPaymentForeignTenantRejected(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 8000, date(2024, time.March, 1))

	other := models.User{Name: "Diğer", Email: "other2@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)
	foreign := models.Tenant{UserID: other.ID, Name: "Yabancı Kiracı"}
	require.NoError(t, db.Create(&foreign).Error)

	_, err := ApplyPayment(db, shop.UserID, PaymentInput{
		TenantID:    foreign.ID,
		ShopID:      shop.ID,
		Month:       3,
		Year:        2024,
		AmountPaid:  8000,
		PaymentDate: date(2024, time.March, 31),
	})
	assert.ErrorIs(t, err, ErrTenantNotFound)

	var count int64
	require.NoError(t, db.Model(&models.RentPayment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// Ödenen tutar tekrarlanan geri almalarda sıfırın altına inmez
func TestReversePaymentNeverNegative(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 10000, date(2024, time.January, 15))
	require.NoError(t, EnsurePeriods(db, shop, date(2024, time.April, 10)))

	_, err := ApplyPayment(db, shop.UserID, PaymentInput{
		TenantID: *shop.TenantID, ShopID: shop.ID,
		Month: 1, Year: 2024, AmountPaid: 6000,
		PaymentDate: date(2024, time.February, 3),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, ReversePayment(db, shop.UserID, *shop.TenantID, shop.ID, 1, 2024, 6000))
	}

	var rp models.RentPayment
	require.NoError(t, db.Where("month = ? AND year = ?", 1, 2024).First(&rp).Error)
	assert.Equal(t, 0.0, rp.PaidAmount)
	assert.Equal(t, 10000.0, rp.PendingAmount)
	assert.Equal(t, models.RentStatusPending, rp.Status)
}

func TestReversePaymentMissingPeriodIsNoop(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 10000, date(2024, time.January, 15))

	require.NoError(t, ReversePayment(db, shop.UserID, *shop.TenantID, shop.ID, 6, 2024, 500))

	var count int64
	require.NoError(t, db.Model(&models.RentPayment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// Bozulan kalan/durum alanları toplu yeniden hesapta onarılır
func TestRecalculateAllRepairsDrift(t *testing.T) {
	db := newTestDB(t)
	shop := seedShop(t, db, 10000, date(2024, time.January, 15))
	require.NoError(t, EnsurePeriods(db, shop, date(2024, time.March, 10)))

	// İçe aktarılmış bozuk veri: ödenen dolu ama kalan/durum tutarsız
	require.NoError(t, db.Model(&models.RentPayment{}).
		Where("month = ? AND year = ?", 1, 2024).
		Updates(map[string]interface{}{
			"paid_amount":    10000,
			"pending_amount": 9999,
			"status":         models.RentStatusPending,
		}).Error)
	require.NoError(t, db.Model(&models.RentPayment{}).
		Where("month = ? AND year = ?", 2, 2024).
		Updates(map[string]interface{}{
			"paid_amount":    2500,
			"pending_amount": 0,
			"status":         models.RentStatusPaid,
		}).Error)

	require.NoError(t, RecalculateAll(db, shop.UserID))

	var jan, feb models.RentPayment
	require.NoError(t, db.Where("month = ? AND year = ?", 1, 2024).First(&jan).Error)
	require.NoError(t, db.Where("month = ? AND year = ?", 2, 2024).First(&feb).Error)

	assert.Equal(t, 0.0, jan.PendingAmount)
	assert.Equal(t, models.RentStatusPaid, jan.Status)
	assert.Equal(t, 7500.0, feb.PendingAmount)
	assert.Equal(t, models.RentStatusPending, feb.Status)
}
