package backup

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"muhasebe-backend/internal/banking"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/rent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// :memory: bağlantı başına ayrı veritabanı verir, havuzu teke indir
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

// Hesap, kategori, bina/dükkan/kiracı, işlem, virman ve kira dönemleriyle
// dolu bir kullanıcı
func seedFullDataset(t *testing.T, db *gorm.DB) uint {
	t.Helper()

	user := models.User{Name: "Test", Email: "test@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	accA := models.BankAccount{
		UserID: user.ID, Name: "Vadesiz", Type: models.AccountTypeSavings,
		InitialBalance: 5000, CurrentBalance: 5000, IsActive: true,
	}
	accB := models.BankAccount{
		UserID: user.ID, Name: "Kasa", Type: models.AccountTypeCash,
		InitialBalance: 1000, CurrentBalance: 1000, IsActive: true,
	}
	require.NoError(t, db.Create(&accA).Error)
	require.NoError(t, db.Create(&accB).Error)

	cat := models.Category{
		UserID: user.ID, Name: "Kira Geliri",
		Type: models.TransactionTypeIncome, Context: models.ContextProperty,
	}
	require.NoError(t, db.Create(&cat).Error)

	building := models.Building{UserID: user.ID, Name: "Merkez Pasaj", Address: "Çarşı Cad. 12"}
	require.NoError(t, db.Create(&building).Error)
	tenant := models.Tenant{UserID: user.ID, Name: "Ahmet Yılmaz", Phone: "0532 000 00 00"}
	require.NoError(t, db.Create(&tenant).Error)

	alloc := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	shop := models.Shop{
		UserID: user.ID, BuildingID: building.ID, Name: "Dükkan 1",
		MonthlyRent: 10000, TenantID: &tenant.ID, AllocatedAt: &alloc, IsActive: true,
	}
	require.NoError(t, db.Create(&shop).Error)
	require.NoError(t, db.Create(&models.TenantShop{
		UserID: user.ID, TenantID: tenant.ID, ShopID: shop.ID, AllocatedAt: alloc,
	}).Error)

	require.NoError(t, rent.EnsurePeriods(db, &shop,
		time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)))

	_, err := banking.CreateTransaction(db, user.ID, banking.NewTransaction{
		AccountID: &accA.ID, CategoryID: &cat.ID, TenantID: &tenant.ID, ShopID: &shop.ID,
		Amount: 10000, Type: models.TransactionTypeIncome, Context: models.ContextProperty,
		Date: time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = banking.CreateTransfer(db, user.ID, accA.ID, accB.ID, 2500, "kasa takviyesi",
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	return user.ID
}

type counts struct {
	accounts, categories, buildings, shops, tenants,
	links, transactions, transfers, rentPayments int64
}

func snapshot(t *testing.T, db *gorm.DB) counts {
	t.Helper()
	var c counts
	require.NoError(t, db.Model(&models.BankAccount{}).Count(&c.accounts).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&c.categories).Error)
	require.NoError(t, db.Model(&models.Building{}).Count(&c.buildings).Error)
	require.NoError(t, db.Model(&models.Shop{}).Count(&c.shops).Error)
	require.NoError(t, db.Model(&models.Tenant{}).Count(&c.tenants).Error)
	require.NoError(t, db.Model(&models.TenantShop{}).Count(&c.links).Error)
	require.NoError(t, db.Model(&models.Transaction{}).Count(&c.transactions).Error)
	require.NoError(t, db.Model(&models.Transfer{}).Count(&c.transfers).Error)
	require.NoError(t, db.Model(&models.RentPayment{}).Count(&c.rentPayments).Error)
	return c
}

func TestExportContainsEverything(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)

	doc, err := Export(db, userID)
	require.NoError(t, err)

	assert.Len(t, doc.Accounts, 2)
	assert.Len(t, doc.Categories, 1)
	assert.Len(t, doc.Buildings, 1)
	assert.Len(t, doc.Shops, 1)
	assert.Len(t, doc.Tenants, 1)
	assert.Len(t, doc.Transactions, 1)
	assert.Len(t, doc.Transfers, 1)
	assert.Len(t, doc.RentPayments, 2) // Ocak ve Şubat

	// Kimlikler belgede aynen durmalı
	assert.Equal(t, *doc.Shops[0].TenantID, doc.Tenants[0].ID)
	assert.Equal(t, *doc.Transactions[0].ShopID, doc.Shops[0].ID)
}

func TestExportValidateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)

	doc, err := Export(db, userID)
	require.NoError(t, err)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	parsed, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.Accounts, parsed.Accounts)
	assert.Equal(t, doc.RentPayments, parsed.RentPayments)
}

func TestValidateStructure(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)
	doc, err := Export(db, userID)
	require.NoError(t, err)

	t.Run("dizi eksik", func(t *testing.T) {
		raw, _ := json.Marshal(doc)
		var top map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &top))
		delete(top, "transfers")
		broken, _ := json.Marshal(top)

		_, err := Validate(broken)
		var ib *InvalidBackupError
		require.ErrorAs(t, err, &ib)
		assert.Contains(t, ib.Reason, "transfers")
	})

	t.Run("dizi değil", func(t *testing.T) {
		raw, _ := json.Marshal(doc)
		var top map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &top))
		top["accounts"] = json.RawMessage(`{"id":1}`)
		broken, _ := json.Marshal(top)

		_, err := Validate(broken)
		var ib *InvalidBackupError
		require.ErrorAs(t, err, &ib)
		assert.Contains(t, ib.Reason, "accounts")
	})

	t.Run("JSON değil", func(t *testing.T) {
		_, err := Validate([]byte("bozuk"))
		var ib *InvalidBackupError
		assert.ErrorAs(t, err, &ib)
	})
}

func TestValidateMissingField(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)
	doc, err := Export(db, userID)
	require.NoError(t, err)

	doc.Transactions[0].Amount = nil
	raw, _ := json.Marshal(doc)

	_, err = Validate(raw)
	var mf *MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "transactions", mf.Entity)
	assert.Equal(t, "amount", mf.Field)
	assert.Equal(t, 0, mf.Index)
}

func TestValidateInvalidDate(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)
	doc, err := Export(db, userID)
	require.NoError(t, err)

	bad := "bugün"
	doc.Transfers[0].Date = &bad
	raw, _ := json.Marshal(doc)

	_, err = Validate(raw)
	var id *InvalidDateError
	require.ErrorAs(t, err, &id)
	assert.Equal(t, "transfers", id.Entity)
	assert.Equal(t, "date", id.Field)
	assert.Equal(t, "bugün", id.Value)
}

func TestRestoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)

	before := snapshot(t, db)
	doc, err := Export(db, userID)
	require.NoError(t, err)

	require.NoError(t, Restore(db, userID, doc))
	assert.Equal(t, before, snapshot(t, db))

	// Kimlikler korunmalı
	var shop models.Shop
	require.NoError(t, db.First(&shop, doc.Shops[0].ID).Error)
	assert.Equal(t, *doc.Shops[0].Name, shop.Name)

	// Tahsis kaydı dükkandan yeniden türetilmiş olmalı
	var link models.TenantShop
	require.NoError(t, db.Where("shop_id = ?", shop.ID).First(&link).Error)
	assert.Equal(t, *doc.Shops[0].TenantID, link.TenantID)
}

// İçe aktarma sonrası kalan/durum alanları yeniden hesaplanır
func TestRestoreRepairsRentLedger(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)

	doc, err := Export(db, userID)
	require.NoError(t, err)

	// Elle bozulmuş yedek: ödenen dolu, kalan/durum tutarsız
	doc.RentPayments[0].PaidAmount = *doc.RentPayments[0].Amount
	doc.RentPayments[0].PendingAmount = 9999
	doc.RentPayments[0].Status = string(models.RentStatusPending)

	require.NoError(t, Restore(db, userID, doc))

	var rp models.RentPayment
	require.NoError(t, db.First(&rp, doc.RentPayments[0].ID).Error)
	assert.Equal(t, 0.0, rp.PendingAmount)
	assert.Equal(t, models.RentStatusPaid, rp.Status)
}

// Ekleme ortasında patlayan içe aktarma: eski veri eksiksiz geri gelir,
// içe aktarma hatası raporlanır
func TestRestoreRollbackOnFailure(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)

	before := snapshot(t, db)
	var beforeBalance float64
	require.NoError(t, db.Model(&models.BankAccount{}).Where("name = ?", "Vadesiz").
		Select("current_balance").Scan(&beforeBalance).Error)

	doc, err := Export(db, userID)
	require.NoError(t, err)

	// Aynı doğal anahtarla ikinci kira dönemi: unique index ihlali,
	// ekleme yarıda patlar
	dup := doc.RentPayments[0]
	dup.ID = doc.RentPayments[1].ID + 1
	doc.RentPayments = append(doc.RentPayments, dup)

	err = Restore(db, userID, doc)
	require.Error(t, err)

	var re *RestoreError
	require.ErrorAs(t, err, &re)
	assert.Error(t, re.ImportErr)
	assert.NoError(t, re.RollbackErr)
	assert.Contains(t, err.Error(), "mevcut veri korundu")

	assert.Equal(t, before, snapshot(t, db))
	var afterBalance float64
	require.NoError(t, db.Model(&models.BankAccount{}).Where("name = ?", "Vadesiz").
		Select("current_balance").Scan(&afterBalance).Error)
	assert.Equal(t, beforeBalance, afterBalance)
}

// Çifte hata iki mesajı da ayrı ayrı taşır
func TestRestoreErrorMessages(t *testing.T) {
	importErr := errors.New("insert patladı")
	re := &RestoreError{ImportErr: importErr}
	assert.Contains(t, re.Error(), "insert patladı")
	assert.Contains(t, re.Error(), "mevcut veri korundu")
	assert.ErrorIs(t, re, importErr)

	re.RollbackErr = errors.New("rollback da patladı")
	assert.Contains(t, re.Error(), "insert patladı")
	assert.Contains(t, re.Error(), "rollback da patladı")
	assert.Contains(t, re.Error(), "veriyi kontrol edin")
}

// Başka kullanıcının verisi geri yüklemeden etkilenmez
func TestRestoreScopedToUser(t *testing.T) {
	db := newTestDB(t)
	userID := seedFullDataset(t, db)

	other := models.User{Name: "Diğer", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)
	otherAcc := models.BankAccount{
		UserID: other.ID, Name: "Diğer Hesap", Type: models.AccountTypeCurrent,
		InitialBalance: 42, CurrentBalance: 42, IsActive: true,
	}
	require.NoError(t, db.Create(&otherAcc).Error)

	doc, err := Export(db, userID)
	require.NoError(t, err)
	require.NoError(t, Restore(db, userID, doc))

	var kept models.BankAccount
	require.NoError(t, db.Where("user_id = ?", other.ID).First(&kept).Error)
	assert.Equal(t, 42.0, kept.CurrentBalance)
}
