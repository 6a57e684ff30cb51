package property

import (
	"testing"
	"time"

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

type fixture struct {
	user     models.User
	building models.Building
	tenant   models.Tenant
	shop     models.Shop
	txn      models.Transaction
}

// Bina > dükkan > kiracı zinciri, tahsis kaydı, kira dönemleri ve
// dükkana bağlı bir işlemle birlikte
func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{}

	f.user = models.User{Name: "Test", Email: "test@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&f.user).Error)

	f.building = models.Building{UserID: f.user.ID, Name: "Merkez Pasaj"}
	require.NoError(t, db.Create(&f.building).Error)

	f.tenant = models.Tenant{UserID: f.user.ID, Name: "Ahmet Yılmaz"}
	require.NoError(t, db.Create(&f.tenant).Error)

	alloc := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	f.shop = models.Shop{
		UserID: f.user.ID, BuildingID: f.building.ID, Name: "Dükkan 1",
		MonthlyRent: 10000, TenantID: &f.tenant.ID, AllocatedAt: &alloc,
		IsAdvancePaid: true, IsActive: true,
	}
	require.NoError(t, db.Create(&f.shop).Error)

	link := models.TenantShop{
		UserID: f.user.ID, TenantID: f.tenant.ID, ShopID: f.shop.ID, AllocatedAt: alloc,
	}
	require.NoError(t, db.Create(&link).Error)

	require.NoError(t, rent.EnsurePeriods(db, &f.shop,
		time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)))

	f.txn = models.Transaction{
		UserID: f.user.ID, TenantID: &f.tenant.ID, ShopID: &f.shop.ID,
		BuildingID: &f.building.ID, Amount: 10000,
		Type: models.TransactionTypeIncome, Context: models.ContextProperty,
		Date: time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&f.txn).Error)

	return f
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestDeleteBuildingCascade(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)

	require.NoError(t, DeleteBuilding(db, f.user.ID, f.building.ID))

	assert.EqualValues(t, 0, count(t, db, &models.Building{}))
	assert.EqualValues(t, 0, count(t, db, &models.Shop{}))
	assert.EqualValues(t, 0, count(t, db, &models.RentPayment{}))
	assert.EqualValues(t, 0, count(t, db, &models.TenantShop{}))

	// İşlem silinmez, mülk referansları boşaltılır
	var txn models.Transaction
	require.NoError(t, db.First(&txn, f.txn.ID).Error)
	assert.Nil(t, txn.ShopID)
	assert.Nil(t, txn.BuildingID)

	// Kiracı kaydı binadan bağımsız, durur
	assert.EqualValues(t, 1, count(t, db, &models.Tenant{}))
}

func TestDeleteShopCascade(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)

	require.NoError(t, DeleteShop(db, f.user.ID, f.shop.ID))

	assert.EqualValues(t, 0, count(t, db, &models.Shop{}))
	assert.EqualValues(t, 0, count(t, db, &models.RentPayment{}))
	assert.EqualValues(t, 0, count(t, db, &models.TenantShop{}))
	assert.EqualValues(t, 1, count(t, db, &models.Building{}))

	var txn models.Transaction
	require.NoError(t, db.First(&txn, f.txn.ID).Error)
	assert.Nil(t, txn.ShopID)
	assert.NotNil(t, txn.BuildingID)
}

func TestDeleteTenantCascade(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)

	require.NoError(t, DeleteTenant(db, f.user.ID, f.tenant.ID))

	assert.EqualValues(t, 0, count(t, db, &models.Tenant{}))
	assert.EqualValues(t, 0, count(t, db, &models.RentPayment{}))
	assert.EqualValues(t, 0, count(t, db, &models.TenantShop{}))

	// Dükkan boşa çıkar: tahsis ve avans bilgisi sıfırlanır
	var shop models.Shop
	require.NoError(t, db.First(&shop, f.shop.ID).Error)
	assert.Nil(t, shop.TenantID)
	assert.Nil(t, shop.AllocatedAt)
	assert.False(t, shop.IsAdvancePaid)

	var txn models.Transaction
	require.NoError(t, db.First(&txn, f.txn.ID).Error)
	assert.Nil(t, txn.TenantID)
	assert.NotNil(t, txn.ShopID)
}

func TestCascadeOwnershipScoped(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)

	other := models.User{Name: "Diğer", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	assert.ErrorIs(t, DeleteBuilding(db, other.ID, f.building.ID), ErrBuildingNotFound)
	assert.ErrorIs(t, DeleteShop(db, other.ID, f.shop.ID), ErrShopNotFound)
	assert.ErrorIs(t, DeleteTenant(db, other.ID, f.tenant.ID), ErrTenantNotFound)

	// Hiçbir şey silinmemiş olmalı
	assert.EqualValues(t, 1, count(t, db, &models.Building{}))
	assert.EqualValues(t, 1, count(t, db, &models.Shop{}))
	assert.EqualValues(t, 1, count(t, db, &models.Tenant{}))
	assert.EqualValues(t, 3, count(t, db, &models.RentPayment{}))
}
