package database

import (
	"log"

	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: Tablo şemalarını oluştur/güncelle. Testler bunu sqlite üzerinde de çağırır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.BankAccount{},
		&models.Category{},
		&models.Building{},
		&models.Tenant{},
		&models.Shop{},
		&models.TenantShop{},
		&models.Transaction{},
		&models.Transfer{},
		&models.RentPayment{},
		&models.AuditLog{},
	)
}
