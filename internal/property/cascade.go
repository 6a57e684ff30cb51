package property

import (
	"errors"

	"muhasebe-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrBuildingNotFound = errors.New("bina bulunamadı")
	ErrShopNotFound     = errors.New("dükkan bulunamadı")
	ErrTenantNotFound   = errors.New("kiracı bulunamadı")
)

// Sahip kayıt silinirken bağımlı satırlar belirli sırayla kaldırılır ki
// yabancı anahtar ihlali veya sahipsiz kayıt kalmasın. Her fonksiyon tek
// transaction içinde ya hep ya hiç çalışır.

func DeleteBuilding(db *gorm.DB, userID, buildingID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var building models.Building
		if err := tx.Where("id = ? AND user_id = ?", buildingID, userID).First(&building).Error; err != nil {
			return ErrBuildingNotFound
		}

		var shopIDs []uint
		if err := tx.Model(&models.Shop{}).Where("building_id = ?", building.ID).
			Pluck("id", &shopIDs).Error; err != nil {
			return err
		}

		if len(shopIDs) > 0 {
			if err := tx.Where("shop_id IN ?", shopIDs).Delete(&models.RentPayment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("shop_id IN ?", shopIDs).Delete(&models.TenantShop{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Transaction{}).Where("shop_id IN ?", shopIDs).
				Update("shop_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("building_id = ?", building.ID).Delete(&models.Shop{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Transaction{}).Where("building_id = ?", building.ID).
			Update("building_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&building).Error
	})
}

func DeleteShop(db *gorm.DB, userID, shopID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var shop models.Shop
		if err := tx.Where("id = ? AND user_id = ?", shopID, userID).First(&shop).Error; err != nil {
			return ErrShopNotFound
		}

		if err := tx.Where("shop_id = ?", shop.ID).Delete(&models.RentPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shop_id = ?", shop.ID).Delete(&models.TenantShop{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).Where("shop_id = ?", shop.ID).
			Update("shop_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&shop).Error
	})
}

func DeleteTenant(db *gorm.DB, userID, tenantID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := tx.Where("id = ? AND user_id = ?", tenantID, userID).First(&tenant).Error; err != nil {
			return ErrTenantNotFound
		}

		if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.RentPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.TenantShop{}).Error; err != nil {
			return err
		}
		// Kiracının dükkanları boşa çıkar: tahsis ve avans bilgisi sıfırlanır
		if err := tx.Model(&models.Shop{}).Where("tenant_id = ?", tenant.ID).
			Updates(map[string]interface{}{
				"tenant_id":       nil,
				"allocated_at":    nil,
				"is_advance_paid": false,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).Where("tenant_id = ?", tenant.ID).
			Update("tenant_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&tenant).Error
	})
}
