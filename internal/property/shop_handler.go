package property

import (
	"errors"
	"strings"
	"time"

	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/banking"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/rent"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateShopRequest struct {
	BuildingID  uint    `json:"building_id"`
	Name        string  `json:"name"`
	MonthlyRent float64 `json:"monthly_rent"`
	Advance     float64 `json:"advance"`
	TenantID    *uint   `json:"tenant_id"`
	AllocatedAt *string `json:"allocated_at"` // "2025-12-09"
}

type UpdateShopRequest struct {
	Name        *string  `json:"name"`
	MonthlyRent *float64 `json:"monthly_rent"`
	Advance     *float64 `json:"advance"`
	IsActive    *bool    `json:"is_active"`

	// Kiracı tahsisi: tenant_id=0 kiracıyı kaldırır
	TenantID    *uint   `json:"tenant_id"`
	AllocatedAt *string `json:"allocated_at"`

	// Avans tahsilatı: true yapılırsa ve hesap verilirse gelir işlemi de açılır
	IsAdvancePaid    *bool `json:"is_advance_paid"`
	AdvanceAccountID *uint `json:"advance_account_id"`
}

type ShopResponse struct {
	ID            uint    `json:"id"`
	BuildingID    uint    `json:"building_id"`
	Name          string  `json:"name"`
	MonthlyRent   float64 `json:"monthly_rent"`
	Advance       float64 `json:"advance"`
	IsAdvancePaid bool    `json:"is_advance_paid"`
	TenantID      *uint   `json:"tenant_id"`
	AllocatedAt   *string `json:"allocated_at"`
	IsOccupied    bool    `json:"is_occupied"`
	IsActive      bool    `json:"is_active"`
}

func shopToResponse(s *models.Shop, now time.Time) ShopResponse {
	var allocatedAt *string
	if s.AllocatedAt != nil {
		str := s.AllocatedAt.Format("2006-01-02")
		allocatedAt = &str
	}
	return ShopResponse{
		ID:            s.ID,
		BuildingID:    s.BuildingID,
		Name:          s.Name,
		MonthlyRent:   s.MonthlyRent,
		Advance:       s.Advance,
		IsAdvancePaid: s.IsAdvancePaid,
		TenantID:      s.TenantID,
		AllocatedAt:   allocatedAt,
		IsOccupied:    s.IsOccupied(now),
		IsActive:      s.IsActive,
	}
}

func parseDateOnly(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return rent.DateOnly(d), nil
}

// POST /api/shops
// Kiracı ve geçmiş bir tahsis tarihi verilirse eksik kira dönemleri hemen açılır.
func CreateShopHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateShopRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}
		if body.MonthlyRent <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "monthly_rent 0'dan büyük olmalı")
		}

		var building models.Building
		if err := database.DB.Where("id = ? AND user_id = ?", body.BuildingID, userID).First(&building).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bina bulunamadı")
		}

		shop := models.Shop{
			UserID:      userID,
			BuildingID:  building.ID,
			Name:        strings.TrimSpace(body.Name),
			MonthlyRent: body.MonthlyRent,
			Advance:     body.Advance,
			IsActive:    true,
		}

		if body.TenantID != nil {
			var tenant models.Tenant
			if err := database.DB.Where("id = ? AND user_id = ?", *body.TenantID, userID).First(&tenant).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Kiracı bulunamadı")
			}
			if body.AllocatedAt == nil || *body.AllocatedAt == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Kiracı verildiğinde allocated_at zorunlu")
			}
			alloc, err := parseDateOnly(*body.AllocatedAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			shop.TenantID = body.TenantID
			shop.AllocatedAt = &alloc
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&shop).Error; err != nil {
				return err
			}
			if shop.TenantID != nil {
				link := models.TenantShop{
					UserID:      userID,
					TenantID:    *shop.TenantID,
					ShopID:      shop.ID,
					AllocatedAt: *shop.AllocatedAt,
				}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
				return rent.EnsurePeriods(tx, &shop, time.Now())
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dükkan oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(shopToResponse(&shop, time.Now()))
	}
}

// GET /api/shops?building_id=
func ListShopsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("user_id = ?", userID)
		if bid := c.Query("building_id"); bid != "" {
			dbq = dbq.Where("building_id = ?", bid)
		}

		var shops []models.Shop
		if err := dbq.Order("building_id asc, name asc").Find(&shops).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dükkanlar listelenemedi")
		}

		now := time.Now()
		resp := make([]ShopResponse, 0, len(shops))
		for i := range shops {
			resp = append(resp, shopToResponse(&shops[i], now))
		}
		return c.JSON(resp)
	}
}

// PUT /api/shops/:id
// Kiracı veya tahsis tarihi değişirse kira dönemleri yeni tarihe göre yeniden
// tahakkuk edilir; yeni tarihten önceki dönemler silinir.
func UpdateShopHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var shop models.Shop
		if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&shop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Dükkan bulunamadı")
		}

		var body UpdateShopRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			shop.Name = strings.TrimSpace(*body.Name)
		}
		if body.MonthlyRent != nil {
			if *body.MonthlyRent <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "monthly_rent 0'dan büyük olmalı")
			}
			// Geçmiş dönemlerin tutarı değişmez, yeni kira sadece yeni dönemlere uygulanır
			shop.MonthlyRent = *body.MonthlyRent
		}
		if body.Advance != nil {
			shop.Advance = *body.Advance
		}
		if body.IsActive != nil {
			shop.IsActive = *body.IsActive
		}

		allocationChanged := false
		tenantCleared := false

		if body.TenantID != nil {
			if *body.TenantID == 0 {
				// Kiracı kaldırılıyor: tahsis tarihi de temizlenir
				tenantCleared = shop.TenantID != nil
				shop.TenantID = nil
				shop.AllocatedAt = nil
				shop.IsAdvancePaid = false
			} else {
				var tenant models.Tenant
				if err := database.DB.Where("id = ? AND user_id = ?", *body.TenantID, userID).First(&tenant).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound, "Kiracı bulunamadı")
				}
				if shop.TenantID == nil || *shop.TenantID != *body.TenantID {
					allocationChanged = true
				}
				shop.TenantID = body.TenantID
			}
		}

		if body.AllocatedAt != nil && *body.AllocatedAt != "" {
			if shop.TenantID == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tahsis tarihi için önce kiracı atanmalı")
			}
			alloc, err := parseDateOnly(*body.AllocatedAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			if shop.AllocatedAt == nil || !shop.AllocatedAt.Equal(alloc) {
				allocationChanged = true
			}
			shop.AllocatedAt = &alloc
		}

		if shop.TenantID != nil && shop.AllocatedAt == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kiracı atanmışken allocated_at boş olamaz")
		}

		advancePaidNow := body.IsAdvancePaid != nil && *body.IsAdvancePaid && !shop.IsAdvancePaid
		if body.IsAdvancePaid != nil {
			shop.IsAdvancePaid = *body.IsAdvancePaid
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&shop).Error; err != nil {
				return err
			}

			if tenantCleared {
				// Eski kiracının tahsis kaydı da kalkar
				if err := tx.Where("shop_id = ?", shop.ID).
					Delete(&models.TenantShop{}).Error; err != nil {
					return err
				}
			}

			if allocationChanged && shop.TenantID != nil {
				// Tahsis kaydını tazele, eski kiracının kaydı da kalkar
				if err := tx.Where("shop_id = ?", shop.ID).
					Delete(&models.TenantShop{}).Error; err != nil {
					return err
				}
				link := models.TenantShop{
					UserID:      userID,
					TenantID:    *shop.TenantID,
					ShopID:      shop.ID,
					AllocatedAt: *shop.AllocatedAt,
				}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
				if err := rent.ReaccrueFrom(tx, &shop, time.Now()); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dükkan güncellenemedi")
		}

		// Avans tahsilatı hesaba işlenecekse gelir işlemi aç
		if advancePaidNow && body.AdvanceAccountID != nil && shop.Advance > 0 {
			buildingID := shop.BuildingID
			_, err := banking.CreateTransaction(database.DB, userID, banking.NewTransaction{
				AccountID:   body.AdvanceAccountID,
				ShopID:      &shop.ID,
				BuildingID:  &buildingID,
				Description: "Avans tahsilatı: " + shop.Name,
				Amount:      shop.Advance,
				Type:        models.TransactionTypeIncome,
				Context:     models.ContextProperty,
				Date:        time.Now(),
			})
			if err != nil {
				if errors.Is(err, banking.ErrAccountNotFound) {
					return fiber.NewError(fiber.StatusNotFound, err.Error())
				}
				return fiber.NewError(fiber.StatusInternalServerError, "Avans işlemi kaydedilemedi")
			}
		}

		return c.JSON(shopToResponse(&shop, time.Now()))
	}
}

// DELETE /api/shops/:id
func DeleteShopHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id, err := paramUint(c, "id")
		if err != nil {
			return err
		}

		if err := DeleteShop(database.DB, userID, id); err != nil {
			if errors.Is(err, ErrShopNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Dükkan silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
