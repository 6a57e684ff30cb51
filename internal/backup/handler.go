package backup

import (
	"errors"
	"time"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/backup/export
// Belgeyi indirilebilir dosya olarak döner.
func ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		doc, err := Export(database.DB, userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yedek oluşturulamadı")
		}

		filename := "muhasebe-yedek-" + time.Now().Format("2006-01-02") + ".json"
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.JSON(doc)
	}
}

// POST /api/backup/import
func ImportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		doc, err := Validate(c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := Restore(database.DB, userID, doc); err != nil {
			var re *RestoreError
			if errors.As(err, &re) && re.RollbackErr != nil {
				// Çifte hata: kullanıcı verisini kontrol etmeli
				return fiber.NewError(fiber.StatusInternalServerError, re.Error())
			}
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "backup",
				EntityID:    0,
				Action:      models.AuditActionCreate,
				Description: "Yedekten geri yükleme tamamlandı",
			})
		}

		return c.JSON(fiber.Map{"message": "Yedek başarıyla geri yüklendi"})
	}
}
