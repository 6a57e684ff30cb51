package category

import (
	"fmt"

	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Context string `json:"context"`
}

// POST /api/categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori adı boş olamaz")
		}
		t := models.TransactionType(body.Type)
		if t != models.TransactionTypeIncome && t != models.TransactionTypeExpense {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori tipi 'income' veya 'expense' olmalı")
		}
		ctxVal := models.TransactionContext(body.Context)
		if ctxVal == "" {
			ctxVal = models.ContextPersonal
		}
		if ctxVal != models.ContextPersonal && ctxVal != models.ContextProperty {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori bağlamı 'personal' veya 'property' olmalı")
		}

		cat := models.Category{
			UserID:  userID,
			Name:    body.Name,
			Type:    t,
			Context: ctxVal,
		}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori oluşturulamadı")
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// GET /api/categories?type=&context=
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Category{}).Where("user_id = ?", userID)
		if t := c.Query("type"); t != "" {
			dbq = dbq.Where("type = ?", t)
		}
		if ctxVal := c.Query("context"); ctxVal != "" {
			dbq = dbq.Where("context = ?", ctxVal)
		}

		var cats []models.Category
		if err := dbq.Order("name asc").Find(&cats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}
		return c.JSON(cats)
	}
}

// PUT /api/categories/:id
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var cat models.Category
		if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		var body struct {
			Name *string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name != nil {
			if *body.Name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori adı boş olamaz")
			}
			cat.Name = *body.Name
		}

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori güncellenemedi")
		}
		return c.JSON(cat)
	}
}

// DELETE /api/categories/:id
// Kategoriye bağlı hareketler silinmez, category_id alanları boşaltılır.
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var cat models.Category
		if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Transaction{}).
				Where("user_id = ? AND category_id = ?", userID, id).
				Update("category_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&cat).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori silinemedi")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
