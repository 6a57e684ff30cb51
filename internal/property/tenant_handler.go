package property

import (
	"errors"
	"strings"

	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTenantRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type UpdateTenantRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

type TenantResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func tenantToResponse(t *models.Tenant) TenantResponse {
	return TenantResponse{
		ID:    t.ID,
		Name:  t.Name,
		Phone: t.Phone,
		Email: t.Email,
		Notes: t.Notes,
	}
}

// POST /api/tenants
func CreateTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateTenantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		tenant := models.Tenant{
			UserID: userID,
			Name:   strings.TrimSpace(body.Name),
			Phone:  strings.TrimSpace(body.Phone),
			Email:  strings.TrimSpace(body.Email),
			Notes:  body.Notes,
		}
		if err := database.DB.Create(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(tenantToResponse(&tenant))
	}
}

// GET /api/tenants
func ListTenantsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var tenants []models.Tenant
		if err := database.DB.Where("user_id = ?", userID).Order("name asc").Find(&tenants).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracılar listelenemedi")
		}

		resp := make([]TenantResponse, 0, len(tenants))
		for i := range tenants {
			resp = append(resp, tenantToResponse(&tenants[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/tenants/:id
func UpdateTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var tenant models.Tenant
		if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kiracı bulunamadı")
		}

		var body UpdateTenantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			tenant.Name = strings.TrimSpace(*body.Name)
		}
		if body.Phone != nil {
			tenant.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Email != nil {
			tenant.Email = strings.TrimSpace(*body.Email)
		}
		if body.Notes != nil {
			tenant.Notes = *body.Notes
		}

		if err := database.DB.Save(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracı güncellenemedi")
		}

		return c.JSON(tenantToResponse(&tenant))
	}
}

// DELETE /api/tenants/:id
// Kira dönemleri ve tahsis kayıtları silinir, dükkan ve işlemlerdeki
// kiracı referansları boşa çıkarılır.
func DeleteTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id, err := paramUint(c, "id")
		if err != nil {
			return err
		}

		if err := DeleteTenant(database.DB, userID, id); err != nil {
			if errors.Is(err, ErrTenantNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracı silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
