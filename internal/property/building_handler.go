package property

import (
	"errors"
	"strings"

	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateBuildingRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type UpdateBuildingRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type BuildingResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	ShopCount int64  `json:"shop_count"`
	CreatedAt string `json:"created_at"`
}

// POST /api/buildings
func CreateBuildingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateBuildingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		building := models.Building{
			UserID:  userID,
			Name:    strings.TrimSpace(body.Name),
			Address: strings.TrimSpace(body.Address),
		}
		if err := database.DB.Create(&building).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bina oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(BuildingResponse{
			ID:        building.ID,
			Name:      building.Name,
			Address:   building.Address,
			CreatedAt: building.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/buildings
func ListBuildingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var buildings []models.Building
		if err := database.DB.Where("user_id = ?", userID).Order("name asc").Find(&buildings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Binalar listelenemedi")
		}

		resp := make([]BuildingResponse, 0, len(buildings))
		for _, b := range buildings {
			var shopCount int64
			database.DB.Model(&models.Shop{}).Where("building_id = ?", b.ID).Count(&shopCount)
			resp = append(resp, BuildingResponse{
				ID:        b.ID,
				Name:      b.Name,
				Address:   b.Address,
				ShopCount: shopCount,
				CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

// PUT /api/buildings/:id
func UpdateBuildingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var building models.Building
		if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&building).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bina bulunamadı")
		}

		var body UpdateBuildingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			building.Name = strings.TrimSpace(*body.Name)
		}
		if body.Address != nil {
			building.Address = strings.TrimSpace(*body.Address)
		}

		if err := database.DB.Save(&building).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bina güncellenemedi")
		}

		return c.JSON(BuildingResponse{
			ID:        building.ID,
			Name:      building.Name,
			Address:   building.Address,
			CreatedAt: building.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// DELETE /api/buildings/:id
// Bağlı dükkanlar, kira dönemleri ve tahsis kayıtları da kaldırılır.
func DeleteBuildingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id, err := paramUint(c, "id")
		if err != nil {
			return err
		}

		if err := DeleteBuilding(database.DB, userID, id); err != nil {
			if errors.Is(err, ErrBuildingNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Bina silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
