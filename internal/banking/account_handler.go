package banking

import (
	"errors"
	"fmt"
	"strings"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateAccountRequest struct {
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	InitialBalance float64            `json:"initial_balance"`
}

type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type AccountResponse struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	InitialBalance float64            `json:"initial_balance"`
	CurrentBalance float64            `json:"current_balance"`
	IsActive       bool               `json:"is_active"`
	CreatedAt      string             `json:"created_at"`
}

func accountToResponse(a *models.BankAccount) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/accounts
func CreateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}
		if !models.ValidAccountType(body.Type) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz hesap tipi")
		}

		initial := ledger.Round2(body.InitialBalance)
		account := models.BankAccount{
			UserID:         userID,
			Name:           strings.TrimSpace(body.Name),
			Type:           body.Type,
			InitialBalance: initial,
			CurrentBalance: initial, // açılışta bakiye = açılış bakiyesi
			IsActive:       true,
		}

		if err := database.DB.Create(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap oluşturulamadı")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "bank_account",
				EntityID:    account.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Hesap eklendi: %s - %s", account.Type, account.Name),
				After:       account,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(accountToResponse(&account))
	}
}

// GET /api/accounts
func ListAccountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var accounts []models.BankAccount
		if err := database.DB.
			Where("user_id = ?", userID).
			Order("type ASC, name ASC").
			Find(&accounts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesaplar listelenemedi")
		}

		resp := make([]AccountResponse, 0, len(accounts))
		for i := range accounts {
			resp = append(resp, accountToResponse(&accounts[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/accounts/:id
// Bakiye buradan değiştirilemez; bakiyeyi yalnızca işlem/virman kayıtları oynatır.
func UpdateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var account models.BankAccount
		if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hesap bulunamadı")
		}

		var body UpdateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			account.Name = strings.TrimSpace(*body.Name)
		}
		if body.IsActive != nil {
			account.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap güncellenemedi")
		}

		return c.JSON(accountToResponse(&account))
	}
}

// DELETE /api/accounts/:id
// İşlemlerdeki hesap referansı null'lanır, virmanlar silinir.
func DeleteAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		if err := DeleteAccount(database.DB, userID, id); err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
