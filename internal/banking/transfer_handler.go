package banking

import (
	"errors"
	"fmt"
	"time"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTransferRequest struct {
	FromAccountID uint    `json:"from_account_id"`
	ToAccountID   uint    `json:"to_account_id"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Date          *string `json:"date"` // "2025-12-09", boşsa bugün
}

type TransferResponse struct {
	ID            uint    `json:"id"`
	FromAccountID uint    `json:"from_account_id"`
	ToAccountID   uint    `json:"to_account_id"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
}

func transferToResponse(t *models.Transfer) TransferResponse {
	return TransferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Description:   t.Description,
		Date:          t.Date.Format("2006-01-02"),
	}
}

// POST /api/transfers
func CreateTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		date := time.Now()
		if body.Date != nil && *body.Date != "" {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			date = d
		}

		tr, err := CreateTransfer(database.DB, userID, body.FromAccountID, body.ToAccountID,
			body.Amount, body.Description, date)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSameAccount):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, ErrInsufficientBalance):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, ErrAccountNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Virman kaydedilemedi")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "transfer",
				EntityID:    tr.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Virman: %.2f (%d -> %d)", tr.Amount, tr.FromAccountID, tr.ToAccountID),
				After:       tr,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(transferToResponse(tr))
	}
}

// GET /api/transfers?account_id=
func ListTransfersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Transfer{}).Where("user_id = ?", userID)
		if accountID := c.Query("account_id"); accountID != "" {
			dbq = dbq.Where("from_account_id = ? OR to_account_id = ?", accountID, accountID)
		}

		var transfers []models.Transfer
		if err := dbq.Order("date desc, id desc").Find(&transfers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Virmanlar listelenemedi")
		}

		resp := make([]TransferResponse, 0, len(transfers))
		for i := range transfers {
			resp = append(resp, transferToResponse(&transfers[i]))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/transfers/:id
// İki hesabın bakiyesi de simetrik geri alınır.
func DeleteTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		if err := DeleteTransfer(database.DB, userID, id); err != nil {
			switch {
			case errors.Is(err, ErrTransferNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, ErrTransferNotOwned):
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			case errors.Is(err, ErrAccountNotFound):
				return fiber.NewError(fiber.StatusBadRequest, "Virmanın hesapları artık mevcut değil")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Virman silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
