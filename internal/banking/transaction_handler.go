package banking

import (
	"errors"
	"fmt"
	"time"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/rent"

	"github.com/gofiber/fiber/v2"
)

type CreateTransactionRequest struct {
	AccountID   *uint   `json:"account_id"`
	CategoryID  *uint   `json:"category_id"`
	TenantID    *uint   `json:"tenant_id"`
	ShopID      *uint   `json:"shop_id"`
	BuildingID  *uint   `json:"building_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`    // income / expense
	Context     string  `json:"context"` // personal / property
	Date        *string `json:"date"`    // "2025-12-09", boşsa bugün
	Notes       string  `json:"notes"`
}

type TransactionResponse struct {
	ID          uint    `json:"id"`
	AccountID   *uint   `json:"account_id"`
	CategoryID  *uint   `json:"category_id"`
	TenantID    *uint   `json:"tenant_id"`
	ShopID      *uint   `json:"shop_id"`
	BuildingID  *uint   `json:"building_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Context     string  `json:"context"`
	Date        string  `json:"date"`
	Notes       string  `json:"notes"`
}

func transactionToResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		TenantID:    t.TenantID,
		ShopID:      t.ShopID,
		BuildingID:  t.BuildingID,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Context:     string(t.Context),
		Date:        t.Date.Format("2006-01-02"),
		Notes:       t.Notes,
	}
}

// POST /api/transactions
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateTransactionRequest
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

		context := models.ContextPersonal
		if body.Context != "" {
			if body.Context != string(models.ContextPersonal) && body.Context != string(models.ContextProperty) {
				return fiber.NewError(fiber.StatusBadRequest, "context 'personal' veya 'property' olmalı")
			}
			context = models.TransactionContext(body.Context)
		}

		t, err := CreateTransaction(database.DB, userID, NewTransaction{
			AccountID:   body.AccountID,
			CategoryID:  body.CategoryID,
			TenantID:    body.TenantID,
			ShopID:      body.ShopID,
			BuildingID:  body.BuildingID,
			Description: body.Description,
			Amount:      body.Amount,
			Type:        models.TransactionType(body.Type),
			Context:     context,
			Date:        date,
			Notes:       body.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidTransactionType), errors.Is(err, ErrInvalidAmount):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, ErrAccountNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, rent.ErrAmountExceedsRentDue), errors.Is(err, rent.ErrShopNotFound), errors.Is(err, rent.ErrTenantNotFound):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem kaydedilemedi")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "transaction",
				EntityID:    t.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("İşlem eklendi: %s %.2f - %s", t.Type, t.Amount, t.Description),
				After:       t,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(transactionToResponse(t))
	}
}

// GET /api/transactions?account_id=&type=&context=&from=&to=
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

		if accountID := c.Query("account_id"); accountID != "" {
			dbq = dbq.Where("account_id = ?", accountID)
		}
		if txType := c.Query("type"); txType != "" {
			if txType != string(models.TransactionTypeIncome) && txType != string(models.TransactionTypeExpense) {
				return fiber.NewError(fiber.StatusBadRequest, "type 'income' veya 'expense' olmalı")
			}
			dbq = dbq.Where("type = ?", txType)
		}
		if context := c.Query("context"); context != "" {
			dbq = dbq.Where("context = ?", context)
		}
		if from := c.Query("from"); from != "" {
			d, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("date >= ?", d)
		}
		if to := c.Query("to"); to != "" {
			d, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("date < ?", d.AddDate(0, 0, 1))
		}

		var transactions []models.Transaction
		if err := dbq.Order("date desc, id desc").Find(&transactions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler listelenemedi")
		}

		resp := make([]TransactionResponse, 0, len(transactions))
		for i := range transactions {
			resp = append(resp, transactionToResponse(&transactions[i]))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/transactions/:id
// Bakiye etkisi geri alınır; kira tahsilatıysa dönem kaydı da düzeltilir.
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var before models.Transaction
		_ = database.DB.Where("id = ? AND user_id = ?", id, userID).First(&before).Error

		if err := DeleteTransaction(database.DB, userID, id); err != nil {
			switch {
			case errors.Is(err, ErrTransactionNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, ErrTransactionNoAccount):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem silinemedi")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "transaction",
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("İşlem silindi: %s %.2f", before.Type, before.Amount),
				Before:      before,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
