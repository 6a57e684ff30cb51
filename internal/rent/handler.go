package rent

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

type RecordPaymentRequest struct {
	TenantID    uint    `json:"tenant_id"`
	ShopID      uint    `json:"shop_id"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	AmountPaid  float64 `json:"amount_paid"`
	PaymentDate *string `json:"payment_date"` // "2025-12-09", boşsa bugün
	Notes       string  `json:"notes"`
}

type RentPaymentResponse struct {
	ID            uint              `json:"id"`
	TenantID      uint              `json:"tenant_id"`
	ShopID        uint              `json:"shop_id"`
	Month         int               `json:"month"`
	Year          int               `json:"year"`
	Amount        float64           `json:"amount"`
	PaidAmount    float64           `json:"paid_amount"`
	PendingAmount float64           `json:"pending_amount"`
	Status        models.RentStatus `json:"status"`
	PaymentDate   *string           `json:"payment_date"`
	Notes         string            `json:"notes"`
}

func toResponse(rp *models.RentPayment) RentPaymentResponse {
	var paymentDate *string
	if rp.PaymentDate != nil {
		s := rp.PaymentDate.Format("2006-01-02")
		paymentDate = &s
	}
	return RentPaymentResponse{
		ID:            rp.ID,
		TenantID:      rp.TenantID,
		ShopID:        rp.ShopID,
		Month:         rp.Month,
		Year:          rp.Year,
		Amount:        rp.Amount,
		PaidAmount:    rp.PaidAmount,
		PendingAmount: rp.PendingAmount,
		Status:        rp.Status,
		PaymentDate:   paymentDate,
		Notes:         rp.Notes,
	}
}

// GET /api/rent-payments?tenant_id=&shop_id=&year=&month=&status=
func ListRentPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.RentPayment{}).Where("user_id = ?", userID)

		for param, column := range map[string]string{
			"tenant_id": "tenant_id",
			"shop_id":   "shop_id",
			"year":      "year",
			"month":     "month",
		} {
			if v := c.Query(param); v != "" {
				var n uint
				if _, err := fmt.Sscan(v, &n); err != nil || n == 0 {
					return fiber.NewError(fiber.StatusBadRequest, param+" geçersiz")
				}
				dbq = dbq.Where(column+" = ?", n)
			}
		}
		if status := c.Query("status"); status != "" {
			if status != string(models.RentStatusPending) && status != string(models.RentStatusPaid) {
				return fiber.NewError(fiber.StatusBadRequest, "status 'pending' veya 'paid' olmalı")
			}
			dbq = dbq.Where("status = ?", status)
		}

		var payments []models.RentPayment
		if err := dbq.Order("year desc, month desc, id desc").Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kayıtları listelenemedi")
		}

		resp := make([]RentPaymentResponse, 0, len(payments))
		for i := range payments {
			resp = append(resp, toResponse(&payments[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/rent-payments
// Aynı dönem için tekrar tekrar çağrılabilir; her çağrı ödenen tutarı artırır.
func RecordPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var body RecordPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.TenantID == 0 || body.ShopID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "tenant_id ve shop_id zorunlu")
		}
		if body.Year < 2000 || body.Year > 2200 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}

		paymentDate := time.Now()
		if body.PaymentDate != nil && *body.PaymentDate != "" {
			d, err := time.Parse("2006-01-02", *body.PaymentDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			paymentDate = d
		}

		// Kiracı ve dükkan bu kullanıcıya mı ait?
		var tenant models.Tenant
		if err := database.DB.Where("id = ? AND user_id = ?", body.TenantID, userID).First(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kiracı bulunamadı")
		}

		rp, err := ApplyPayment(database.DB, userID, PaymentInput{
			TenantID:    body.TenantID,
			ShopID:      body.ShopID,
			Month:       body.Month,
			Year:        body.Year,
			AmountPaid:  body.AmountPaid,
			PaymentDate: paymentDate,
			Notes:       body.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidPeriod):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, ErrAmountExceedsRentDue):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, ErrShopNotFound), errors.Is(err, ErrTenantNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme kaydedilemedi")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "rent_payment",
				EntityID:    rp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Kira ödemesi işlendi: %d/%d - %.2f", rp.Month, rp.Year, body.AmountPaid),
				After:       rp,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(rp))
	}
}

// DELETE /api/rent-payments/:id
// Bekleyen eski bir dönem kaydını elle temizlemek için (ör: kira başka yoldan tahsil edildi)
func DeleteRentPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var rp models.RentPayment
		if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&rp).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kira kaydı bulunamadı")
		}

		if err := database.DB.Delete(&rp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kaydı silinemedi")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "rent_payment",
				EntityID:    rp.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Kira dönemi silindi: %d/%d", rp.Month, rp.Year),
				Before:      rp,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
