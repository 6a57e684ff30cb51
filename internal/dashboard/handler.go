package dashboard

import (
	"fmt"
	"time"

	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SummaryResponse struct {
	TotalBalance     float64 `json:"total_balance"`      // aktif hesapların toplam bakiyesi
	MonthIncome      float64 `json:"month_income"`       // bu ayki gelir
	MonthExpense     float64 `json:"month_expense"`      // bu ayki gider
	MonthNet         float64 `json:"month_net"`          // gelir - gider
	PendingRentTotal float64 `json:"pending_rent_total"` // tahsil edilmemiş kira toplamı
	PendingRentCount int64   `json:"pending_rent_count"` // bekleyen kira dönemi sayısı
	OccupiedShops    int64   `json:"occupied_shops"`
	VacantShops      int64   `json:"vacant_shops"`
}

// GET /api/dashboard/summary
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		var resp SummaryResponse

		if err := database.DB.Model(&models.BankAccount{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Select("COALESCE(SUM(current_balance), 0)").
			Scan(&resp.TotalBalance).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0)

		type sums struct {
			Income  float64
			Expense float64
		}
		var s sums
		if err := database.DB.Model(&models.Transaction{}).
			Where("user_id = ? AND date >= ? AND date < ?", userID, monthStart, monthEnd).
			Select("COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income, "+
				"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense").
			Scan(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		resp.MonthIncome = ledger.Round2(s.Income)
		resp.MonthExpense = ledger.Round2(s.Expense)
		resp.MonthNet = ledger.Round2(s.Income - s.Expense)

		if err := database.DB.Model(&models.RentPayment{}).
			Where("user_id = ? AND status = ?", userID, models.RentStatusPending).
			Count(&resp.PendingRentCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		if err := database.DB.Model(&models.RentPayment{}).
			Where("user_id = ? AND status = ?", userID, models.RentStatusPending).
			Select("COALESCE(SUM(pending_amount), 0)").
			Scan(&resp.PendingRentTotal).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		resp.PendingRentTotal = ledger.Round2(resp.PendingRentTotal)

		var shops []models.Shop
		if err := database.DB.Where("user_id = ? AND is_active = ?", userID, true).
			Find(&shops).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		for i := range shops {
			if shops[i].IsOccupied(now) {
				resp.OccupiedShops++
			} else {
				resp.VacantShops++
			}
		}

		return c.JSON(resp)
	}
}

type MonthPoint struct {
	Label   string  `json:"label"` // "2025-08"
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

type MonthlyChartResponse struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Context string       `json:"context,omitempty"`
	Points  []MonthPoint `json:"points"`
}

// GET /api/dashboard/monthly-chart?months=12&context=property
// Aylık gelir/gider kırılımı. Kovalama Go tarafında yapılır, böylece
// sorgu her veritabanı sürücüsünde aynı çalışır.
func MonthlyChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserIDFromCtx(c)
		if err != nil {
			return err
		}

		months := 12
		if mStr := c.Query("months"); mStr != "" {
			if _, err := fmt.Sscan(mStr, &months); err != nil || months <= 0 || months > 60 {
				return fiber.NewError(fiber.StatusBadRequest, "months geçersiz")
			}
		}
		ctxFilter := c.Query("context")
		if ctxFilter != "" && ctxFilter != string(models.ContextPersonal) && ctxFilter != string(models.ContextProperty) {
			return fiber.NewError(fiber.StatusBadRequest, "context 'personal' veya 'property' olmalı")
		}

		now := time.Now()
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		start := end.AddDate(0, -months, 0)

		dbq := database.DB.Model(&models.Transaction{}).
			Where("user_id = ? AND date >= ? AND date < ?", userID, start, end)
		if ctxFilter != "" {
			dbq = dbq.Where("context = ?", ctxFilter)
		}

		type row struct {
			Date   time.Time
			Amount float64
			Type   models.TransactionType
		}
		var rows []row
		if err := dbq.Select("date, amount, type").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Grafik verisi hesaplanamadı")
		}

		points := make([]MonthPoint, months)
		index := map[string]int{}
		for i := 0; i < months; i++ {
			label := start.AddDate(0, i, 0).Format("2006-01")
			points[i] = MonthPoint{Label: label}
			index[label] = i
		}
		for _, r := range rows {
			i, ok := index[r.Date.UTC().Format("2006-01")]
			if !ok {
				continue
			}
			if r.Type == models.TransactionTypeIncome {
				points[i].Income += r.Amount
			} else {
				points[i].Expense += r.Amount
			}
		}
		for i := range points {
			points[i].Income = ledger.Round2(points[i].Income)
			points[i].Expense = ledger.Round2(points[i].Expense)
			points[i].Net = ledger.Round2(points[i].Income - points[i].Expense)
		}

		return c.JSON(MonthlyChartResponse{
			From:    start.Format("2006-01-02"),
			To:      end.AddDate(0, 0, -1).Format("2006-01-02"),
			Context: ctxFilter,
			Points:  points,
		})
	}
}
