package main

import (
	"log"
	"strings"
	"time"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/backup"
	"muhasebe-backend/internal/banking"
	"muhasebe-backend/internal/category"
	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/dashboard"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/property"
	"muhasebe-backend/internal/rent"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Hesaplar
	protected.Post("/accounts", banking.CreateAccountHandler())
	protected.Get("/accounts", banking.ListAccountsHandler())
	protected.Put("/accounts/:id", banking.UpdateAccountHandler())
	protected.Delete("/accounts/:id", banking.DeleteAccountHandler())

	// Kategoriler
	protected.Post("/categories", category.CreateCategoryHandler())
	protected.Get("/categories", category.ListCategoriesHandler())
	protected.Put("/categories/:id", category.UpdateCategoryHandler())
	protected.Delete("/categories/:id", category.DeleteCategoryHandler())

	// Gelir/gider işlemleri
	protected.Post("/transactions", banking.CreateTransactionHandler())
	protected.Get("/transactions", banking.ListTransactionsHandler())
	protected.Delete("/transactions/:id", banking.DeleteTransactionHandler())

	// Virmanlar
	protected.Post("/transfers", banking.CreateTransferHandler())
	protected.Get("/transfers", banking.ListTransfersHandler())
	protected.Delete("/transfers/:id", banking.DeleteTransferHandler())

	// Binalar
	protected.Post("/buildings", property.CreateBuildingHandler())
	protected.Get("/buildings", property.ListBuildingsHandler())
	protected.Put("/buildings/:id", property.UpdateBuildingHandler())
	protected.Delete("/buildings/:id", property.DeleteBuildingHandler())

	// Dükkanlar
	protected.Post("/shops", property.CreateShopHandler())
	protected.Get("/shops", property.ListShopsHandler())
	protected.Put("/shops/:id", property.UpdateShopHandler())
	protected.Delete("/shops/:id", property.DeleteShopHandler())

	// Kiracılar
	protected.Post("/tenants", property.CreateTenantHandler())
	protected.Get("/tenants", property.ListTenantsHandler())
	protected.Put("/tenants/:id", property.UpdateTenantHandler())
	protected.Delete("/tenants/:id", property.DeleteTenantHandler())

	// Kira dönemleri ve tahsilat
	protected.Get("/rent-payments", rent.ListRentPaymentsHandler())
	protected.Post("/rent-payments", rent.RecordPaymentHandler())
	protected.Delete("/rent-payments/:id", rent.DeleteRentPaymentHandler())

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler())
	protected.Get("/dashboard/monthly-chart", dashboard.MonthlyChartHandler())

	// Yedekleme
	protected.Get("/backup/export", backup.ExportHandler())
	protected.Post("/backup/import", backup.ImportHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Kira dönemlerini arka planda tamamlayan süpürücü
	sweeper := rent.NewSweeper(database.DB, time.Duration(cfg.SweepIntervalMins)*time.Minute)
	sweeper.Start()
	defer sweeper.Stop()

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
