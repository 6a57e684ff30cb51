// Yedekleme motoru: kullanıcının tüm verisini tek bir JSON belgesine çıkarır
// ve aynı belgeyi kimlikleri koruyarak geri yükler.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/rent"

	"gorm.io/gorm"
)

// Belgedeki 8 zorunlu dizi
var requiredSections = []string{
	"accounts", "categories", "buildings", "shops",
	"tenants", "transactions", "transfers", "rentPayments",
}

type InvalidBackupError struct {
	Reason string
}

func (e *InvalidBackupError) Error() string {
	return "geçersiz yedek dosyası: " + e.Reason
}

type MissingFieldError struct {
	Entity string
	Index  int
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s[%d]: zorunlu alan eksik: %s", e.Entity, e.Index, e.Field)
}

type InvalidDateError struct {
	Entity string
	Index  int
	Field  string
	Value  string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("%s[%d]: %s tarih alanı çözümlenemedi: %q", e.Entity, e.Index, e.Field, e.Value)
}

// RestoreError: içe aktarma başarısız olduğunda döner. RollbackErr doluysa
// eski veriye dönüş de başarısız olmuştur ve veri tutarsız kalmış olabilir.
type RestoreError struct {
	ImportErr   error
	RollbackErr error
}

func (e *RestoreError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("içe aktarma başarısız: %v; eski veriye dönüş de başarısız: %v (veriyi kontrol edin)",
			e.ImportErr, e.RollbackErr)
	}
	return fmt.Sprintf("içe aktarma başarısız, mevcut veri korundu: %v", e.ImportErr)
}

func (e *RestoreError) Unwrap() error { return e.ImportErr }

// Kayıt tipleri: model alanlarının taşınabilir hali. Tarihler metin olarak
// saklanır, zorunlu alanlar işaretçi olduğundan eksiklik ayırt edilebilir.

type AccountRecord struct {
	ID             uint     `json:"id"`
	Name           *string  `json:"name"`
	Type           *string  `json:"type"`
	InitialBalance *float64 `json:"initial_balance"`
	CurrentBalance *float64 `json:"current_balance"`
	IsActive       bool     `json:"is_active"`
}

type CategoryRecord struct {
	ID      uint    `json:"id"`
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Context string  `json:"context"`
}

type BuildingRecord struct {
	ID      uint    `json:"id"`
	Name    *string `json:"name"`
	Address string  `json:"address"`
}

type ShopRecord struct {
	ID            uint     `json:"id"`
	BuildingID    *uint    `json:"building_id"`
	Name          *string  `json:"name"`
	MonthlyRent   *float64 `json:"monthly_rent"`
	Advance       float64  `json:"advance"`
	IsAdvancePaid bool     `json:"is_advance_paid"`
	TenantID      *uint    `json:"tenant_id,omitempty"`
	AllocatedAt   *string  `json:"allocated_at,omitempty"`
	IsActive      bool     `json:"is_active"`
}

type TenantRecord struct {
	ID    uint    `json:"id"`
	Name  *string `json:"name"`
	Phone string  `json:"phone"`
	Email string  `json:"email"`
	Notes string  `json:"notes"`
}

type TransactionRecord struct {
	ID          uint     `json:"id"`
	AccountID   *uint    `json:"account_id,omitempty"`
	CategoryID  *uint    `json:"category_id,omitempty"`
	TenantID    *uint    `json:"tenant_id,omitempty"`
	ShopID      *uint    `json:"shop_id,omitempty"`
	BuildingID  *uint    `json:"building_id,omitempty"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Type        *string  `json:"type"`
	Context     string   `json:"context"`
	Date        *string  `json:"date"`
	Notes       string   `json:"notes,omitempty"`
}

type TransferRecord struct {
	ID            uint     `json:"id"`
	FromAccountID *uint    `json:"from_account_id"`
	ToAccountID   *uint    `json:"to_account_id"`
	Amount        *float64 `json:"amount"`
	Description   string   `json:"description"`
	Date          *string  `json:"date"`
}

type RentPaymentRecord struct {
	ID            uint     `json:"id"`
	TenantID      *uint    `json:"tenant_id"`
	ShopID        *uint    `json:"shop_id"`
	Month         *int     `json:"month"`
	Year          *int     `json:"year"`
	Amount        *float64 `json:"amount"`
	PaidAmount    float64  `json:"paid_amount"`
	PendingAmount float64  `json:"pending_amount"`
	Status        string   `json:"status"`
	PaymentDate   *string  `json:"payment_date,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Document: bir kullanıcının tüm verisini taşıyan yedek belgesi.
// Kiracı-dükkan tahsis kayıtları belgeye yazılmaz, dükkanlardan türetilir.
type Document struct {
	ExportedAt   string              `json:"exported_at"`
	Accounts     []AccountRecord     `json:"accounts"`
	Categories   []CategoryRecord    `json:"categories"`
	Buildings    []BuildingRecord    `json:"buildings"`
	Shops        []ShopRecord        `json:"shops"`
	Tenants      []TenantRecord      `json:"tenants"`
	Transactions []TransactionRecord `json:"transactions"`
	Transfers    []TransferRecord    `json:"transfers"`
	RentPayments []RentPaymentRecord `json:"rentPayments"`
}

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return t.UTC().Format(dateLayout) }

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Export: kullanıcının sahip olduğu her satırı tek belgede toplar.
// Satır kimlikleri belge içi çapraz referanslar bozulmasın diye aynen korunur.
func Export(db *gorm.DB, userID uint) (*Document, error) {
	doc := &Document{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Accounts:     []AccountRecord{},
		Categories:   []CategoryRecord{},
		Buildings:    []BuildingRecord{},
		Shops:        []ShopRecord{},
		Tenants:      []TenantRecord{},
		Transactions: []TransactionRecord{},
		Transfers:    []TransferRecord{},
		RentPayments: []RentPaymentRecord{},
	}

	var accounts []models.BankAccount
	if err := db.Where("user_id = ?", userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	for i := range accounts {
		a := accounts[i]
		name, typ := a.Name, string(a.Type)
		ib, cb := a.InitialBalance, a.CurrentBalance
		doc.Accounts = append(doc.Accounts, AccountRecord{
			ID: a.ID, Name: &name, Type: &typ,
			InitialBalance: &ib, CurrentBalance: &cb, IsActive: a.IsActive,
		})
	}

	var categories []models.Category
	if err := db.Where("user_id = ?", userID).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	for i := range categories {
		c := categories[i]
		name, typ := c.Name, string(c.Type)
		doc.Categories = append(doc.Categories, CategoryRecord{
			ID: c.ID, Name: &name, Type: &typ, Context: string(c.Context),
		})
	}

	var buildings []models.Building
	if err := db.Where("user_id = ?", userID).Order("id").Find(&buildings).Error; err != nil {
		return nil, err
	}
	for i := range buildings {
		b := buildings[i]
		name := b.Name
		doc.Buildings = append(doc.Buildings, BuildingRecord{ID: b.ID, Name: &name, Address: b.Address})
	}

	var tenants []models.Tenant
	if err := db.Where("user_id = ?", userID).Order("id").Find(&tenants).Error; err != nil {
		return nil, err
	}
	for i := range tenants {
		t := tenants[i]
		name := t.Name
		doc.Tenants = append(doc.Tenants, TenantRecord{
			ID: t.ID, Name: &name, Phone: t.Phone, Email: t.Email, Notes: t.Notes,
		})
	}

	var shops []models.Shop
	if err := db.Where("user_id = ?", userID).Order("id").Find(&shops).Error; err != nil {
		return nil, err
	}
	for i := range shops {
		s := shops[i]
		name, bID, rentDue := s.Name, s.BuildingID, s.MonthlyRent
		rec := ShopRecord{
			ID: s.ID, BuildingID: &bID, Name: &name, MonthlyRent: &rentDue,
			Advance: s.Advance, IsAdvancePaid: s.IsAdvancePaid,
			TenantID: s.TenantID, IsActive: s.IsActive,
		}
		if s.AllocatedAt != nil {
			d := formatDate(*s.AllocatedAt)
			rec.AllocatedAt = &d
		}
		doc.Shops = append(doc.Shops, rec)
	}

	var transactions []models.Transaction
	if err := db.Where("user_id = ?", userID).Order("id").Find(&transactions).Error; err != nil {
		return nil, err
	}
	for i := range transactions {
		t := transactions[i]
		amount, typ, date := t.Amount, string(t.Type), formatDate(t.Date)
		doc.Transactions = append(doc.Transactions, TransactionRecord{
			ID: t.ID, AccountID: t.AccountID, CategoryID: t.CategoryID,
			TenantID: t.TenantID, ShopID: t.ShopID, BuildingID: t.BuildingID,
			Description: t.Description, Amount: &amount, Type: &typ,
			Context: string(t.Context), Date: &date, Notes: t.Notes,
		})
	}

	var transfers []models.Transfer
	if err := db.Where("user_id = ?", userID).Order("id").Find(&transfers).Error; err != nil {
		return nil, err
	}
	for i := range transfers {
		t := transfers[i]
		from, to, amount, date := t.FromAccountID, t.ToAccountID, t.Amount, formatDate(t.Date)
		doc.Transfers = append(doc.Transfers, TransferRecord{
			ID: t.ID, FromAccountID: &from, ToAccountID: &to,
			Amount: &amount, Description: t.Description, Date: &date,
		})
	}

	var rentPayments []models.RentPayment
	if err := db.Where("user_id = ?", userID).Order("id").Find(&rentPayments).Error; err != nil {
		return nil, err
	}
	for i := range rentPayments {
		rp := rentPayments[i]
		tenantID, shopID := rp.TenantID, rp.ShopID
		month, year, amount := rp.Month, rp.Year, rp.Amount
		rec := RentPaymentRecord{
			ID: rp.ID, TenantID: &tenantID, ShopID: &shopID,
			Month: &month, Year: &year, Amount: &amount,
			PaidAmount: rp.PaidAmount, PendingAmount: rp.PendingAmount,
			Status: string(rp.Status), Notes: rp.Notes,
		}
		if rp.PaymentDate != nil {
			d := formatDate(*rp.PaymentDate)
			rec.PaymentDate = &d
		}
		doc.RentPayments = append(doc.RentPayments, rec)
	}

	return doc, nil
}

// Validate: belgenin yapısını ve kayıt alanlarını denetler, geçerliyse
// çözümlenmiş belgeyi döner. Bozuk belge hiçbir yazma yapılmadan reddedilir.
func Validate(raw []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &InvalidBackupError{Reason: "JSON çözümlenemedi"}
	}
	for _, key := range requiredSections {
		section, ok := top[key]
		if !ok {
			return nil, &InvalidBackupError{Reason: key + " dizisi eksik"}
		}
		var probe []json.RawMessage
		if err := json.Unmarshal(section, &probe); err != nil {
			return nil, &InvalidBackupError{Reason: key + " bir dizi değil"}
		}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &InvalidBackupError{Reason: "kayıtlar çözümlenemedi: " + err.Error()}
	}
	if err := validateRecords(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func validateRecords(doc *Document) error {
	for i, a := range doc.Accounts {
		switch {
		case a.Name == nil:
			return &MissingFieldError{Entity: "accounts", Index: i, Field: "name"}
		case a.Type == nil:
			return &MissingFieldError{Entity: "accounts", Index: i, Field: "type"}
		case a.InitialBalance == nil:
			return &MissingFieldError{Entity: "accounts", Index: i, Field: "initial_balance"}
		case a.CurrentBalance == nil:
			return &MissingFieldError{Entity: "accounts", Index: i, Field: "current_balance"}
		}
	}
	for i, c := range doc.Categories {
		switch {
		case c.Name == nil:
			return &MissingFieldError{Entity: "categories", Index: i, Field: "name"}
		case c.Type == nil:
			return &MissingFieldError{Entity: "categories", Index: i, Field: "type"}
		}
	}
	for i, b := range doc.Buildings {
		if b.Name == nil {
			return &MissingFieldError{Entity: "buildings", Index: i, Field: "name"}
		}
	}
	for i, t := range doc.Tenants {
		if t.Name == nil {
			return &MissingFieldError{Entity: "tenants", Index: i, Field: "name"}
		}
	}
	for i, s := range doc.Shops {
		switch {
		case s.BuildingID == nil:
			return &MissingFieldError{Entity: "shops", Index: i, Field: "building_id"}
		case s.Name == nil:
			return &MissingFieldError{Entity: "shops", Index: i, Field: "name"}
		case s.MonthlyRent == nil:
			return &MissingFieldError{Entity: "shops", Index: i, Field: "monthly_rent"}
		}
		if s.AllocatedAt != nil {
			if _, err := parseDate(*s.AllocatedAt); err != nil {
				return &InvalidDateError{Entity: "shops", Index: i, Field: "allocated_at", Value: *s.AllocatedAt}
			}
		}
	}
	for i, t := range doc.Transactions {
		switch {
		case t.Amount == nil:
			return &MissingFieldError{Entity: "transactions", Index: i, Field: "amount"}
		case t.Type == nil:
			return &MissingFieldError{Entity: "transactions", Index: i, Field: "type"}
		case t.Date == nil:
			return &MissingFieldError{Entity: "transactions", Index: i, Field: "date"}
		}
		if _, err := parseDate(*t.Date); err != nil {
			return &InvalidDateError{Entity: "transactions", Index: i, Field: "date", Value: *t.Date}
		}
	}
	for i, t := range doc.Transfers {
		switch {
		case t.FromAccountID == nil:
			return &MissingFieldError{Entity: "transfers", Index: i, Field: "from_account_id"}
		case t.ToAccountID == nil:
			return &MissingFieldError{Entity: "transfers", Index: i, Field: "to_account_id"}
		case t.Amount == nil:
			return &MissingFieldError{Entity: "transfers", Index: i, Field: "amount"}
		case t.Date == nil:
			return &MissingFieldError{Entity: "transfers", Index: i, Field: "date"}
		}
		if _, err := parseDate(*t.Date); err != nil {
			return &InvalidDateError{Entity: "transfers", Index: i, Field: "date", Value: *t.Date}
		}
	}
	for i, rp := range doc.RentPayments {
		switch {
		case rp.TenantID == nil:
			return &MissingFieldError{Entity: "rentPayments", Index: i, Field: "tenant_id"}
		case rp.ShopID == nil:
			return &MissingFieldError{Entity: "rentPayments", Index: i, Field: "shop_id"}
		case rp.Month == nil:
			return &MissingFieldError{Entity: "rentPayments", Index: i, Field: "month"}
		case rp.Year == nil:
			return &MissingFieldError{Entity: "rentPayments", Index: i, Field: "year"}
		case rp.Amount == nil:
			return &MissingFieldError{Entity: "rentPayments", Index: i, Field: "amount"}
		}
		if rp.PaymentDate != nil {
			if _, err := parseDate(*rp.PaymentDate); err != nil {
				return &InvalidDateError{Entity: "rentPayments", Index: i, Field: "payment_date", Value: *rp.PaymentDate}
			}
		}
	}
	return nil
}

// Restore: mevcut veriyi siler ve belgedeki kayıtları kimlikleriyle geri
// yükler. Her adım tek transaction içinde koşar; araya giren bir hata eski
// verinin yeniden yüklenmesiyle telafi edilir. Telafi de başarısız olursa
// iki hata birlikte raporlanır.
func Restore(db *gorm.DB, userID uint, doc *Document) error {
	stash, err := Export(db, userID)
	if err != nil {
		return fmt.Errorf("mevcut veri yedeklenemedi: %w", err)
	}

	importErr := db.Transaction(func(tx *gorm.DB) error {
		if err := wipe(tx, userID); err != nil {
			return err
		}
		if err := insertAll(tx, userID, doc); err != nil {
			return err
		}
		if err := realignSequences(tx); err != nil {
			return err
		}
		return rent.RecalculateAll(tx, userID)
	})
	if importErr == nil {
		return nil
	}

	// Transaction geri alındı; yine de eski veriyi baştan yazarak
	// tutarlılığı garantiye al.
	rollbackErr := db.Transaction(func(tx *gorm.DB) error {
		if err := wipe(tx, userID); err != nil {
			return err
		}
		if err := insertAll(tx, userID, stash); err != nil {
			return err
		}
		return realignSequences(tx)
	})

	return &RestoreError{ImportErr: importErr, RollbackErr: rollbackErr}
}

// Silme sırası: önce bağımlı satırlar, sonra ana kayıtlar
func wipe(tx *gorm.DB, userID uint) error {
	for _, model := range []interface{}{
		&models.RentPayment{}, &models.TenantShop{}, &models.Transfer{},
		&models.Transaction{}, &models.Shop{}, &models.Tenant{},
		&models.Building{}, &models.Category{}, &models.BankAccount{},
	} {
		if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ekleme sırası yabancı anahtarları izler: hesaplar, kategoriler, binalar,
// kiracılar, dükkanlar (kiracıya referans verir), işlemler, virmanlar,
// kira dönemleri.
func insertAll(tx *gorm.DB, userID uint, doc *Document) error {
	for _, a := range doc.Accounts {
		row := models.BankAccount{
			ID: a.ID, UserID: userID, Name: *a.Name,
			Type:           models.AccountType(*a.Type),
			InitialBalance: ledger.Round2(*a.InitialBalance),
			CurrentBalance: ledger.Round2(*a.CurrentBalance),
			IsActive:       a.IsActive,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("accounts[%d]: %w", a.ID, err)
		}
	}
	for _, c := range doc.Categories {
		ctxVal := models.TransactionContext(c.Context)
		if ctxVal == "" {
			ctxVal = models.ContextPersonal
		}
		row := models.Category{
			ID: c.ID, UserID: userID, Name: *c.Name,
			Type: models.TransactionType(*c.Type), Context: ctxVal,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("categories[%d]: %w", c.ID, err)
		}
	}
	for _, b := range doc.Buildings {
		row := models.Building{ID: b.ID, UserID: userID, Name: *b.Name, Address: b.Address}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("buildings[%d]: %w", b.ID, err)
		}
	}
	for _, t := range doc.Tenants {
		row := models.Tenant{
			ID: t.ID, UserID: userID, Name: *t.Name,
			Phone: t.Phone, Email: t.Email, Notes: t.Notes,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("tenants[%d]: %w", t.ID, err)
		}
	}
	for _, s := range doc.Shops {
		row := models.Shop{
			ID: s.ID, UserID: userID, BuildingID: *s.BuildingID, Name: *s.Name,
			MonthlyRent: ledger.Round2(*s.MonthlyRent), Advance: ledger.Round2(s.Advance),
			IsAdvancePaid: s.IsAdvancePaid, TenantID: s.TenantID, IsActive: s.IsActive,
		}
		if s.AllocatedAt != nil {
			d, err := parseDate(*s.AllocatedAt)
			if err != nil {
				return fmt.Errorf("shops[%d]: allocated_at: %w", s.ID, err)
			}
			d = rent.DateOnly(d)
			row.AllocatedAt = &d
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("shops[%d]: %w", s.ID, err)
		}
		// Tahsis kaydı belgeden değil dükkandan türetilir
		if row.TenantID != nil && row.AllocatedAt != nil {
			link := models.TenantShop{
				UserID: userID, TenantID: *row.TenantID,
				ShopID: row.ID, AllocatedAt: *row.AllocatedAt,
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("shops[%d]: tahsis kaydı: %w", s.ID, err)
			}
		}
	}
	for _, t := range doc.Transactions {
		d, err := parseDate(*t.Date)
		if err != nil {
			return fmt.Errorf("transactions[%d]: date: %w", t.ID, err)
		}
		ctxVal := models.TransactionContext(t.Context)
		if ctxVal == "" {
			ctxVal = models.ContextPersonal
		}
		row := models.Transaction{
			ID: t.ID, UserID: userID, AccountID: t.AccountID, CategoryID: t.CategoryID,
			TenantID: t.TenantID, ShopID: t.ShopID, BuildingID: t.BuildingID,
			Description: t.Description, Amount: ledger.Round2(*t.Amount),
			Type: models.TransactionType(*t.Type), Context: ctxVal,
			Date: d, Notes: t.Notes,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("transactions[%d]: %w", t.ID, err)
		}
	}
	for _, t := range doc.Transfers {
		d, err := parseDate(*t.Date)
		if err != nil {
			return fmt.Errorf("transfers[%d]: date: %w", t.ID, err)
		}
		row := models.Transfer{
			ID: t.ID, UserID: userID,
			FromAccountID: *t.FromAccountID, ToAccountID: *t.ToAccountID,
			Amount: ledger.Round2(*t.Amount), Description: t.Description, Date: d,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("transfers[%d]: %w", t.ID, err)
		}
	}
	for _, rp := range doc.RentPayments {
		status := models.RentStatus(rp.Status)
		if status == "" {
			status = models.RentStatusPending
		}
		row := models.RentPayment{
			ID: rp.ID, UserID: userID, TenantID: *rp.TenantID, ShopID: *rp.ShopID,
			Month: *rp.Month, Year: *rp.Year,
			Amount:     ledger.Round2(*rp.Amount),
			PaidAmount: ledger.Round2(rp.PaidAmount), PendingAmount: ledger.Round2(rp.PendingAmount),
			Status: status, Notes: rp.Notes,
		}
		if rp.PaymentDate != nil {
			d, err := parseDate(*rp.PaymentDate)
			if err != nil {
				return fmt.Errorf("rentPayments[%d]: payment_date: %w", rp.ID, err)
			}
			row.PaymentDate = &d
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("rentPayments[%d]: %w", rp.ID, err)
		}
	}
	return nil
}

// realignSequences: kimlikler belgeden aynen yazıldığı için postgres'in
// otomatik artan sayaçlarını max(id)+1 değerine çeker. SQLite rowid sayacını
// en büyük id'ye göre kendisi ilerlettiğinden ek iş gerekmez.
func realignSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	tables := []string{
		"bank_accounts", "categories", "buildings", "tenants", "shops",
		"tenant_shops", "transactions", "transfers", "rent_payments",
	}
	for _, table := range tables {
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s','id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
			table, table)
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("%s sayacı güncellenemedi: %w", table, err)
		}
	}
	return nil
}
