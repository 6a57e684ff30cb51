package models

import "time"

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"  // gelir
	TransactionTypeExpense TransactionType = "expense" // gider
)

type TransactionContext string

const (
	ContextPersonal TransactionContext = "personal" // kişisel
	ContextProperty TransactionContext = "property" // mülk/kira
)

// Transaction: Gelir veya gider işlemi. Tutar her zaman pozitif saklanır,
// işaret type alanından türetilir.
type Transaction struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      uint  `gorm:"index;not null"`
	User        User
	AccountID   *uint `gorm:"index"` // hesap silinirse null kalır
	Account     *BankAccount
	CategoryID  *uint `gorm:"index"`
	Category    *Category
	TenantID    *uint `gorm:"index"` // kira/avans işlemleri için
	Tenant      *Tenant
	ShopID      *uint `gorm:"index"`
	Shop        *Shop
	BuildingID  *uint `gorm:"index"`
	Building    *Building
	Description string             `gorm:"size:255"`
	Amount      float64            `gorm:"not null"`
	Type        TransactionType    `gorm:"size:10;not null"`
	Context     TransactionContext `gorm:"size:10;not null;default:personal"`
	Date        time.Time          `gorm:"index;not null"`
	Notes       string             `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
