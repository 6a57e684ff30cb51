package models

import "time"

type AccountType string

const (
	AccountTypeSavings      AccountType = "savings"       // vadesiz/tasarruf hesabı
	AccountTypeCurrent      AccountType = "current"       // cari hesap
	AccountTypeCreditCard   AccountType = "credit_card"   // kredi kartı
	AccountTypeFixedDeposit AccountType = "fixed_deposit" // vadeli mevduat
	AccountTypeCash         AccountType = "cash"          // nakit
	AccountTypeInvestment   AccountType = "investment"    // yatırım hesabı
	AccountTypeChitFund     AccountType = "chit_fund"     // gün/altın günü hesabı
)

// BankAccount: Banka hesabı, kart veya nakit kasa
type BankAccount struct {
	ID             uint        `gorm:"primaryKey"`
	UserID         uint        `gorm:"index;not null"`
	User           User
	Name           string      `gorm:"size:100;not null"` // hesap adı (örn: "Ziraat Vadesiz")
	Type           AccountType `gorm:"size:20;not null"`
	InitialBalance float64     `gorm:"not null"` // açılış bakiyesi, sonradan değişmez
	CurrentBalance float64     `gorm:"not null"` // her işlem/virmanla güncellenir
	IsActive       bool        `gorm:"default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeSavings, AccountTypeCurrent, AccountTypeCreditCard,
		AccountTypeFixedDeposit, AccountTypeCash, AccountTypeInvestment, AccountTypeChitFund:
		return true
	}
	return false
}
