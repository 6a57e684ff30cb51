package banking

import (
	"errors"
	"time"

	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/rent"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound        = errors.New("hesap bulunamadı")
	ErrInvalidTransactionType = errors.New("işlem tipi 'income' veya 'expense' olmalı")
	ErrInvalidAmount          = errors.New("tutar 0'dan büyük olmalı")
	ErrTransactionNotFound    = errors.New("işlem bulunamadı")
	ErrTransactionNoAccount   = errors.New("işlemin bağlı hesabı yok, bakiye etkisi geri alınamaz")
	ErrTransferNotFound       = errors.New("virman bulunamadı")
	ErrTransferNotOwned       = errors.New("bu virman üzerinde işlem yetkiniz yok")
	ErrInsufficientBalance    = errors.New("yetersiz bakiye")
	ErrSameAccount            = errors.New("kaynak ve hedef hesap aynı olamaz")
)

type NewTransaction struct {
	AccountID   *uint
	CategoryID  *uint
	TenantID    *uint
	ShopID      *uint
	BuildingID  *uint
	Description string
	Amount      float64
	Type        models.TransactionType
	Context     models.TransactionContext
	Date        time.Time
	Notes       string
}

// CreateTransaction: İşlemi kaydeder ve bağlı hesabın bakiyesine etkisini
// aynı transaction içinde uygular. Mülk bağlamında kiracı+dükkan taşıyan
// gelir işlemleri ilgili kira dönemine ödeme olarak düşülür.
func CreateTransaction(db *gorm.DB, userID uint, in NewTransaction) (*models.Transaction, error) {
	if in.Type != models.TransactionTypeIncome && in.Type != models.TransactionTypeExpense {
		return nil, ErrInvalidTransactionType
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Context == "" {
		in.Context = models.ContextPersonal
	}

	amount := ledger.Round2(in.Amount)

	var created models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if in.AccountID != nil {
			var acc models.BankAccount
			if err := tx.Where("id = ? AND user_id = ?", *in.AccountID, userID).First(&acc).Error; err != nil {
				return ErrAccountNotFound
			}

			newBalance := acc.CurrentBalance + amount
			if in.Type == models.TransactionTypeExpense {
				newBalance = acc.CurrentBalance - amount
			}
			if err := tx.Model(&models.BankAccount{}).Where("id = ?", acc.ID).
				Update("current_balance", ledger.Round2(newBalance)).Error; err != nil {
				return err
			}
		}

		created = models.Transaction{
			UserID:      userID,
			AccountID:   in.AccountID,
			CategoryID:  in.CategoryID,
			TenantID:    in.TenantID,
			ShopID:      in.ShopID,
			BuildingID:  in.BuildingID,
			Description: in.Description,
			Amount:      amount,
			Type:        in.Type,
			Context:     in.Context,
			Date:        in.Date,
			Notes:       in.Notes,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		// Kira tahsilatı: ilgili döneme ödeme olarak işle
		if isRentLinked(&created) {
			_, err := rent.ApplyPayment(tx, userID, rent.PaymentInput{
				TenantID:    *created.TenantID,
				ShopID:      *created.ShopID,
				Month:       int(created.Date.UTC().Month()),
				Year:        created.Date.UTC().Year(),
				AmountPaid:  amount,
				PaymentDate: created.Date,
				Notes:       created.Notes,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteTransaction: İşlemi siler ve bakiye etkisini tersine çevirir.
// Kira tahsilatıysa ilgili dönemin ödenen tutarı da geri düşülür.
func DeleteTransaction(db *gorm.DB, userID, transactionID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.Where("id = ? AND user_id = ?", transactionID, userID).First(&t).Error; err != nil {
			return ErrTransactionNotFound
		}

		if t.AccountID == nil {
			return ErrTransactionNoAccount
		}

		var acc models.BankAccount
		if err := tx.Where("id = ? AND user_id = ?", *t.AccountID, userID).First(&acc).Error; err != nil {
			return ErrAccountNotFound
		}

		// income silinince düşülür, expense silinince geri eklenir
		newBalance := acc.CurrentBalance - t.Amount
		if t.Type == models.TransactionTypeExpense {
			newBalance = acc.CurrentBalance + t.Amount
		}
		if err := tx.Model(&models.BankAccount{}).Where("id = ?", acc.ID).
			Update("current_balance", ledger.Round2(newBalance)).Error; err != nil {
			return err
		}

		if isRentLinked(&t) {
			if err := rent.ReversePayment(tx, userID, *t.TenantID, *t.ShopID,
				int(t.Date.UTC().Month()), t.Date.UTC().Year(), t.Amount); err != nil {
				return err
			}
		}

		return tx.Delete(&t).Error
	})
}

// CreateTransfer: İki hesap arası virman. Kaynak hesapta yeterli bakiye yoksa reddedilir.
func CreateTransfer(db *gorm.DB, userID uint, fromID, toID uint, amount float64, description string, date time.Time) (*models.Transfer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromID == toID {
		return nil, ErrSameAccount
	}

	amount = ledger.Round2(amount)

	var created models.Transfer
	err := db.Transaction(func(tx *gorm.DB) error {
		var from, to models.BankAccount
		if err := tx.Where("id = ? AND user_id = ?", fromID, userID).First(&from).Error; err != nil {
			return ErrAccountNotFound
		}
		if err := tx.Where("id = ? AND user_id = ?", toID, userID).First(&to).Error; err != nil {
			return ErrAccountNotFound
		}

		if from.CurrentBalance < amount {
			return ErrInsufficientBalance
		}

		if err := tx.Model(&models.BankAccount{}).Where("id = ?", from.ID).
			Update("current_balance", ledger.Round2(from.CurrentBalance-amount)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.BankAccount{}).Where("id = ?", to.ID).
			Update("current_balance", ledger.Round2(to.CurrentBalance+amount)).Error; err != nil {
			return err
		}

		created = models.Transfer{
			UserID:        userID,
			FromAccountID: fromID,
			ToAccountID:   toID,
			Amount:        amount,
			Description:   description,
			Date:          date,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteTransfer: Virmanı siler, iki bakiyeyi de simetrik geri alır.
// Geri alma koşulsuzdur; önceki durumu geri getirdiği için bakiye kontrolü yapılmaz.
func DeleteTransfer(db *gorm.DB, userID, transferID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tr models.Transfer
		if err := tx.First(&tr, "id = ?", transferID).Error; err != nil {
			return ErrTransferNotFound
		}
		if tr.UserID != userID {
			return ErrTransferNotOwned
		}

		var from, to models.BankAccount
		if err := tx.First(&from, "id = ?", tr.FromAccountID).Error; err != nil {
			return ErrAccountNotFound
		}
		if err := tx.First(&to, "id = ?", tr.ToAccountID).Error; err != nil {
			return ErrAccountNotFound
		}

		if err := tx.Model(&models.BankAccount{}).Where("id = ?", from.ID).
			Update("current_balance", ledger.Round2(from.CurrentBalance+tr.Amount)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.BankAccount{}).Where("id = ?", to.ID).
			Update("current_balance", ledger.Round2(to.CurrentBalance-tr.Amount)).Error; err != nil {
			return err
		}

		return tx.Delete(&tr).Error
	})
}

// DeleteAccount: Hesabı ve bağlı kayıtları tek transaction içinde kaldırır.
// İşlemlerde hesap referansı null'lanır, virmanlar silinir.
func DeleteAccount(db *gorm.DB, userID, accountID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var acc models.BankAccount
		if err := tx.Where("id = ? AND user_id = ?", accountID, userID).First(&acc).Error; err != nil {
			return ErrAccountNotFound
		}

		if err := tx.Model(&models.Transaction{}).Where("account_id = ?", acc.ID).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("from_account_id = ? OR to_account_id = ?", acc.ID, acc.ID).
			Delete(&models.Transfer{}).Error; err != nil {
			return err
		}

		return tx.Delete(&acc).Error
	})
}

// Mülk bağlamında kiracı+dükkan taşıyan gelir işlemi kira tahsilatı sayılır.
func isRentLinked(t *models.Transaction) bool {
	return t.Context == models.ContextProperty &&
		t.Type == models.TransactionTypeIncome &&
		t.TenantID != nil && t.ShopID != nil
}
