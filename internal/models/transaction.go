package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/halfsies/backend/internal/ledger"
	"github.com/halfsies/backend/internal/types"
)

// Transaction represents one expense event in a group.
type Transaction struct {
	DefaultModel
	GroupID  uuid.UUID
	Group    Group `json:"-"`
	PaidByID uuid.UUID
	PaidBy   User            `json:"-"`
	Amount   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Category types.Category
	Note     string
	Date     time.Time // Time of day is currently only used for sorting

	// OwedToPurchaser marks the full amount as owed back to the payer
	// instead of being split evenly. The flag is stored so that a deletion
	// reverses exactly the effect that was applied at creation.
	OwedToPurchaser bool

	// IsSettlement marks the balancing transaction the settlement engine
	// inserts. HasBeenSettled marks transactions a settlement swept past.
	// A transaction with either flag set is immutable.
	IsSettlement   bool
	HasBeenSettled bool
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return
}

// BeforeSave
//   - sets the timezone for the Date to UTC
//   - verifies the amount and category
//   - trims whitespace from string fields
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Note = strings.TrimSpace(t.Note)

	if !t.Amount.IsPositive() {
		return ErrTransactionAmountNotPositive
	}

	if !t.Category.Valid() {
		return ErrCategoryInvalid
	}

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	return
}

// BeforeDelete blocks deletion once a transaction is part of a settlement.
func (t *Transaction) BeforeDelete(_ *gorm.DB) error {
	if t.IsSettlement || t.HasBeenSettled {
		return ErrTransactionSettled
	}

	return nil
}

// Record validates the transaction, stores it and applies its effect to the
// group's balances. Everything happens in one database transaction, so a
// failing step leaves no partial balance mutation behind.
func (t *Transaction) Record(db *gorm.DB) error {
	if t.Category == types.CategorySettlement {
		return ErrCategoryReserved
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var group Group
		err := tx.First(&group, t.GroupID).Error
		if err != nil {
			return err
		}

		memberIDs, err := group.MemberIDs(tx)
		if err != nil {
			return err
		}

		entries, err := ledger.Entries(memberIDs, t.PaidByID, t.Amount, t.OwedToPurchaser)
		if err != nil {
			return err
		}

		err = tx.Create(t).Error
		if err != nil {
			return err
		}

		return applyEntries(tx, t.GroupID, entries)
	})
}

// DeleteTransaction removes a transaction and reverses its balance effect.
//
// The requester has to be the member who paid. The reversal is keyed off
// the stored OwedToPurchaser flag, it is not re-derived.
func DeleteTransaction(db *gorm.DB, id uuid.UUID, requesterID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var t Transaction
		err := tx.First(&t, id).Error
		if err != nil {
			return err
		}

		if t.PaidByID != requesterID {
			return ErrNotTransactionPayer
		}

		if t.IsSettlement || t.HasBeenSettled {
			return ErrTransactionSettled
		}

		var group Group
		err = tx.First(&group, t.GroupID).Error
		if err != nil {
			return err
		}

		memberIDs, err := group.MemberIDs(tx)
		if err != nil {
			return err
		}

		entries, err := ledger.Entries(memberIDs, t.PaidByID, t.Amount, t.OwedToPurchaser)
		if err != nil {
			return err
		}

		err = applyEntries(tx, t.GroupID, ledger.Reverse(entries))
		if err != nil {
			return err
		}

		return tx.Delete(&t).Error
	})
}
