package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/halfsies/backend/internal/ledger"
)

// MemberBalance is the running balance of one group member.
//
// A positive balance means the member is owed money, a negative one that
// the member owes money. Rows are created lazily by the first transaction
// touching a member and are never deleted, only reset to zero by the
// settlement engine.
type MemberBalance struct {
	DefaultModel
	GroupID uuid.UUID       `gorm:"uniqueIndex:member_balance_group_user"`
	Group   Group           `json:"-"`
	UserID  uuid.UUID       `gorm:"uniqueIndex:member_balance_group_user"`
	User    User            `json:"-"`
	Balance decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

// Balances returns all member balances for a group.
func Balances(db *gorm.DB, groupID uuid.UUID) ([]MemberBalance, error) {
	var balances []MemberBalance

	err := db.Where(&MemberBalance{GroupID: groupID}).Find(&balances).Error
	if err != nil {
		return nil, err
	}

	return balances, nil
}

// GroupBalanceSum returns the sum of all balances in a group. For a group
// where every transaction was booked through the ledger, the sum is zero.
func GroupBalanceSum(db *gorm.DB, groupID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := db.Table("member_balances").
		Where("group_id = ? AND deleted_at IS NULL", groupID).
		Select("SUM(balance)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting the balance sum for group %s failed: %w", groupID, err)
	}

	return sum.Decimal, nil
}

// applyEntries adds each entry to the member's running balance, creating
// the balance row on first touch.
//
// The increment happens inside the database, so concurrent transaction
// recordings cannot lose updates regardless of interleaving order.
func applyEntries(db *gorm.DB, groupID uuid.UUID, entries []ledger.Entry) error {
	for _, entry := range entries {
		balance := MemberBalance{
			GroupID: groupID,
			UserID:  entry.UserID,
			Balance: entry.Delta,
		}

		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"balance":    gorm.Expr("balance + excluded.balance"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Create(&balance).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// RecalculateGroupBalances rebuilds every balance of the group from its
// unsettled transactions.
//
// This is an idempotent full rebuild, not an incremental operation: it
// overwrites the balance rows with absolute values. It must not run
// concurrently with transaction recording, a race yields transient
// incorrect totals until the next rebuild.
func RecalculateGroupBalances(db *gorm.DB, groupID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var group Group
		err := tx.First(&group, groupID).Error
		if err != nil {
			return err
		}

		memberIDs, err := group.MemberIDs(tx)
		if err != nil {
			return err
		}

		balances := make(map[uuid.UUID]decimal.Decimal, len(memberIDs))
		for _, id := range memberIDs {
			balances[id] = decimal.Zero
		}

		// Settled transactions were already netted out by a settlement,
		// only the unsettled tail contributes to the current balances.
		var transactions []Transaction
		err = tx.
			Where(&Transaction{GroupID: groupID}).
			Where("NOT has_been_settled").
			Order("date ASC, created_at ASC").
			Find(&transactions).Error
		if err != nil {
			return err
		}

		for _, t := range transactions {
			entries, err := ledger.Entries(memberIDs, t.PaidByID, t.Amount, t.OwedToPurchaser)
			if err != nil {
				return err
			}

			for _, entry := range entries {
				balances[entry.UserID] = balances[entry.UserID].Add(entry.Delta)
			}
		}

		for id, balance := range balances {
			row := MemberBalance{
				GroupID: groupID,
				UserID:  id,
				Balance: balance,
			}

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"balance":    gorm.Expr("excluded.balance"),
					"updated_at": gorm.Expr("excluded.updated_at"),
				}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}
