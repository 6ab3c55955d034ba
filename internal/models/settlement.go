package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/halfsies/backend/internal/types"
)

// settlementEpsilon is the amount below which a balance counts as even.
var settlementEpsilon = decimal.NewFromFloat(0.01)

// Settle nets the outstanding balances of a two-member group with a single
// balancing transaction.
//
// Every unsettled transaction up to the previous settlement is marked as
// settled, a balancing transaction paid by the debtor is inserted and all
// balances are reset to zero. The whole sequence runs in one database
// transaction, a failing step rolls everything back.
//
// A quiescent ledger returns ErrNothingToSettle so that a second call right
// after a settlement is a no-op.
func Settle(db *gorm.DB, groupID uuid.UUID) (Transaction, error) {
	var settlement Transaction

	err := db.Transaction(func(tx *gorm.DB) error {
		var group Group
		err := tx.First(&group, groupID).Error
		if err != nil {
			return err
		}

		memberIDs, err := group.MemberIDs(tx)
		if err != nil {
			return err
		}

		if len(memberIDs) != GroupMemberLimit {
			return ErrUnsupportedGroupSize
		}

		balances, err := Balances(tx, groupID)
		if err != nil {
			return err
		}

		// Exactly one debtor and one creditor have to remain once even
		// balances are skipped. Anything else means a previous partial
		// failure left the ledger in a state we must not settle on.
		var debtor, creditor *MemberBalance
		for i := range balances {
			balance := &balances[i]

			switch {
			case balance.Balance.Abs().LessThanOrEqual(settlementEpsilon):
				continue
			case balance.Balance.IsNegative():
				if debtor != nil {
					return ErrLedgerInconsistent
				}
				debtor = balance
			default:
				if creditor != nil {
					return ErrLedgerInconsistent
				}
				creditor = balance
			}
		}

		if debtor == nil && creditor == nil {
			return ErrNothingToSettle
		}

		if debtor == nil || creditor == nil {
			return ErrLedgerInconsistent
		}

		// Sweep the unsettled tail: newest to oldest, stopping before the
		// previous settlement. Transactions are only ever settled once.
		var transactions []Transaction
		err = tx.
			Where(&Transaction{GroupID: groupID}).
			Order("date DESC, created_at DESC").
			Find(&transactions).Error
		if err != nil {
			return err
		}

		var sweep []uuid.UUID
		for _, t := range transactions {
			if t.IsSettlement {
				break
			}

			sweep = append(sweep, t.ID)
		}

		if len(sweep) > 0 {
			// UpdateColumn skips the save hooks, which would reject the
			// zero-valued model used for a flag-only bulk update
			err = tx.Model(&Transaction{}).
				Where("id IN ?", sweep).
				UpdateColumn("has_been_settled", true).Error
			if err != nil {
				return err
			}
		}

		settlement = Transaction{
			GroupID:         groupID,
			PaidByID:        debtor.UserID,
			Amount:          debtor.Balance.Abs(),
			Category:        types.CategorySettlement,
			Date:            time.Now().In(time.UTC),
			OwedToPurchaser: true,
			IsSettlement:    true,
			HasBeenSettled:  true,
		}

		err = tx.Create(&settlement).Error
		if err != nil {
			return err
		}

		// Force-reset instead of delta-adjusting. This is the one place
		// balances are overwritten rather than incremented.
		return tx.Model(&MemberBalance{}).
			Where("group_id = ?", groupID).
			Update("balance", decimal.Zero).Error
	})
	if err != nil {
		if errors.Is(err, ErrLedgerInconsistent) {
			log.Error().
				Str("group", groupID.String()).
				Msg("settlement aborted: group balances do not form one debtor and one creditor")
		}

		return Transaction{}, err
	}

	return settlement, nil
}
