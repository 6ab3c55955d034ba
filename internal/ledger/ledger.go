// Package ledger implements the split arithmetic for group expenses.
//
// A transaction moves every member's running balance by a signed delta.
// The deltas for one transaction always sum to exactly zero, so the sum of
// all balances in a group stays zero no matter how transactions interleave.
package ledger

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Entry is the signed change one member's balance undergoes for a single
// transaction. A positive delta means the member is owed more money.
type Entry struct {
	UserID uuid.UUID
	Delta  decimal.Decimal
}

var (
	ErrNoMembers         = errors.New("the group has no members")
	ErrPayerNotMember    = errors.New("the payer is not a member of the group")
	ErrNoOtherMembers    = errors.New("a full reimbursement needs at least one other group member")
	ErrAmountNotPositive = errors.New("transaction amounts must be larger than zero")
)

// Entries computes the balance effect of a transaction on every group member.
//
// With owedToPurchaser, every non-payer owes an equal share of the full
// amount back to the payer. Otherwise the amount is split evenly across all
// members and the payer's own share nets out.
//
// The payer's delta is the negated sum of the other entries, not an
// independent division, so the entries sum to exactly zero even when shares
// round.
func Entries(memberIDs []uuid.UUID, payerID uuid.UUID, amount decimal.Decimal, owedToPurchaser bool) ([]Entry, error) {
	if len(memberIDs) == 0 {
		return nil, ErrNoMembers
	}

	if !slices.Contains(memberIDs, payerID) {
		return nil, ErrPayerNotMember
	}

	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	var share decimal.Decimal
	if owedToPurchaser {
		if len(memberIDs) < 2 {
			return nil, ErrNoOtherMembers
		}

		share = amount.Div(decimal.NewFromInt(int64(len(memberIDs) - 1)))
	} else {
		share = amount.Div(decimal.NewFromInt(int64(len(memberIDs))))
	}

	entries := make([]Entry, 0, len(memberIDs))
	owedToPayer := decimal.Zero
	for _, id := range memberIDs {
		if id == payerID {
			continue
		}

		entries = append(entries, Entry{UserID: id, Delta: share.Neg()})
		owedToPayer = owedToPayer.Add(share)
	}

	return append(entries, Entry{UserID: payerID, Delta: owedToPayer}), nil
}

// Reverse returns the exact inverse of a set of entries. Applying entries
// and their reversal restores every balance to its previous value.
func Reverse(entries []Entry) []Entry {
	reversed := make([]Entry, len(entries))
	for i, entry := range entries {
		reversed[i] = Entry{UserID: entry.UserID, Delta: entry.Delta.Neg()}
	}

	return reversed
}

// Sum adds up all deltas. It is zero for every entry set Entries returns.
func Sum(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range entries {
		sum = sum.Add(entry.Delta)
	}

	return sum
}
