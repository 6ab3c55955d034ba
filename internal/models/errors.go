package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Validation errors. No mutation is performed when one of these is returned.
var (
	ErrTransactionAmountNotPositive = errors.New("transaction amounts must be larger than zero")
	ErrBudgetAmountNotPositive      = errors.New("budget amounts must be larger than zero")
	ErrAlertThresholdOutOfRange     = errors.New("the alert threshold must be between 0 and 100 percent")
	ErrCategoryInvalid              = errors.New("the specified category is invalid")
	ErrCategoryReserved             = errors.New("the Settlement category is reserved for settlement transactions")
	ErrPeriodInvalid                = errors.New("the specified budget period is invalid")
)

// Authorization errors.
var ErrNotTransactionPayer = errors.New("only the member who paid a transaction can delete it")

// Conflict errors.
var (
	ErrTransactionSettled = errors.New("settled transactions cannot be changed or deleted")
	ErrBudgetExists       = errors.New("there already is an active budget for this category in the group")
	ErrUsernameNotUnique  = errors.New("the username is already taken")
	ErrAlreadyMember      = errors.New("the user is already a member of the group")
	ErrGroupFull          = errors.New("the group already has the maximum number of members")
)

// Settlement engine errors.
var (
	ErrUnsupportedGroupSize = errors.New("settlement is only supported for groups with exactly two members")
	ErrNothingToSettle      = errors.New("all balances are already settled")

	// ErrLedgerInconsistent signals that the balances of a group do not
	// form one debtor and one creditor. This points at an earlier partial
	// failure and is logged at error level, never recovered silently.
	ErrLedgerInconsistent = errors.New("the group ledger is in an inconsistent state, recalculate the group balances")
)
