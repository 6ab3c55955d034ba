package v1

import (
	"errors"
	"net/http"

	"github.com/halfsies/backend/internal/auth"
	"github.com/halfsies/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate HTTP status for an error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) || errors.Is(err, models.ErrLedgerInconsistent) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, auth.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}

	if errors.Is(err, models.ErrNotTransactionPayer) {
		return http.StatusForbidden
	}

	for _, conflict := range []error{
		models.ErrTransactionSettled,
		models.ErrBudgetExists,
		models.ErrUsernameNotUnique,
		models.ErrAlreadyMember,
		models.ErrGroupFull,
	} {
		if errors.Is(err, conflict) {
			return http.StatusConflict
		}
	}

	return http.StatusBadRequest
}

// User errors
var (
	errUsernameEmpty = errors.New("the username must not be empty")
)

// Group errors
var (
	errNotGroupMember = errors.New("you are not a member of this group")
)

// Transaction errors
var (
	errGroupIDParameter = errors.New("the group parameter must be set")
)
