package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/halfsies/backend/internal/models"
	"github.com/halfsies/backend/internal/types"
	ez_uuid "github.com/halfsies/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

type TransactionEditable struct {
	GroupID  uuid.UUID       `json:"groupId" example:"9e295a5a-4a3b-4166-9ea1-a7c45f4b0f5c"` // ID of the group the expense belongs to
	PaidByID uuid.UUID       `json:"paidBy" example:"d7d851fb-e8d4-4ac6-a07c-fee86217571c"`  // ID of the member who paid
	Amount   decimal.Decimal `json:"amount" example:"14.03" minimum:"0.00000001"`            // The amount that was paid
	Category types.Category  `json:"category" example:"Groceries"`                           // Spending category
	Note     string          `json:"note" example:"Lunch" default:""`                        // A note
	Date     time.Time       `json:"date" example:"2025-03-07T18:43:00.271152Z"`             // Date of the expense. Defaults to the creation time

	// OwedToPurchaser marks the full amount as owed back to the payer
	// instead of being split evenly.
	OwedToPurchaser bool `json:"owedToPurchaser" example:"false" default:"false"`
}

// model returns the database resource for the API representation of the editable fields
func (editable TransactionEditable) model() models.Transaction {
	return models.Transaction{
		GroupID:         editable.GroupID,
		PaidByID:        editable.PaidByID,
		Amount:          editable.Amount,
		Category:        editable.Category,
		Note:            editable.Note,
		Date:            editable.Date,
		OwedToPurchaser: editable.OwedToPurchaser,
	}
}

// Transaction is the representation of a Transaction in API v1.
type Transaction struct {
	models.DefaultModel
	TransactionEditable
	IsSettlement   bool `json:"isSettlement" example:"false"`   // Was this transaction inserted by the settlement engine?
	HasBeenSettled bool `json:"hasBeenSettled" example:"false"` // Has a settlement swept past this transaction?
}

// newTransaction returns the API v1 representation of the resource
func newTransaction(model models.Transaction) Transaction {
	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			GroupID:         model.GroupID,
			PaidByID:        model.PaidByID,
			Amount:          model.Amount,
			Category:        model.Category,
			Note:            model.Note,
			Date:            model.Date,
			OwedToPurchaser: model.OwedToPurchaser,
		},
		IsSettlement:   model.IsSettlement,
		HasBeenSettled: model.HasBeenSettled,
	}
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Transaction `json:"data"`                                                          // The transaction data, if the request was successful
}

type TransactionQueryFilter struct {
	GroupID         ez_uuid.UUID `form:"group" filterField:"false"`    // ID of the group. Must be set
	PaidByID        ez_uuid.UUID `form:"paidBy"`                       // ID of the member who paid
	Category        string       `form:"category" filterField:"false"` // Spending category
	FromDate        time.Time    `form:"from" filterField:"false"`     // Transactions at and after this date. Ignores exact time, matches on the day of the RFC3339 timestamp provided.
	UntilDate       time.Time    `form:"to" filterField:"false"`       // Transactions before and at this date. Ignores exact time, matches on the day of the RFC3339 timestamp provided.
	Note            string       `form:"note" filterField:"false"`     // Note contains this string
	OwedToPurchaser bool         `form:"owedToPurchaser"`              // Is the full amount owed back to the payer?
	IsSettlement    bool         `form:"isSettlement"`                 // Was the transaction inserted by the settlement engine?
	HasBeenSettled  bool         `form:"settled"`                      // Has a settlement swept past the transaction?
	Offset          uint         `form:"offset" filterField:"false"`   // The offset of the first Transaction returned. Defaults to 0.
	Limit           int          `form:"limit" filterField:"false"`    // Maximum number of Transactions to return. Defaults to 50.
}

func (f TransactionQueryFilter) model() models.Transaction {
	// This does not set the category, string or date fields since they
	// are handled in the controller function
	return models.Transaction{
		PaidByID:        f.PaidByID.UUID,
		OwedToPurchaser: f.OwedToPurchaser,
		IsSettlement:    f.IsSettlement,
		HasBeenSettled:  f.HasBeenSettled,
	}
}
