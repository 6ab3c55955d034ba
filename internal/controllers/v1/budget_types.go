package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/halfsies/backend/internal/models"
	"github.com/halfsies/backend/internal/types"
	ez_uuid "github.com/halfsies/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

type BudgetEditable struct {
	GroupID  uuid.UUID       `json:"groupId" example:"9e295a5a-4a3b-4166-9ea1-a7c45f4b0f5c"` // ID of the group the budget belongs to
	Category types.Category  `json:"category" example:"Groceries"`                           // Spending category the budget caps
	Amount   decimal.Decimal `json:"amount" example:"400" minimum:"0.00000001"`              // The spending cap per period
	Period   types.Period    `json:"period" example:"monthly"`                               // Length of the budget window

	// IsRepeating decides what happens when the window expires: a
	// repeating budget advances to the next window, a non-repeating one is
	// deactivated.
	IsRepeating bool `json:"isRepeating" example:"true" default:"false"`

	AlertAt decimal.Decimal `json:"alertAt" example:"80" minimum:"0" maximum:"100"` // Percentage of the amount at which the alert trips
}

// model returns the database resource for the API representation of the editable fields
func (editable BudgetEditable) model() models.Budget {
	return models.Budget{
		GroupID:     editable.GroupID,
		Category:    editable.Category,
		Amount:      editable.Amount,
		Period:      editable.Period,
		IsRepeating: editable.IsRepeating,
		AlertAt:     editable.AlertAt,
	}
}

// Budget is the representation of a Budget in API v1.
type Budget struct {
	models.DefaultModel
	BudgetEditable
	CurrentPeriodStart time.Time `json:"currentPeriodStart" example:"2025-03-01T00:00:00Z"`             // Start of the current window
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd" example:"2025-03-31T23:59:59.999999999Z"`     // End of the current window
	IsActive           bool      `json:"isActive" example:"true"`                                       // Is the budget still tracking spending?

	Snapshot *models.BudgetSnapshot `json:"snapshot,omitempty"` // The spending state within the current window, where computed
}

// newBudget returns the API v1 representation of the resource
func newBudget(model models.Budget, snapshot *models.BudgetSnapshot) Budget {
	return Budget{
		DefaultModel: model.DefaultModel,
		BudgetEditable: BudgetEditable{
			GroupID:     model.GroupID,
			Category:    model.Category,
			Amount:      model.Amount,
			Period:      model.Period,
			IsRepeating: model.IsRepeating,
			AlertAt:     model.AlertAt,
		},
		CurrentPeriodStart: model.CurrentPeriodStart,
		CurrentPeriodEnd:   model.CurrentPeriodEnd,
		IsActive:           model.IsActive,
		Snapshot:           snapshot,
	}
}

type BudgetListResponse struct {
	Data  []Budget `json:"data"`                                                   // List of budgets
	Error *string  `json:"error" example:"there is no budget matching your query"` // The error, if any occurred
}

type BudgetResponse struct {
	Error *string `json:"error" example:"there is no budget matching your query"` // The error, if any occurred
	Data  *Budget `json:"data"`                                                   // The budget data, if the request was successful
}

type BudgetQueryFilter struct {
	GroupID  ez_uuid.UUID `form:"group" filterField:"false"`    // ID of the group. Must be set
	Category string       `form:"category" filterField:"false"` // Spending category
	IsActive bool         `form:"active"`                       // Is the budget still tracking spending?
}

func (f BudgetQueryFilter) model() models.Budget {
	// The category is handled in the controller function
	return models.Budget{
		IsActive: f.IsActive,
	}
}
