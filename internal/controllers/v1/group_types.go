package v1

import (
	"github.com/google/uuid"
	"github.com/halfsies/backend/internal/models"
	"github.com/shopspring/decimal"
)

type GroupEditable struct {
	Name string `json:"name" example:"Flat on Maple Street"` // Name of the group
	Note string `json:"note" example:"Everything we share" default:""` // A longer description
}

// model returns the database resource for the API representation of the editable fields
func (editable GroupEditable) model() models.Group {
	return models.Group{
		Name: editable.Name,
		Note: editable.Note,
	}
}

// Group is the representation of a Group in API v1.
type Group struct {
	models.DefaultModel
	GroupEditable
	Members []User `json:"members"` // The members of the group, ordered by join time
}

// newGroup returns the API v1 representation of the resource
func newGroup(model models.Group, members []models.User) Group {
	users := make([]User, 0, len(members))
	for _, member := range members {
		users = append(users, newUser(member))
	}

	return Group{
		DefaultModel: model.DefaultModel,
		GroupEditable: GroupEditable{
			Name: model.Name,
			Note: model.Note,
		},
		Members: users,
	}
}

type GroupResponse struct {
	Error *string `json:"error" example:"there is no group matching your query"` // The error, if any occurred
	Data  *Group  `json:"data"`                                                  // The group data, if the request was successful
}

type MemberEditable struct {
	UserID uuid.UUID `json:"userId" example:"d7d851fb-e8d4-4ac6-a07c-fee86217571c"` // ID of the user to add
}

// Balance is the ledger state of one group member.
type Balance struct {
	UserID  uuid.UUID       `json:"userId"`  // The member the balance belongs to
	Balance decimal.Decimal `json:"balance"` // Positive means the member is owed money
}

type BalanceListResponse struct {
	Error *string   `json:"error" example:"there is no group matching your query"` // The error, if any occurred
	Data  []Balance `json:"data"`                                                  // The balances of all group members
}

type SettlementResponse struct {
	Error *string      `json:"error" example:"the group ledger is in an inconsistent state, recalculate the group balances"` // The error, if any occurred
	Data  *Transaction `json:"data"`                                                                                        // The settlement transaction, nil if there was nothing to settle
}
