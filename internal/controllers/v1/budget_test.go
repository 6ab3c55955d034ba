package v1_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	v1 "github.com/halfsies/backend/internal/controllers/v1"
	"github.com/halfsies/backend/internal/types"
	"github.com/halfsies/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestCreateBudget() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)

	response := suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:     group.ID,
		Category:    types.CategoryGroceries,
		Amount:      decimal.NewFromFloat(400),
		Period:      types.PeriodMonthly,
		IsRepeating: true,
		AlertAt:     decimal.NewFromFloat(80),
	})

	assert.True(suite.T(), response.Data.IsActive)
	assert.False(suite.T(), response.Data.CurrentPeriodStart.IsZero(), "Period window has not been initialized")
	assert.True(suite.T(), response.Data.CurrentPeriodEnd.After(response.Data.CurrentPeriodStart))
	assert.Nil(suite.T(), response.Data.Snapshot)
}

func (suite *TestSuiteStandard) TestCreateBudgetDuplicateCategory() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)

	editable := v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(400),
		Period:   types.PeriodMonthly,
	}

	suite.createTestBudget(morre, editable)
	suite.createTestBudget(morre, editable, http.StatusConflict)

	// A second budget for another category is fine
	editable.Category = types.CategoryDining
	suite.createTestBudget(morre, editable)
}

func (suite *TestSuiteStandard) TestCreateBudgetInvalid() {
	morre := suite.registerTestUser("morre")
	stranger := suite.registerTestUser("stranger")
	group := suite.createTestGroup("Testing", morre)

	tests := []struct {
		name     string
		session  v1.SessionData
		status   int
		editable v1.BudgetEditable
	}{
		{
			"Nonexistent group", morre, http.StatusNotFound,
			v1.BudgetEditable{GroupID: uuid.MustParse("4e743e94-6a4b-44d6-aba5-d77c87103ff7"), Category: types.CategoryGroceries, Amount: decimal.NewFromFloat(400), Period: types.PeriodMonthly},
		},
		{
			"Requester not a member", stranger, http.StatusForbidden,
			v1.BudgetEditable{GroupID: group.ID, Category: types.CategoryGroceries, Amount: decimal.NewFromFloat(400), Period: types.PeriodMonthly},
		},
		{
			"Zero amount", morre, http.StatusBadRequest,
			v1.BudgetEditable{GroupID: group.ID, Category: types.CategoryGroceries, Amount: decimal.Zero, Period: types.PeriodMonthly},
		},
		{
			"Unknown period", morre, http.StatusBadRequest,
			v1.BudgetEditable{GroupID: group.ID, Category: types.CategoryGroceries, Amount: decimal.NewFromFloat(400), Period: "fortnightly"},
		},
		{
			"Reserved category", morre, http.StatusBadRequest,
			v1.BudgetEditable{GroupID: group.ID, Category: types.CategorySettlement, Amount: decimal.NewFromFloat(400), Period: types.PeriodMonthly},
		},
		{
			"Alert threshold above 100", morre, http.StatusBadRequest,
			v1.BudgetEditable{GroupID: group.ID, Category: types.CategoryGroceries, Amount: decimal.NewFromFloat(400), Period: types.PeriodMonthly, AlertAt: decimal.NewFromFloat(101)},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			_ = suite.createTestBudget(tt.session, tt.editable, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestGetBudgets() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)

	suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(400),
		Period:   types.PeriodMonthly,
		AlertAt:  decimal.NewFromFloat(80),
	})
	suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryDining,
		Amount:   decimal.NewFromFloat(100),
		Period:   types.PeriodWeekly,
		AlertAt:  decimal.NewFromFloat(80),
	})

	suite.createTestTransaction(morre, v1.TransactionEditable{
		GroupID:  group.ID,
		PaidByID: morre.User.ID,
		Amount:   decimal.NewFromFloat(100),
		Category: types.CategoryGroceries,
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/budgets?group="+group.ID.String(), "", authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	if assert.Len(suite.T(), response.Data, 2) {
		groceries := response.Data[0]
		assert.Equal(suite.T(), types.CategoryGroceries, groceries.Category)

		// Snapshots are computed for the whole list
		if assert.NotNil(suite.T(), groceries.Snapshot) {
			assert.True(suite.T(), groceries.Snapshot.Spending.Equal(decimal.NewFromFloat(100)), groceries.Snapshot)
			assert.True(suite.T(), groceries.Snapshot.Remaining.Equal(decimal.NewFromFloat(300)), groceries.Snapshot)
			assert.False(suite.T(), groceries.Snapshot.ShouldAlert)
		}

		if assert.NotNil(suite.T(), response.Data[1].Snapshot) {
			assert.True(suite.T(), response.Data[1].Snapshot.Spending.IsZero())
		}
	}
}

func (suite *TestSuiteStandard) TestGetBudgetsWithoutGroup() {
	morre := suite.registerTestUser("morre")

	r := test.Request(suite.T(), http.MethodGet, "/v1/budgets", "", authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestGetBudgetSnapshot() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)

	budget := suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(100),
		Period:   types.PeriodMonthly,
		AlertAt:  decimal.NewFromFloat(80),
	})

	suite.createTestTransaction(morre, v1.TransactionEditable{
		GroupID:  group.ID,
		PaidByID: morre.User.ID,
		Amount:   decimal.NewFromFloat(90),
		Category: types.CategoryGroceries,
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/budgets/"+budget.Data.ID.String()+"/snapshot", "", authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)

	snapshot := response.Data.Snapshot
	if assert.NotNil(suite.T(), snapshot) {
		assert.True(suite.T(), snapshot.Spending.Equal(decimal.NewFromFloat(90)), snapshot)
		assert.True(suite.T(), snapshot.Remaining.Equal(decimal.NewFromFloat(10)), snapshot)
		assert.True(suite.T(), snapshot.PercentageUsed.Equal(decimal.NewFromFloat(90)), snapshot)
		assert.True(suite.T(), snapshot.ShouldAlert)
		assert.False(suite.T(), snapshot.IsOverBudget)
	}

	// Push the spending over the cap
	suite.createTestTransaction(morre, v1.TransactionEditable{
		GroupID:  group.ID,
		PaidByID: morre.User.ID,
		Amount:   decimal.NewFromFloat(20),
		Category: types.CategoryGroceries,
	})

	r = test.Request(suite.T(), http.MethodGet, "/v1/budgets/"+budget.Data.ID.String()+"/snapshot", "", authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &response)
	if assert.NotNil(suite.T(), response.Data.Snapshot) {
		assert.True(suite.T(), response.Data.Snapshot.IsOverBudget)
	}
}

func (suite *TestSuiteStandard) TestUpdateBudget() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)

	budget := suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(400),
		Period:   types.PeriodMonthly,
	})

	r := test.Request(suite.T(), http.MethodPatch, "/v1/budgets/"+budget.Data.ID.String(), map[string]any{
		"amount":  450,
		"alertAt": 90,
	}, authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.True(suite.T(), response.Data.Amount.Equal(decimal.NewFromFloat(450)), response.Data.Amount)
	assert.True(suite.T(), response.Data.AlertAt.Equal(decimal.NewFromFloat(90)), response.Data.AlertAt)

	// Untouched fields stay as they are
	assert.Equal(suite.T(), types.CategoryGroceries, response.Data.Category)
	assert.Equal(suite.T(), types.PeriodMonthly, response.Data.Period)
}

func (suite *TestSuiteStandard) TestUpdateBudgetPeriodRecomputesWindow() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)

	budget := suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(400),
		Period:   types.PeriodMonthly,
	})

	r := test.Request(suite.T(), http.MethodPatch, "/v1/budgets/"+budget.Data.ID.String(), map[string]any{
		"period": "weekly",
	}, authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), types.PeriodWeekly, response.Data.Period)

	// The window is recomputed for the new period instead of keeping the
	// old monthly one
	start, end := types.PeriodWeekly.Window(time.Now().In(time.UTC))
	assert.True(suite.T(), response.Data.CurrentPeriodStart.Equal(start), response.Data.CurrentPeriodStart)
	assert.True(suite.T(), response.Data.CurrentPeriodEnd.Equal(end), response.Data.CurrentPeriodEnd)
}

func (suite *TestSuiteStandard) TestUpdateBudgetGroupImmutable() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)
	other := suite.createTestGroup("Other", morre)

	budget := suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(400),
		Period:   types.PeriodMonthly,
	})

	r := test.Request(suite.T(), http.MethodPatch, "/v1/budgets/"+budget.Data.ID.String(), map[string]any{
		"groupId": other.ID.String(),
	}, authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "the group of a budget cannot be changed", *response.Error)
}

func (suite *TestSuiteStandard) TestDeleteBudget() {
	morre := suite.registerTestUser("morre")
	group := suite.createTestGroup("Testing", morre)

	budget := suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(400),
		Period:   types.PeriodMonthly,
	})

	r := test.Request(suite.T(), http.MethodDelete, "/v1/budgets/"+budget.Data.ID.String(), "", authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, "/v1/budgets/"+budget.Data.ID.String(), "", authHeaders(morre))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestGetBudgetNonMember() {
	morre := suite.registerTestUser("morre")
	stranger := suite.registerTestUser("stranger")
	group := suite.createTestGroup("Testing", morre)

	budget := suite.createTestBudget(morre, v1.BudgetEditable{
		GroupID:  group.ID,
		Category: types.CategoryGroceries,
		Amount:   decimal.NewFromFloat(400),
		Period:   types.PeriodMonthly,
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/budgets/"+budget.Data.ID.String(), "", authHeaders(stranger))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusForbidden)
}
