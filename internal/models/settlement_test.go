package models_test

import (
	"github.com/halfsies/backend/internal/models"
	"github.com/halfsies/backend/internal/types"
	"github.com/shopspring/decimal"
)

// TestSettleTwoMembers verifies the full settlement cycle: A pays 50 owed
// to purchaser, the settlement creates a balancing transaction of 50 paid
// by B and both balances end at zero.
func (suite *TestSuiteStandard) TestSettleTwoMembers() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:         group.ID,
		PaidByID:        users[0].ID,
		Amount:          decimal.NewFromInt(50),
		Category:        types.CategoryTravel,
		OwedToPurchaser: true,
	})

	settlement, err := models.Settle(models.DB, group.ID)
	suite.Require().NoError(err)

	suite.Assert().Equal(users[1].ID, settlement.PaidByID)
	suite.Assert().True(settlement.Amount.Equal(decimal.NewFromInt(50)))
	suite.Assert().True(settlement.IsSettlement)
	suite.Assert().True(settlement.HasBeenSettled)
	suite.Assert().True(settlement.OwedToPurchaser)
	suite.Assert().Equal(types.CategorySettlement, settlement.Category)

	suite.Assert().True(suite.balanceFor(group.ID, users[0].ID).Balance.IsZero())
	suite.Assert().True(suite.balanceFor(group.ID, users[1].ID).Balance.IsZero())
}

// TestSettleSweepKeepsRows verifies that the settlement sweep only flips
// the settled flag: the swept transaction keeps its amount, category and
// date.
func (suite *TestSuiteStandard) TestSettleSweepKeepsRows() {
	group, users := suite.createTestGroup(2)

	recorded := suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(30),
		Category: types.CategoryGroceries,
		Note:     "Weekly shopping",
	})

	_, err := models.Settle(models.DB, group.ID)
	suite.Require().NoError(err)

	var swept models.Transaction
	suite.Require().NoError(models.DB.First(&swept, recorded.ID).Error)
	suite.Assert().True(swept.HasBeenSettled)
	suite.Assert().True(swept.Amount.Equal(decimal.NewFromInt(30)))
	suite.Assert().Equal(types.CategoryGroceries, swept.Category)
	suite.Assert().Equal("Weekly shopping", swept.Note)
}

// TestSettleQuiescentLedger verifies settlement idempotence: settling twice
// without intervening transactions reports that there is nothing to
// settle.
func (suite *TestSuiteStandard) TestSettleQuiescentLedger() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(30),
		Category: types.CategoryGroceries,
	})

	_, err := models.Settle(models.DB, group.ID)
	suite.Require().NoError(err)

	_, err = models.Settle(models.DB, group.ID)
	suite.Assert().ErrorIs(err, models.ErrNothingToSettle)
}

// TestSettleUntouchedGroup verifies that a group without transactions has
// nothing to settle.
func (suite *TestSuiteStandard) TestSettleUntouchedGroup() {
	group, _ := suite.createTestGroup(2)

	_, err := models.Settle(models.DB, group.ID)
	suite.Assert().ErrorIs(err, models.ErrNothingToSettle)
}

// TestSettlementBoundary verifies that a settlement only sweeps the
// unsettled tail: transactions recorded after a settlement stay unsettled
// until the next run.
func (suite *TestSuiteStandard) TestSettlementBoundary() {
	group, users := suite.createTestGroup(2)

	before := suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(30),
		Category: types.CategoryGroceries,
	})

	_, err := models.Settle(models.DB, group.ID)
	suite.Require().NoError(err)

	after := suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[1].ID,
		Amount:   decimal.NewFromInt(10),
		Category: types.CategoryDining,
	})

	// Fresh destination per lookup, a populated struct would add its
	// primary key to the query conditions
	var swept models.Transaction
	suite.Require().NoError(models.DB.First(&swept, before.ID).Error)
	suite.Assert().True(swept.HasBeenSettled, "transaction before the settlement is not marked settled")

	var tail models.Transaction
	suite.Require().NoError(models.DB.First(&tail, after.ID).Error)
	suite.Assert().False(tail.HasBeenSettled, "transaction after the settlement is marked settled")

	// The second settlement sweeps the new tail
	_, err = models.Settle(models.DB, group.ID)
	suite.Require().NoError(err)

	var resettled models.Transaction
	suite.Require().NoError(models.DB.First(&resettled, after.ID).Error)
	suite.Assert().True(resettled.HasBeenSettled)
}

// TestSettleGroupSize verifies that settlement refuses groups that do not
// have exactly two members.
func (suite *TestSuiteStandard) TestSettleGroupSize() {
	group, _ := suite.createTestGroup(1)

	_, err := models.Settle(models.DB, group.ID)
	suite.Assert().ErrorIs(err, models.ErrUnsupportedGroupSize)
}

// TestSettleInconsistentLedger verifies that malformed balance states are
// reported instead of settled.
func (suite *TestSuiteStandard) TestSettleInconsistentLedger() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(30),
		Category: types.CategoryGroceries,
	})

	// Corrupt the ledger so that both members appear to be owed money
	err := models.DB.Model(&models.MemberBalance{}).
		Where("group_id = ? AND user_id = ?", group.ID, users[1].ID).
		Update("balance", decimal.NewFromInt(15)).Error
	suite.Require().NoError(err)

	_, err = models.Settle(models.DB, group.ID)
	suite.Assert().ErrorIs(err, models.ErrLedgerInconsistent)
}

// TestSettleEpsilon verifies that balances within a cent of zero count as
// settled.
func (suite *TestSuiteStandard) TestSettleEpsilon() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(10),
		Category: types.CategoryOther,
	})

	// Shrink both balances below the epsilon
	err := models.DB.Model(&models.MemberBalance{}).
		Where("group_id = ? AND user_id = ?", group.ID, users[0].ID).
		Update("balance", decimal.NewFromFloat(0.005)).Error
	suite.Require().NoError(err)
	err = models.DB.Model(&models.MemberBalance{}).
		Where("group_id = ? AND user_id = ?", group.ID, users[1].ID).
		Update("balance", decimal.NewFromFloat(-0.005)).Error
	suite.Require().NoError(err)

	_, err = models.Settle(models.DB, group.ID)
	suite.Assert().ErrorIs(err, models.ErrNothingToSettle)
}
