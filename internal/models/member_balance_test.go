package models_test

import (
	"github.com/halfsies/backend/internal/models"
	"github.com/halfsies/backend/internal/types"
	"github.com/shopspring/decimal"
)

// TestEvenSplitBalances verifies the even split: one member pays 30 for the
// group and ends up being owed everything above their own share.
func (suite *TestSuiteStandard) TestEvenSplitBalances() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(30),
		Category: types.CategoryGroceries,
	})

	suite.Assert().True(suite.balanceFor(group.ID, users[0].ID).Balance.Equal(decimal.NewFromInt(15)))
	suite.Assert().True(suite.balanceFor(group.ID, users[1].ID).Balance.Equal(decimal.NewFromInt(-15)))
}

// TestOwedToPurchaserBalances verifies that the full amount is owed back to
// the payer when the flag is set.
func (suite *TestSuiteStandard) TestOwedToPurchaserBalances() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:         group.ID,
		PaidByID:        users[0].ID,
		Amount:          decimal.NewFromInt(50),
		Category:        types.CategoryTravel,
		OwedToPurchaser: true,
	})

	suite.Assert().True(suite.balanceFor(group.ID, users[0].ID).Balance.Equal(decimal.NewFromInt(50)))
	suite.Assert().True(suite.balanceFor(group.ID, users[1].ID).Balance.Equal(decimal.NewFromInt(-50)))
}

// TestZeroSumInvariant verifies that the balances of a group sum to zero
// after every operation of a create and delete sequence.
func (suite *TestSuiteStandard) TestZeroSumInvariant() {
	group, users := suite.createTestGroup(2)

	assertZeroSum := func() {
		sum, err := models.GroupBalanceSum(models.DB, group.ID)
		suite.Require().NoError(err)
		suite.Assert().True(sum.IsZero(), "balance sum is %s", sum)
	}

	first := models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromFloat(10.01),
		Category: types.CategoryDining,
	}
	first = suite.recordTestTransaction(first)
	assertZeroSum()

	suite.recordTestTransaction(models.Transaction{
		GroupID:         group.ID,
		PaidByID:        users[1].ID,
		Amount:          decimal.NewFromFloat(33.33),
		Category:        types.CategoryUtilities,
		OwedToPurchaser: true,
	})
	assertZeroSum()

	err := models.DeleteTransaction(models.DB, first.ID, users[0].ID)
	suite.Require().NoError(err)
	assertZeroSum()
}

// TestDeleteRestoresBalances verifies the inverse property: recording and
// deleting a transaction restores the previous ledger state exactly.
func (suite *TestSuiteStandard) TestDeleteRestoresBalances() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(12),
		Category: types.CategoryGroceries,
	})

	before := []decimal.Decimal{
		suite.balanceFor(group.ID, users[0].ID).Balance,
		suite.balanceFor(group.ID, users[1].ID).Balance,
	}

	transaction := models.Transaction{
		GroupID:         group.ID,
		PaidByID:        users[1].ID,
		Amount:          decimal.NewFromFloat(47.11),
		Category:        types.CategoryEntertainment,
		OwedToPurchaser: true,
	}
	transaction = suite.recordTestTransaction(transaction)

	err := models.DeleteTransaction(models.DB, transaction.ID, users[1].ID)
	suite.Require().NoError(err)

	suite.Assert().True(suite.balanceFor(group.ID, users[0].ID).Balance.Equal(before[0]))
	suite.Assert().True(suite.balanceFor(group.ID, users[1].ID).Balance.Equal(before[1]))
}

// TestRecalculateGroupBalances verifies that the full rebuild reproduces
// the incremental state and fixes a corrupted balance row.
func (suite *TestSuiteStandard) TestRecalculateGroupBalances() {
	group, users := suite.createTestGroup(2)

	suite.recordTestTransaction(models.Transaction{
		GroupID:  group.ID,
		PaidByID: users[0].ID,
		Amount:   decimal.NewFromInt(40),
		Category: types.CategoryGroceries,
	})

	// Corrupt one balance row, the rebuild has to restore it
	err := models.DB.Model(&models.MemberBalance{}).
		Where("group_id = ? AND user_id = ?", group.ID, users[0].ID).
		Update("balance", decimal.NewFromInt(999)).Error
	suite.Require().NoError(err)

	err = models.RecalculateGroupBalances(models.DB, group.ID)
	suite.Require().NoError(err)

	suite.Assert().True(suite.balanceFor(group.ID, users[0].ID).Balance.Equal(decimal.NewFromInt(20)))
	suite.Assert().True(suite.balanceFor(group.ID, users[1].ID).Balance.Equal(decimal.NewFromInt(-20)))

	// Running the rebuild again does not change anything
	err = models.RecalculateGroupBalances(models.DB, group.ID)
	suite.Require().NoError(err)
	suite.Assert().True(suite.balanceFor(group.ID, users[0].ID).Balance.Equal(decimal.NewFromInt(20)))
}

// TestGroupMemberLimit verifies that a third member cannot join.
func (suite *TestSuiteStandard) TestGroupMemberLimit() {
	group, _ := suite.createTestGroup(2)
	user := suite.createTestUser(models.User{})

	err := models.DB.Create(&models.GroupMembership{GroupID: group.ID, UserID: user.ID}).Error
	suite.Assert().ErrorIs(err, models.ErrGroupFull)
}

// TestDuplicateMembership verifies that joining twice fails.
func (suite *TestSuiteStandard) TestDuplicateMembership() {
	group, users := suite.createTestGroup(1)

	err := models.DB.Create(&models.GroupMembership{GroupID: group.ID, UserID: users[0].ID}).Error
	suite.Assert().ErrorIs(err, models.ErrAlreadyMember)
}
