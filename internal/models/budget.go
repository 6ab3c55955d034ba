package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/halfsies/backend/internal/types"
)

// Budget caps the spending for one category of a group per period window.
type Budget struct {
	DefaultModel
	GroupID  uuid.UUID
	Group    Group `json:"-"`
	Category types.Category
	Amount   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Period   types.Period

	// IsRepeating decides what happens when the window expires: a
	// repeating budget advances to the next window, a non-repeating one is
	// deactivated.
	IsRepeating bool

	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time

	// AlertAt is the percentage of Amount at which ShouldAlert trips.
	AlertAt decimal.Decimal `gorm:"type:DECIMAL(5,2)"`

	IsActive bool
}

var hundred = decimal.NewFromInt(100)

// BeforeSave verifies amount, category, period and alert threshold.
func (b *Budget) BeforeSave(_ *gorm.DB) error {
	if !b.Amount.IsPositive() {
		return ErrBudgetAmountNotPositive
	}

	if !b.Category.Valid() {
		return ErrCategoryInvalid
	}

	if b.Category == types.CategorySettlement {
		return ErrCategoryReserved
	}

	if !b.Period.Valid() {
		return ErrPeriodInvalid
	}

	if b.AlertAt.IsNegative() || b.AlertAt.GreaterThan(hundred) {
		return ErrAlertThresholdOutOfRange
	}

	return nil
}

// BeforeCreate verifies that the group exists and that it has no other
// active budget for the category, then initializes the period window.
func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	_ = b.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Budget)
	err := tx.First(&Group{}, toSave.GroupID).Error
	if err != nil {
		return err
	}

	var count int64
	err = tx.Model(&Budget{}).
		Where("group_id = ? AND category = ? AND is_active", toSave.GroupID, toSave.Category).
		Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrBudgetExists
	}

	b.IsActive = true
	if b.CurrentPeriodStart.IsZero() {
		b.CurrentPeriodStart, b.CurrentPeriodEnd = b.Period.Window(time.Now().In(time.UTC))
	}

	return nil
}

// AfterFind updates the timestamps to use UTC, see DefaultModel.AfterFind.
func (b *Budget) AfterFind(tx *gorm.DB) error {
	err := b.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	b.CurrentPeriodStart = b.CurrentPeriodStart.In(time.UTC)
	b.CurrentPeriodEnd = b.CurrentPeriodEnd.In(time.UTC)
	return nil
}

// UpdatePeriodIfNeeded advances the budget window when it has expired.
//
// Repeating budgets advance window by window until now falls inside the
// current one, each new window starting the day after the previous end.
// Non-repeating budgets are deactivated, which is terminal.
//
// Period advancement is lazy: it runs on every read and compute path, no
// background scheduler is needed for correctness.
func (b *Budget) UpdatePeriodIfNeeded(db *gorm.DB, now time.Time) error {
	if !b.IsActive || !now.After(b.CurrentPeriodEnd) {
		return nil
	}

	if !b.IsRepeating {
		b.IsActive = false
		return db.Model(b).Update("is_active", false).Error
	}

	start, end := b.CurrentPeriodStart, b.CurrentPeriodEnd
	for now.After(end) {
		start, end = b.Period.Next(end)
	}

	b.CurrentPeriodStart, b.CurrentPeriodEnd = start, end
	return db.Model(b).Updates(map[string]interface{}{
		"current_period_start": start,
		"current_period_end":   end,
	}).Error
}

// effectiveStart clamps the window start to the budget's creation date, so
// a window recalculated from a base date in the past never counts
// transactions that predate the budget itself.
func (b Budget) effectiveStart() time.Time {
	if b.CreatedAt.After(b.CurrentPeriodStart) {
		return b.CreatedAt
	}

	return b.CurrentPeriodStart
}

// Spending sums the non-settlement transactions for the budget's group and
// category within the current window.
func (b Budget) Spending(db *gorm.DB) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := db.Table("transactions").
		Select("SUM(amount)").
		Where("group_id = ? AND category = ? AND NOT is_settlement AND deleted_at IS NULL", b.GroupID, b.Category).
		Where("date >= ? AND date <= ?", b.effectiveStart(), b.CurrentPeriodEnd).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

// SpendingForBudgets computes the spending for multiple budgets with a
// single transaction query. The per-budget results are identical to calling
// Spending for each budget individually.
func SpendingForBudgets(db *gorm.DB, budgets []Budget, now time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	spending := make(map[uuid.UUID]decimal.Decimal, len(budgets))
	if len(budgets) == 0 {
		return spending, nil
	}

	groupIDs := make([]uuid.UUID, 0, len(budgets))
	categories := make([]types.Category, 0, len(budgets))
	for i := range budgets {
		err := budgets[i].UpdatePeriodIfNeeded(db, now)
		if err != nil {
			return nil, err
		}

		spending[budgets[i].ID] = decimal.Zero
		groupIDs = append(groupIDs, budgets[i].GroupID)
		categories = append(categories, budgets[i].Category)
	}

	var transactions []Transaction
	err := db.
		Where("group_id IN ? AND category IN ? AND NOT is_settlement", groupIDs, categories).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	for _, t := range transactions {
		for i := range budgets {
			b := budgets[i]
			if t.GroupID != b.GroupID || t.Category != b.Category {
				continue
			}

			if t.Date.Before(b.effectiveStart()) || t.Date.After(b.CurrentPeriodEnd) {
				continue
			}

			spending[b.ID] = spending[b.ID].Add(t.Amount)
		}
	}

	return spending, nil
}

// SnapshotsForBudgets computes the snapshots for multiple budgets with a
// single transaction query, keyed by budget ID.
func SnapshotsForBudgets(db *gorm.DB, budgets []Budget, now time.Time) (map[uuid.UUID]BudgetSnapshot, error) {
	spending, err := SpendingForBudgets(db, budgets, now)
	if err != nil {
		return nil, err
	}

	snapshots := make(map[uuid.UUID]BudgetSnapshot, len(budgets))
	for i := range budgets {
		b := budgets[i]
		spent := spending[b.ID]
		percentage := spent.Div(b.Amount).Mul(hundred)

		snapshots[b.ID] = BudgetSnapshot{
			Spending:       spent,
			Remaining:      b.Amount.Sub(spent),
			PercentageUsed: percentage,
			ShouldAlert:    percentage.GreaterThanOrEqual(b.AlertAt),
			IsOverBudget:   spent.GreaterThan(b.Amount),
		}
	}

	return snapshots, nil
}

// BudgetSnapshot is the spending state of a budget within its current
// window.
type BudgetSnapshot struct {
	Spending       decimal.Decimal `json:"spending"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentageUsed"`
	ShouldAlert    bool            `json:"shouldAlert"`
	IsOverBudget   bool            `json:"isOverBudget"`
}

// Snapshot advances the period if needed and computes the spending state.
//
// ShouldAlert and IsOverBudget are pure functions of spending and amount,
// there is no hysteresis and no alert de-duplication at this layer.
func (b *Budget) Snapshot(db *gorm.DB, now time.Time) (BudgetSnapshot, error) {
	err := b.UpdatePeriodIfNeeded(db, now)
	if err != nil {
		return BudgetSnapshot{}, err
	}

	spending, err := b.Spending(db)
	if err != nil {
		return BudgetSnapshot{}, err
	}

	percentage := spending.Div(b.Amount).Mul(hundred)

	return BudgetSnapshot{
		Spending:       spending,
		Remaining:      b.Amount.Sub(spending),
		PercentageUsed: percentage,
		ShouldAlert:    percentage.GreaterThanOrEqual(b.AlertAt),
		IsOverBudget:   spending.GreaterThan(b.Amount),
	}, nil
}
