package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/halfsies/backend/internal/auth"
	"github.com/halfsies/backend/internal/httputil"
	"github.com/halfsies/backend/internal/models"
	"github.com/halfsies/backend/internal/notify"
	"github.com/halfsies/backend/internal/types"
	ez_uuid "github.com/halfsies/backend/internal/uuid"
	"golang.org/x/exp/slices"
)

var errBudgetGroupImmutable = errors.New("the group of a budget cannot be changed")

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetBudgets)
		r.POST("", co.CreateBudget)
	}

	// Budget with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetBudget)
		r.PATCH("/:id", co.UpdateBudget)
		r.DELETE("/:id", co.DeleteBudget)

		r.OPTIONS("/:id/snapshot", httputil.OptionsGet)
		r.GET("/:id/snapshot", co.GetBudgetSnapshot)
	}
}

// CreateBudget creates a budget for a category of a group.
func (co Controller) CreateBudget(c *gin.Context) {
	var editable BudgetEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	var group models.Group
	err = models.DB.First(&group, editable.GroupID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	member, err := group.HasMember(models.DB, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	if !member {
		e := errNotGroupMember.Error()
		c.JSON(http.StatusForbidden, BudgetResponse{
			Error: &e,
		})
		return
	}

	budget := editable.model()
	err = models.DB.Create(&budget).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	data := newBudget(budget, nil)
	c.JSON(http.StatusCreated, BudgetResponse{Data: &data})
}

// GetBudgets returns the budgets of a group together with their current
// spending state.
func (co Controller) GetBudgets(c *gin.Context) {
	var filter BudgetQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, BudgetListResponse{
			Error: &s,
		})
		return
	}

	if filter.GroupID == ez_uuid.Nil {
		s := errGroupIDParameter.Error()
		c.JSON(http.StatusBadRequest, BudgetListResponse{
			Error: &s,
		})
		return
	}

	var group models.Group
	err := models.DB.First(&group, filter.GroupID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &e,
		})
		return
	}

	member, err := group.HasMember(models.DB, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &e,
		})
		return
	}

	if !member {
		e := errNotGroupMember.Error()
		c.JSON(http.StatusForbidden, BudgetListResponse{
			Error: &e,
		})
		return
	}

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	model := filter.model()
	q := models.DB.
		Order("datetime(budgets.created_at) ASC").
		Where("budgets.group_id = ?", filter.GroupID).
		Where(&model, queryFields...)

	if filter.Category != "" {
		category, err := types.ParseCategory(filter.Category)
		if err != nil {
			e := err.Error()
			c.JSON(http.StatusBadRequest, BudgetListResponse{
				Error: &e,
			})
			return
		}

		q = q.Where("budgets.category = ?", category)
	}

	var budgets []models.Budget
	err = q.Find(&budgets).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &e,
		})
		return
	}

	snapshots, err := models.SnapshotsForBudgets(models.DB, budgets, time.Now().UTC())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Budget, 0, len(budgets))
	for _, budget := range budgets {
		snapshot := snapshots[budget.ID]
		data = append(data, newBudget(budget, &snapshot))
	}

	c.JSON(http.StatusOK, BudgetListResponse{Data: data})
}

// GetBudget returns a specific budget.
func (co Controller) GetBudget(c *gin.Context) {
	budget, ok := co.memberBudget(c)
	if !ok {
		return
	}

	err := budget.UpdatePeriodIfNeeded(models.DB, time.Now().UTC())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	data := newBudget(budget, nil)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// GetBudgetSnapshot returns a budget with its spending state in the
// current window.
func (co Controller) GetBudgetSnapshot(c *gin.Context) {
	budget, ok := co.memberBudget(c)
	if !ok {
		return
	}

	snapshot, err := budget.Snapshot(models.DB, time.Now().UTC())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	data := newBudget(budget, &snapshot)

	if snapshot.ShouldAlert {
		co.Hub.Emit(notify.Event{
			Type:    notify.EventBudgetAlert,
			GroupID: budget.GroupID,
			Data:    data,
		})
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// UpdateBudget updates an existing budget. Only values to be updated need
// to be specified.
func (co Controller) UpdateBudget(c *gin.Context) {
	budget, ok := co.memberBudget(c)
	if !ok {
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, BudgetEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	if slices.Contains(updateFields, any("GroupID")) {
		e := errBudgetGroupImmutable.Error()
		c.JSON(http.StatusBadRequest, BudgetResponse{
			Error: &e,
		})
		return
	}

	// Bind the update for the patch
	var update BudgetEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	// Unset fields fall back to the stored values so that the validation
	// hooks see a complete resource
	if update.Amount.IsZero() {
		update.Amount = budget.Amount
	}
	if update.Category == "" {
		update.Category = budget.Category
	}
	if update.Period == "" {
		update.Period = budget.Period
	}
	update.GroupID = budget.GroupID

	model := update.model()

	// A changed period invalidates the current window, recompute it
	if update.Period != budget.Period {
		model.CurrentPeriodStart, model.CurrentPeriodEnd = update.Period.Window(time.Now().In(time.UTC))
		updateFields = append(updateFields, "CurrentPeriodStart", "CurrentPeriodEnd")
	}

	err = models.DB.Model(&budget).Select("", updateFields...).Updates(model).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	data := newBudget(budget, nil)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// DeleteBudget deletes a budget.
func (co Controller) DeleteBudget(c *gin.Context) {
	budget, ok := co.memberBudget(c)
	if !ok {
		return
	}

	err := models.DB.Delete(&budget).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// memberBudget loads the budget from the URI and verifies that the
// requester is a member of its group. It writes the error response itself
// when it returns !ok.
func (co Controller) memberBudget(c *gin.Context) (models.Budget, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return models.Budget{}, false
	}

	var budget models.Budget
	err = models.DB.First(&budget, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return models.Budget{}, false
	}

	member, err := models.Group{DefaultModel: models.DefaultModel{ID: budget.GroupID}}.HasMember(models.DB, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return models.Budget{}, false
	}

	if !member {
		e := errNotGroupMember.Error()
		c.JSON(http.StatusForbidden, BudgetResponse{
			Error: &e,
		})
		return models.Budget{}, false
	}

	return budget, true
}
