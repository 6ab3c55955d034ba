package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/halfsies/backend/internal/auth"
	"github.com/halfsies/backend/internal/httputil"
	"github.com/halfsies/backend/internal/models"
	"github.com/halfsies/backend/internal/notify"
	"github.com/halfsies/backend/internal/types"
	ez_uuid "github.com/halfsies/backend/internal/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransaction)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetDelete)
		r.GET("/:id", co.GetTransaction)
		r.DELETE("/:id", co.DeleteTransaction)
	}
}

// CreateTransaction records an expense and applies its balance effects.
func (co Controller) CreateTransaction(c *gin.Context) {
	var editable TransactionEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return
	}

	var group models.Group
	err = models.DB.First(&group, editable.GroupID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return
	}

	member, err := group.HasMember(models.DB, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return
	}

	if !member {
		e := errNotGroupMember.Error()
		c.JSON(http.StatusForbidden, TransactionResponse{
			Error: &e,
		})
		return
	}

	transaction := editable.model()
	err = transaction.Record(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return
	}

	data := newTransaction(transaction)

	co.Hub.Emit(notify.Event{
		Type:    notify.EventTransactionUpdate,
		GroupID: transaction.GroupID,
		Data:    data,
	})
	co.Hub.Emit(notify.Event{
		Type:    notify.EventBalanceUpdate,
		GroupID: transaction.GroupID,
	})
	co.emitBudgetAlert(transaction)

	c.JSON(http.StatusCreated, TransactionResponse{Data: &data})
}

// GetTransaction returns a specific transaction.
func (co Controller) GetTransaction(c *gin.Context) {
	transaction, ok := co.memberTransaction(c)
	if !ok {
		return
	}

	data := newTransaction(transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// GetTransactions returns the transactions of a group, newest first.
func (co Controller) GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{
			Error: &s,
		})
		return
	}

	if filter.GroupID == ez_uuid.Nil {
		s := errGroupIDParameter.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{
			Error: &s,
		})
		return
	}

	var group models.Group
	err := models.DB.First(&group, filter.GroupID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	member, err := group.HasMember(models.DB, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	if !member {
		e := errNotGroupMember.Error()
		c.JSON(http.StatusForbidden, TransactionListResponse{
			Error: &e,
		})
		return
	}

	// Get the fields set in the filter
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	model := filter.model()
	q := models.DB.
		Order("datetime(transactions.date) DESC, datetime(transactions.created_at) DESC").
		Where("transactions.group_id = ?", filter.GroupID).
		Where(&model, queryFields...)

	if filter.Category != "" {
		category, err := types.ParseCategory(filter.Category)
		if err != nil {
			e := err.Error()
			c.JSON(http.StatusBadRequest, TransactionListResponse{
				Error: &e,
			})
			return
		}

		q = q.Where("transactions.category = ?", category)
	}

	if !filter.FromDate.IsZero() {
		q = q.Where("transactions.date >= date(?)", time.Date(filter.FromDate.Year(), filter.FromDate.Month(), filter.FromDate.Day(), 0, 0, 0, 0, time.UTC))
	}

	if !filter.UntilDate.IsZero() {
		q = q.Where("transactions.date < date(?)", time.Date(filter.UntilDate.Year(), filter.UntilDate.Month(), filter.UntilDate.Day()+1, 0, 0, 0, 0, time.UTC))
	}

	if filter.Note != "" {
		q = q.Where("transactions.note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("transactions.note = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 transactions and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var transactions []models.Transaction
	err = q.Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Transaction, 0)
	for _, transaction := range transactions {
		data = append(data, newTransaction(transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// DeleteTransaction deletes a transaction and reverses its balance effects.
// Only the member who paid can delete it.
func (co Controller) DeleteTransaction(c *gin.Context) {
	transaction, ok := co.memberTransaction(c)
	if !ok {
		return
	}

	err := models.DeleteTransaction(models.DB, transaction.ID, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return
	}

	co.Hub.Emit(notify.Event{
		Type:    notify.EventTransactionUpdate,
		GroupID: transaction.GroupID,
		Data:    newTransaction(transaction),
	})
	co.Hub.Emit(notify.Event{
		Type:    notify.EventBalanceUpdate,
		GroupID: transaction.GroupID,
	})

	c.JSON(http.StatusNoContent, nil)
}

// memberTransaction loads the transaction from the URI and verifies that
// the requester is a member of its group. It writes the error response
// itself when it returns !ok.
func (co Controller) memberTransaction(c *gin.Context) (models.Transaction, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return models.Transaction{}, false
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return models.Transaction{}, false
	}

	member, err := models.Group{DefaultModel: models.DefaultModel{ID: transaction.GroupID}}.HasMember(models.DB, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return models.Transaction{}, false
	}

	if !member {
		e := errNotGroupMember.Error()
		c.JSON(http.StatusForbidden, TransactionResponse{
			Error: &e,
		})
		return models.Transaction{}, false
	}

	return transaction, true
}

// emitBudgetAlert pushes a budget-alert event when the recorded
// transaction moved the active budget of its category over the alert
// threshold. Emission failures never fail the request.
func (co Controller) emitBudgetAlert(transaction models.Transaction) {
	var budget models.Budget
	err := models.DB.
		Where("group_id = ? AND category = ? AND is_active = ?", transaction.GroupID, transaction.Category, true).
		First(&budget).Error
	if err != nil {
		if !errors.Is(err, models.ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Msg("budget alert check failed")
		}
		return
	}

	snapshot, err := budget.Snapshot(models.DB, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("budget alert check failed")
		return
	}

	if !snapshot.ShouldAlert {
		return
	}

	co.Hub.Emit(notify.Event{
		Type:    notify.EventBudgetAlert,
		GroupID: transaction.GroupID,
		Data:    newBudget(budget, &snapshot),
	})
}
