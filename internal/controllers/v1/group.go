package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/halfsies/backend/internal/auth"
	"github.com/halfsies/backend/internal/httputil"
	"github.com/halfsies/backend/internal/models"
	"github.com/halfsies/backend/internal/notify"
	"gorm.io/gorm"
)

// RegisterGroupRoutes registers the routes for groups with
// the RouterGroup that is passed.
func (co Controller) RegisterGroupRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsPost)
		r.POST("", co.CreateGroup)
	}

	// Group with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGet)
		r.GET("/:id", co.GetGroup)

		r.OPTIONS("/:id/members", httputil.OptionsPost)
		r.POST("/:id/members", co.AddMember)

		r.OPTIONS("/:id/balances", httputil.OptionsGet)
		r.GET("/:id/balances", co.GetBalances)

		r.OPTIONS("/:id/settle", httputil.OptionsPost)
		r.POST("/:id/settle", co.Settle)
	}
}

// CreateGroup creates a new group. The requester becomes its first member.
func (co Controller) CreateGroup(c *gin.Context) {
	var editable GroupEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return
	}

	group := editable.model()

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Create(&group).Error
		if err != nil {
			return err
		}

		return tx.Create(&models.GroupMembership{
			GroupID: group.ID,
			UserID:  auth.UserID(c),
		}).Error
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return
	}

	members, err := group.Members(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return
	}

	data := newGroup(group, members)
	c.JSON(http.StatusCreated, GroupResponse{Data: &data})
}

// GetGroup returns a specific group with its members.
func (co Controller) GetGroup(c *gin.Context) {
	group, ok := co.memberGroup(c)
	if !ok {
		return
	}

	members, err := group.Members(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return
	}

	data := newGroup(group, members)
	c.JSON(http.StatusOK, GroupResponse{Data: &data})
}

// AddMember adds a user to the group.
func (co Controller) AddMember(c *gin.Context) {
	group, ok := co.memberGroup(c)
	if !ok {
		return
	}

	var editable MemberEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Create(&models.GroupMembership{
		GroupID: group.ID,
		UserID:  editable.UserID,
	}).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return
	}

	members, err := group.Members(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return
	}

	data := newGroup(group, members)
	c.JSON(http.StatusCreated, GroupResponse{Data: &data})
}

// GetBalances returns the ledger state of the group.
func (co Controller) GetBalances(c *gin.Context) {
	group, ok := co.memberGroup(c)
	if !ok {
		return
	}

	balances, err := models.Balances(models.DB, group.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BalanceListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Balance, 0, len(balances))
	for _, balance := range balances {
		data = append(data, Balance{
			UserID:  balance.UserID,
			Balance: balance.Balance,
		})
	}

	c.JSON(http.StatusOK, BalanceListResponse{Data: data})
}

// Settle runs the settlement engine for the group.
func (co Controller) Settle(c *gin.Context) {
	group, ok := co.memberGroup(c)
	if !ok {
		return
	}

	settlement, err := models.Settle(models.DB, group.ID)
	if err != nil {
		// A quiescent ledger is not an error state
		if errors.Is(err, models.ErrNothingToSettle) {
			c.JSON(http.StatusOK, SettlementResponse{})
			return
		}

		e := err.Error()
		c.JSON(status(err), SettlementResponse{
			Error: &e,
		})
		return
	}

	data := newTransaction(settlement)

	co.Hub.Emit(notify.Event{
		Type:    notify.EventGroupSettled,
		GroupID: group.ID,
		Data:    data,
	})
	co.Hub.Emit(notify.Event{
		Type:    notify.EventBalanceUpdate,
		GroupID: group.ID,
	})

	c.JSON(http.StatusOK, SettlementResponse{Data: &data})
}

// memberGroup loads the group from the URI and verifies that the requester
// is a member. It writes the error response itself when it returns !ok.
func (co Controller) memberGroup(c *gin.Context) (models.Group, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return models.Group{}, false
	}

	var group models.Group
	err = models.DB.First(&group, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return models.Group{}, false
	}

	member, err := group.HasMember(models.DB, auth.UserID(c))
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GroupResponse{
			Error: &e,
		})
		return models.Group{}, false
	}

	if !member {
		e := errNotGroupMember.Error()
		c.JSON(http.StatusForbidden, GroupResponse{
			Error: &e,
		})
		return models.Group{}, false
	}

	return group, true
}
