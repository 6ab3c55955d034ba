package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/halfsies/backend/internal/auth"
	"github.com/halfsies/backend/internal/httputil"
	"github.com/halfsies/backend/internal/models"
	"gorm.io/gorm"
)

// RegisterUserRoutes registers the routes for users with
// the RouterGroup that is passed.
func (co Controller) RegisterUserRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", co.RegisterUser)

	r.OPTIONS("/login", httputil.OptionsPost)
	r.POST("/login", co.Login)
}

// RegisterUser creates a new user account and returns a session for it.
func (co Controller) RegisterUser(c *gin.Context) {
	var editable UserEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SessionResponse{
			Error: &e,
		})
		return
	}

	if strings.TrimSpace(editable.Username) == "" {
		e := errUsernameEmpty.Error()
		c.JSON(http.StatusBadRequest, SessionResponse{
			Error: &e,
		})
		return
	}

	hash, err := auth.HashPassword(editable.Password)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SessionResponse{
			Error: &e,
		})
		return
	}

	user := models.User{
		Username:     editable.Username,
		PasswordHash: hash,
	}

	err = models.DB.Create(&user).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SessionResponse{
			Error: &e,
		})
		return
	}

	co.session(c, http.StatusCreated, user)
}

// Login verifies the credentials and returns a session.
func (co Controller) Login(c *gin.Context) {
	var editable UserEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SessionResponse{
			Error: &e,
		})
		return
	}

	var user models.User
	err = models.DB.Where(&models.User{Username: strings.TrimSpace(editable.Username)}).First(&user).Error
	if err != nil {
		// An unknown username reads exactly like a wrong password
		if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			err = auth.ErrInvalidCredentials
		}

		e := err.Error()
		c.JSON(status(err), SessionResponse{
			Error: &e,
		})
		return
	}

	err = auth.CheckPassword(user.PasswordHash, editable.Password)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SessionResponse{
			Error: &e,
		})
		return
	}

	co.session(c, http.StatusOK, user)
}

func (co Controller) session(c *gin.Context, code int, user models.User) {
	token, err := co.JWT.Generate(user.ID, user.Username)
	if err != nil {
		e := models.ErrGeneral.Error()
		c.JSON(http.StatusInternalServerError, SessionResponse{
			Error: &e,
		})
		return
	}

	c.JSON(code, SessionResponse{
		Data: &SessionData{
			Token: token,
			User:  newUser(user),
		},
	})
}
